package types

import "encoding/json"

// Keys used in the serialized change record.
const (
	ChangeKeyAdded = "added"
	ChangeKeyOld   = "old"
	ChangeKeyNew   = "new"
)

// CellChange is a modified cell value.
type CellChange struct {
	Old string `json:"old" yaml:"old"`
	New string `json:"new" yaml:"new"`
}

// RowChange describes one row of a sheet that exists in both grids.
// When Added is non-nil the whole row is new and Cells is empty.
type RowChange struct {
	Added Row
	Cells map[string]CellChange
}

// SheetChange describes one sheet. When Added is non-nil the whole sheet is
// new and Rows is empty.
type SheetChange struct {
	Added Sheet
	Rows  map[string]RowChange
}

// ChangeRecord mirrors the shape of a Grid but holds only the sheets, rows
// and cells that differ between two captures. Serialized form:
//
//	{sheet: {"added": <sheet>}}
//	{sheet: {row: {"added": <row>}}}
//	{sheet: {row: {column: {"old": <old>, "new": <new>}}}}
type ChangeRecord map[string]SheetChange

// ChangeSummary counts the entries of a ChangeRecord.
type ChangeSummary struct {
	AddedSheets   int `json:"added_sheets"`
	AddedRows     int `json:"added_rows"`
	ModifiedCells int `json:"modified_cells"`
}

// Empty reports whether the record holds no differences.
func (c ChangeRecord) Empty() bool {
	return len(c) == 0
}

// Summary counts added sheets, added rows and modified cells.
func (c ChangeRecord) Summary() ChangeSummary {
	var s ChangeSummary
	for _, sc := range c {
		if sc.Added != nil {
			s.AddedSheets++
			continue
		}
		for _, rc := range sc.Rows {
			if rc.Added != nil {
				s.AddedRows++
				continue
			}
			s.ModifiedCells += len(rc.Cells)
		}
	}
	return s
}

// Tree returns the record as nested generic maps in its serialized shape.
func (c ChangeRecord) Tree() map[string]any {
	out := make(map[string]any, len(c))
	for name, sc := range c {
		out[name] = sc.tree()
	}
	return out
}

func (sc SheetChange) tree() map[string]any {
	if sc.Added != nil {
		return map[string]any{ChangeKeyAdded: sc.Added}
	}
	out := make(map[string]any, len(sc.Rows))
	for key, rc := range sc.Rows {
		out[key] = rc.tree()
	}
	return out
}

func (rc RowChange) tree() map[string]any {
	if rc.Added != nil {
		return map[string]any{ChangeKeyAdded: rc.Added}
	}
	out := make(map[string]any, len(rc.Cells))
	for key, cell := range rc.Cells {
		out[key] = map[string]any{ChangeKeyOld: cell.Old, ChangeKeyNew: cell.New}
	}
	return out
}

// MarshalJSON encodes the record in its nested serialized shape.
func (c ChangeRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Tree())
}

// MarshalYAML encodes the record in the same shape as MarshalJSON.
func (c ChangeRecord) MarshalYAML() (any, error) {
	return c.Tree(), nil
}
