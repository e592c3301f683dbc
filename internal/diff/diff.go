// Package diff computes the structural difference between two captures of
// the same workbook.
//
// The comparison is asymmetric: it reports sheets, rows and cells that are
// new or changed in the later grid, and never reports what exists only in
// the earlier one.
package diff

import "github.com/mesh-intelligence/sheetlog/pkg/types"

// Compare returns the change record from prev to next. The result is empty
// exactly when every sheet, row and cell of next matches prev. Neither grid
// is modified.
func Compare(prev, next types.Grid) types.ChangeRecord {
	changes := types.ChangeRecord{}
	for name, nextSheet := range next {
		prevSheet, ok := prev[name]
		if !ok {
			changes[name] = types.SheetChange{Added: cloneSheet(nextSheet)}
			continue
		}
		if rows := compareSheet(prevSheet, nextSheet); len(rows) > 0 {
			changes[name] = types.SheetChange{Rows: rows}
		}
	}
	return changes
}

func compareSheet(prev, next types.Sheet) map[string]types.RowChange {
	rows := map[string]types.RowChange{}
	for key, nextRow := range next {
		prevRow, ok := prev[key]
		if !ok {
			rows[key] = types.RowChange{Added: cloneRow(nextRow)}
			continue
		}
		if cells := compareRow(prevRow, nextRow); len(cells) > 0 {
			rows[key] = types.RowChange{Cells: cells}
		}
	}
	return rows
}

// compareRow treats a column missing from prev as the empty string.
func compareRow(prev, next types.Row) map[string]types.CellChange {
	cells := map[string]types.CellChange{}
	for key, nextValue := range next {
		prevValue := prev[key]
		if nextValue != prevValue {
			cells[key] = types.CellChange{Old: prevValue, New: nextValue}
		}
	}
	return cells
}

func cloneSheet(s types.Sheet) types.Sheet {
	out := make(types.Sheet, len(s))
	for k, r := range s {
		out[k] = cloneRow(r)
	}
	return out
}

func cloneRow(r types.Row) types.Row {
	out := make(types.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
