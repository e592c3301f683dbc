package types

import (
	"fmt"
	"sort"
	"strconv"
)

// Row maps a column key to a cell value. Absent or empty cells are the
// empty string.
type Row map[string]string

// Sheet maps a row key to a Row.
type Sheet map[string]Row

// Grid is the Cell Grid Model of one capture: sheet name to Sheet.
// All keys and values are strings so that two independently loaded grids
// compare without type mismatches.
type Grid map[string]Sheet

// RawSheet is reader output for one sheet before normalization. Row and
// column keys may be integers or strings depending on the reader mode;
// values may be any scalar or nil.
type RawSheet map[any]map[any]any

// RawWorkbook is reader output keyed by sheet name.
type RawWorkbook map[string]RawSheet

// NewGrid builds a Grid from raw reader output, coercing every key and
// value to its canonical string form. A nil value becomes "".
func NewGrid(raw RawWorkbook) Grid {
	g := make(Grid, len(raw))
	for sheetName, rawSheet := range raw {
		sheet := make(Sheet, len(rawSheet))
		for rowKey, rawRow := range rawSheet {
			row := make(Row, len(rawRow))
			for colKey, v := range rawRow {
				row[CanonicalKey(colKey)] = CellText(v)
			}
			sheet[CanonicalKey(rowKey)] = row
		}
		g[sheetName] = sheet
	}
	return g
}

// CanonicalKey returns the string form used for row and column keys.
func CanonicalKey(k any) string {
	return CellText(k)
}

// CellText returns the textual representation of a raw cell value.
// Integral floats render without a fractional part so that 3 and 3.0
// produce the same text.
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// SheetNames returns the sheet names of g in sorted order.
func (g Grid) SheetNames() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats counts the sheets, rows and cells held by g.
func (g Grid) Stats() (sheets, rows, cells int) {
	for _, sheet := range g {
		sheets++
		for _, row := range sheet {
			rows++
			cells += len(row)
		}
	}
	return sheets, rows, cells
}

// SortedKeys returns the row keys of s ordered numerically when every key
// is an integer, lexically otherwise.
func (s Sheet) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// SortedKeys returns the column keys of r, ordered like Sheet.SortedKeys.
func (r Row) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// sortKeys orders numeric keys by value, and non-numeric keys (column
// letters) by length then lexically so that "Z" sorts before "AA".
func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
}
