// Package reader parses workbook files into raw tabular data.
package reader

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// Excel reads .xlsx workbooks with excelize. Every sheet is returned as a
// rectangular block: short rows are padded with empty cells up to the
// widest row of the sheet.
type Excel struct {
	keys string
}

// NewExcel returns a reader using the given key mode (types.KeysIndex or
// types.KeysLabel). An empty mode means types.KeysIndex.
func NewExcel(keys string) (*Excel, error) {
	switch keys {
	case "":
		keys = types.KeysIndex
	case types.KeysIndex, types.KeysLabel:
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrReaderKeysUnknown, keys)
	}
	return &Excel{keys: keys}, nil
}

// Keys returns the key mode of the reader.
func (x *Excel) Keys() string { return x.keys }

// Read opens path and returns the resolved text of every cell. Failures
// are *types.ReadError.
func (x *Excel) Read(ctx context.Context, path string) (types.RawWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &types.ReadError{Path: path, Err: err}
	}
	defer f.Close()

	wb := make(types.RawWorkbook)
	for _, sheetName := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, &types.ReadError{Path: path, Err: err}
		}
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, &types.ReadError{Path: path, Err: fmt.Errorf("sheet %q: %w", sheetName, err)}
		}
		sheet, err := x.sheet(rows)
		if err != nil {
			return nil, &types.ReadError{Path: path, Err: fmt.Errorf("sheet %q: %w", sheetName, err)}
		}
		wb[sheetName] = sheet
	}
	return wb, nil
}

func (x *Excel) sheet(rows [][]string) (types.RawSheet, error) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	sheet := make(types.RawSheet, len(rows))
	for rowIdx, row := range rows {
		cells := make(map[any]any, width)
		for colIdx := 0; colIdx < width; colIdx++ {
			col, err := x.columnKey(colIdx)
			if err != nil {
				return nil, err
			}
			value := ""
			if colIdx < len(row) {
				value = row[colIdx]
			}
			cells[col] = value
		}
		sheet[x.rowKey(rowIdx)] = cells
	}
	return sheet, nil
}

func (x *Excel) rowKey(idx int) any {
	if x.keys == types.KeysLabel {
		return strconv.Itoa(idx + 1)
	}
	return idx
}

func (x *Excel) columnKey(idx int) (any, error) {
	if x.keys == types.KeysLabel {
		return excelize.ColumnNumberToName(idx + 1)
	}
	return idx, nil
}
