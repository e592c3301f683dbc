// Package types defines the Cell Grid Model, change records, capture catalog
// entries, configuration and the error taxonomy shared by the sheetlog
// snapshot/diff engine and its collaborators.
//
// A Grid is built once per capture from raw reader output and is read-only
// afterwards. Grids are persisted as snapshots; the difference between two
// successive grids of the same workbook is a ChangeRecord.
package types
