// Package sqlite implements the capture catalog: a SQLite query engine
// over captures.jsonl, which is the source of truth. The database lives in
// memory and is rebuilt from the JSONL file on Open.
package sqlite

// Schema DDL for the catalog.
const (
	createCaptures = `CREATE TABLE captures (
    capture_id TEXT PRIMARY KEY,
    file_name TEXT NOT NULL,
    kind TEXT NOT NULL,
    captured_at TEXT NOT NULL,
    snapshot_path TEXT NOT NULL,
    change_path TEXT NOT NULL DEFAULT '',
    baseline INTEGER NOT NULL,
    sheets INTEGER NOT NULL,
    rows INTEGER NOT NULL,
    cells INTEGER NOT NULL,
    added_sheets INTEGER NOT NULL,
    added_rows INTEGER NOT NULL,
    modified_cells INTEGER NOT NULL
);`

	idxCapturesFile = `CREATE INDEX idx_captures_file ON captures(file_name, captured_at);`
)

// schemaDDL lists the catalog statements in execution order.
var schemaDDL = []string{
	createCaptures,
	idxCapturesFile,
}

// capturedAtLayout is a fixed-width UTC layout so captured_at sorts
// lexically.
const capturedAtLayout = "2006-01-02T15:04:05.000Z"

const insertCapture = `INSERT OR REPLACE INTO captures (
    capture_id, file_name, kind, captured_at, snapshot_path, change_path,
    baseline, sheets, rows, cells, added_sheets, added_rows, modified_cells
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectCaptureColumns = `capture_id, file_name, kind, captured_at, snapshot_path, change_path,
    baseline, sheets, rows, cells, added_sheets, added_rows, modified_cells`
