package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// loadJSONL reads captures.jsonl into the captures table. Loading is
// transactional: all records load or the table stays empty. Records that
// do not decode, or lack an ID, are skipped; unknown fields are ignored.
func loadJSONL(db *sql.DB, path string) (int, error) {
	records, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertCapture)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	loaded := 0
	for _, rec := range records {
		var c types.Capture
		if err := json.Unmarshal(rec, &c); err != nil || c.ID == "" {
			continue
		}
		if _, err := stmt.Exec(captureArgs(c)...); err != nil {
			return 0, fmt.Errorf("loading capture %s: %w", c.ID, err)
		}
		loaded++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}

// captureArgs returns the insertCapture arguments for c.
func captureArgs(c types.Capture) []any {
	baseline := 0
	if c.Baseline {
		baseline = 1
	}
	return []any{
		c.ID,
		c.FileName,
		c.Kind,
		c.CapturedAt.UTC().Format(capturedAtLayout),
		c.SnapshotPath,
		c.ChangePath,
		baseline,
		c.Sheets,
		c.Rows,
		c.Cells,
		c.Changes.AddedSheets,
		c.Changes.AddedRows,
		c.Changes.ModifiedCells,
	}
}
