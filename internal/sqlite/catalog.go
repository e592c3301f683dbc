package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// ErrCatalogClosed is returned by operations on a closed catalog.
var ErrCatalogClosed = errors.New("catalog is closed")

// Catalog indexes persisted captures. Writes go to captures.jsonl first and
// then to the in-memory query engine.
type Catalog struct {
	mu     sync.Mutex
	path   string
	db     *sql.DB
	closed bool
}

// Open creates dataDir if needed, builds the schema, and loads
// captures.jsonl into the query engine.
func Open(dataDir string) (*Catalog, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	path := filepath.Join(dataDir, capturesJSONL)
	if _, err := loadJSONL(db, path); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading %s: %w", capturesJSONL, err)
	}

	return &Catalog{path: path, db: db}, nil
}

// Path returns the location of captures.jsonl.
func (c *Catalog) Path() string {
	return c.path
}

// Record persists a capture and returns it with its ID assigned.
func (c *Catalog) Record(capture types.Capture) (types.Capture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return types.Capture{}, ErrCatalogClosed
	}
	if capture.ID == "" {
		capture.ID = generateUUID()
	}
	capture.CapturedAt = capture.CapturedAt.UTC()

	if err := appendJSONL(c.path, capture); err != nil {
		return types.Capture{}, err
	}
	if _, err := c.db.Exec(insertCapture, captureArgs(capture)...); err != nil {
		return types.Capture{}, fmt.Errorf("indexing capture %s: %w", capture.ID, err)
	}
	return capture, nil
}

// History returns the captures of fileName, newest first. An empty
// fileName selects every file. A limit of zero or less returns all.
func (c *Catalog) History(fileName string, limit int) ([]types.Capture, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}

	query := "SELECT " + selectCaptureColumns + " FROM captures"
	var args []any
	if fileName != "" {
		query += " WHERE file_name = ?"
		args = append(args, fileName)
	}
	query += " ORDER BY captured_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []types.Capture
	for rows.Next() {
		capture, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, capture)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return out, nil
}

// Files summarizes the catalog per workbook, ordered by file name.
func (c *Catalog) Files() ([]types.FileSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}

	rows, err := c.db.Query(`SELECT file_name, COUNT(*), SUM(change_path != ''), MAX(captured_at)
FROM captures GROUP BY file_name ORDER BY file_name`)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var out []types.FileSummary
	for rows.Next() {
		var (
			s    types.FileSummary
			last string
		)
		if err := rows.Scan(&s.FileName, &s.Captures, &s.ChangeRecs, &last); err != nil {
			return nil, fmt.Errorf("scanning file summary: %w", err)
		}
		if s.LastCaptured, err = time.Parse(capturedAtLayout, last); err != nil {
			return nil, fmt.Errorf("parsing captured_at %q: %w", last, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}
	return out, nil
}

// Close releases the query engine. Calling Close twice is a no-op.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.db.Close()
}

func scanCapture(rows *sql.Rows) (types.Capture, error) {
	var (
		c        types.Capture
		at       string
		baseline int
	)
	err := rows.Scan(
		&c.ID, &c.FileName, &c.Kind, &at, &c.SnapshotPath, &c.ChangePath,
		&baseline, &c.Sheets, &c.Rows, &c.Cells,
		&c.Changes.AddedSheets, &c.Changes.AddedRows, &c.Changes.ModifiedCells,
	)
	if err != nil {
		return types.Capture{}, fmt.Errorf("scanning capture: %w", err)
	}
	c.Baseline = baseline != 0
	if c.CapturedAt, err = time.Parse(capturedAtLayout, at); err != nil {
		return types.Capture{}, fmt.Errorf("parsing captured_at %q: %w", at, err)
	}
	return c, nil
}

// generateUUID generates a new UUID v7 for capture IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
