package types

import "time"

// Capture is a catalog entry describing one persisted snapshot.
type Capture struct {
	ID           string        `json:"capture_id"`
	FileName     string        `json:"file_name"`
	Kind         string        `json:"kind"`
	CapturedAt   time.Time     `json:"captured_at"`
	SnapshotPath string        `json:"snapshot_path"`
	ChangePath   string        `json:"change_path,omitempty"`
	Baseline     bool          `json:"baseline"`
	Sheets       int           `json:"sheets"`
	Rows         int           `json:"rows"`
	Cells        int           `json:"cells"`
	Changes      ChangeSummary `json:"changes"`
}

// FileSummary aggregates the catalog entries of one workbook.
type FileSummary struct {
	FileName     string    `json:"file_name"`
	Captures     int       `json:"captures"`
	ChangeRecs   int       `json:"change_records"`
	LastCaptured time.Time `json:"last_captured"`
}
