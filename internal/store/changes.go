package store

import (
	"fmt"
	"os"
	"time"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// Changes stores non-empty change records, one file per capture. Nothing
// in the capture path reads them back.
type Changes struct {
	dir string
}

// NewChanges returns a change record store rooted at dir, creating it if
// needed.
func NewChanges(dir string) (*Changes, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating changes dir: %w", err)
	}
	return &Changes{dir: dir}, nil
}

// Dir returns the directory holding change record artifacts.
func (c *Changes) Dir() string { return c.dir }

// Save persists rec for fileName at ts and returns its path. An empty
// record is not written and yields an empty path.
func (c *Changes) Save(fileName string, rec types.ChangeRecord, ts time.Time) (string, error) {
	if fileName == "" {
		return "", types.ErrEmptyFileName
	}
	if rec.Empty() {
		return "", nil
	}
	return writeArtifact(types.ArtifactChange, c.dir, ArtifactName(fileName, ts), rec)
}

// List returns every change record of fileName, oldest first.
func (c *Changes) List(fileName string) ([]Artifact, error) {
	if fileName == "" {
		return nil, types.ErrEmptyFileName
	}
	return listArtifacts(c.dir, fileName)
}
