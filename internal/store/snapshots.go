package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// Snapshots stores Cell Grid Models, one file per capture.
type Snapshots struct {
	dir string
}

// NewSnapshots returns a snapshot store rooted at dir, creating it if
// needed.
func NewSnapshots(dir string) (*Snapshots, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	return &Snapshots{dir: dir}, nil
}

// OpenSnapshots returns a snapshot store over dir without creating it. A
// missing directory holds no snapshots.
func OpenSnapshots(dir string) *Snapshots {
	return &Snapshots{dir: dir}
}

// Dir returns the directory holding snapshot artifacts.
func (s *Snapshots) Dir() string { return s.dir }

// Save persists g as the snapshot of fileName captured at ts and returns
// its path. Failures are *types.PersistError.
func (s *Snapshots) Save(fileName string, g types.Grid, ts time.Time) (string, error) {
	if fileName == "" {
		return "", types.ErrEmptyFileName
	}
	if g == nil {
		g = types.Grid{}
	}
	return writeArtifact(types.ArtifactSnapshot, s.dir, ArtifactName(fileName, ts), g)
}

// Latest returns the most recent snapshot of fileName. ok is false when no
// snapshot exists yet.
func (s *Snapshots) Latest(fileName string) (g types.Grid, ok bool, err error) {
	a, ok, err := s.LatestArtifact(fileName)
	if err != nil || !ok {
		return nil, false, err
	}
	g, err = Load(a.Path)
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

// LatestArtifact describes the most recent snapshot of fileName without
// loading it.
func (s *Snapshots) LatestArtifact(fileName string) (Artifact, bool, error) {
	if fileName == "" {
		return Artifact{}, false, types.ErrEmptyFileName
	}
	list, err := listArtifacts(s.dir, fileName)
	if err != nil || len(list) == 0 {
		return Artifact{}, false, err
	}
	return list[len(list)-1], true, nil
}

// List returns every snapshot of fileName, oldest first.
func (s *Snapshots) List(fileName string) ([]Artifact, error) {
	if fileName == "" {
		return nil, types.ErrEmptyFileName
	}
	return listArtifacts(s.dir, fileName)
}

// Load reads a snapshot artifact from path.
func Load(path string) (types.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var g types.Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	if g == nil {
		g = types.Grid{}
	}
	return g, nil
}
