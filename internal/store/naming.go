package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// TimestampLayout is the capture timestamp embedded in artifact names.
// Millisecond resolution keeps successive captures distinct.
const TimestampLayout = "20060102150405.000"

const artifactExt = ".json"

// ArtifactName returns the deterministic artifact name for a capture of
// fileName at ts: <file>_<timestamp>.json. Timestamps are rendered in UTC.
func ArtifactName(fileName string, ts time.Time) string {
	return fileName + "_" + ts.UTC().Format(TimestampLayout) + artifactExt
}

// ParseArtifactName splits an artifact name into its file name and capture
// timestamp.
func ParseArtifactName(name string) (string, time.Time, error) {
	base, ok := strings.CutSuffix(name, artifactExt)
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidArtifactName, name)
	}
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidArtifactName, name)
	}
	ts, err := time.Parse(TimestampLayout, base[i+1:])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q", types.ErrInvalidArtifactName, name)
	}
	return base[:i], ts, nil
}

// Artifact describes one stored snapshot or change record.
type Artifact struct {
	FileName   string
	CapturedAt time.Time
	Path       string
	ModTime    time.Time
}

// listArtifacts returns the artifacts in dir that belong to fileName,
// oldest first. Ordering is by capture timestamp, then modification time,
// then name. A missing directory yields no artifacts.
func listArtifacts(dir, fileName string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var out []Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ts, err := ParseArtifactName(e.Name())
		if err != nil || name != fileName {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Artifact{
			FileName:   name,
			CapturedAt: ts,
			Path:       filepath.Join(dir, e.Name()),
			ModTime:    info.ModTime(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CapturedAt.Equal(b.CapturedAt) {
			return a.CapturedAt.Before(b.CapturedAt)
		}
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.Before(b.ModTime)
		}
		return a.Path < b.Path
	})
	return out, nil
}
