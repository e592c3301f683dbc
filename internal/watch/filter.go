package watch

import (
	"path/filepath"
	"strings"
)

// Filter decides which paths are workbooks worth capturing. Lock and
// temporary files written by the editing application are rejected.
type Filter struct {
	// Extension is the required file extension, including the dot.
	// Matching is case-insensitive.
	Extension string

	// LockPrefix is the name prefix of lock files, e.g. "~$".
	LockPrefix string
}

// Match reports whether path names a workbook that should enter the
// capture pipeline.
func (f Filter) Match(path string) bool {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return false
	}
	if strings.HasPrefix(base, ".") {
		return false
	}
	if f.LockPrefix != "" && strings.HasPrefix(base, f.LockPrefix) {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), f.Extension)
}
