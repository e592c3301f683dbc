package types

import "path/filepath"

// EventKind is the kind of filesystem notification delivered to the
// capture pipeline.
type EventKind int

const (
	// EventCreated indicates a new file appeared in the watched directory.
	EventCreated EventKind = iota

	// EventModified indicates an existing file was written.
	EventModified
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Event is a file-change notification.
type Event struct {
	Kind EventKind
	Path string
}

// FileName returns the base name of the event path, which identifies the
// workbook in the snapshot and change record stores.
func (e Event) FileName() string {
	return filepath.Base(e.Path)
}
