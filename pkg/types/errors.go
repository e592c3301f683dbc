package types

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnreadable indicates a workbook could not be opened or parsed.
	ErrUnreadable = errors.New("workbook unreadable")

	// ErrEmptyFileName indicates a store operation was given no file name.
	ErrEmptyFileName = errors.New("file name must not be empty")

	// ErrInvalidArtifactName indicates a stored artifact name does not
	// follow the <file>_<timestamp>.json convention.
	ErrInvalidArtifactName = errors.New("invalid artifact name")
)

// ReadError is returned when the tabular reader fails on a workbook. The
// capture is skipped and nothing is persisted.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Is matches ErrUnreadable so callers need not know the concrete type.
func (e *ReadError) Is(target error) bool {
	return target == ErrUnreadable
}

// Artifact kinds reported by PersistError.
const (
	ArtifactSnapshot = "snapshot"
	ArtifactChange   = "change record"
)

// PersistError is returned when a snapshot or change record cannot be
// written. The target path never holds a partial artifact.
type PersistError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// NotifierError wraps a failure reported by the filesystem notifier.
type NotifierError struct {
	Err error
}

func (e *NotifierError) Error() string {
	return fmt.Sprintf("notifier: %v", e.Err)
}

func (e *NotifierError) Unwrap() error {
	return e.Err
}
