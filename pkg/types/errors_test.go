package types

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadErrorMatchesSentinelAndCause(t *testing.T) {
	err := error(&ReadError{Path: "/w/book.xlsx", Err: fs.ErrPermission})

	assert.True(t, errors.Is(err, ErrUnreadable))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Contains(t, err.Error(), "/w/book.xlsx")

	var re *ReadError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, "/w/book.xlsx", re.Path)
}

func TestPersistErrorUnwraps(t *testing.T) {
	err := error(&PersistError{Artifact: ArtifactSnapshot, Path: "/d/x.json", Err: fs.ErrExist})

	assert.True(t, errors.Is(err, fs.ErrExist))
	assert.False(t, errors.Is(err, ErrUnreadable))
	assert.Equal(t, "persist snapshot /d/x.json: file already exists", err.Error())
}

func TestNotifierErrorUnwraps(t *testing.T) {
	cause := errors.New("queue overflow")
	err := error(&NotifierError{Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "notifier: queue overflow", err.Error())
}

func TestEventFileName(t *testing.T) {
	ev := Event{Kind: EventModified, Path: "/watch/dir/Budget.xlsx"}
	assert.Equal(t, "Budget.xlsx", ev.FileName())
	assert.Equal(t, "modified", ev.Kind.String())
	assert.Equal(t, "created", EventCreated.String())
	assert.Equal(t, "unknown", EventKind(9).String())
}
