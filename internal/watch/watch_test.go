package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

var xlsx = Filter{Extension: ".xlsx", LockPrefix: "~$"}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/w/book.xlsx", true},
		{"/w/Book.XLSX", true},
		{"book.xlsx", true},
		{"/w/~$book.xlsx", false},
		{"/w/book.xls", false},
		{"/w/book.xlsx.tmp", false},
		{"/w/notes.txt", false},
		{"/w/.hidden.xlsx", false},
		{"/w/", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, xlsx.Match(tt.path))
		})
	}
}

func TestFilterWithoutLockPrefix(t *testing.T) {
	f := Filter{Extension: ".xlsx"}
	assert.True(t, f.Match("~$book.xlsx"))
}

func TestNewRejectsMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), xlsx)
	assert.Error(t, err)
}

func TestNewRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := New(path, xlsx)
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, xlsx)
	require.NoError(t, err)
	defer w.Close()

	sub := filepath.Join(dir, "folder.xlsx")
	require.NoError(t, os.Mkdir(sub, 0o755))

	tests := []struct {
		name   string
		event  fsnotify.Event
		want   types.Event
		wantOK bool
	}{
		{"create", fsnotify.Event{Name: "/w/a.xlsx", Op: fsnotify.Create}, types.Event{Kind: types.EventCreated, Path: "/w/a.xlsx"}, true},
		{"write", fsnotify.Event{Name: "/w/a.xlsx", Op: fsnotify.Write}, types.Event{Kind: types.EventModified, Path: "/w/a.xlsx"}, true},
		{"create and write", fsnotify.Event{Name: "/w/a.xlsx", Op: fsnotify.Create | fsnotify.Write}, types.Event{Kind: types.EventCreated, Path: "/w/a.xlsx"}, true},
		{"remove", fsnotify.Event{Name: "/w/a.xlsx", Op: fsnotify.Remove}, types.Event{}, false},
		{"rename", fsnotify.Event{Name: "/w/a.xlsx", Op: fsnotify.Rename}, types.Event{}, false},
		{"chmod", fsnotify.Event{Name: "/w/a.xlsx", Op: fsnotify.Chmod}, types.Event{}, false},
		{"lock file", fsnotify.Event{Name: "/w/~$a.xlsx", Op: fsnotify.Write}, types.Event{}, false},
		{"directory", fsnotify.Event{Name: sub, Op: fsnotify.Create}, types.Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.convert(tt.event)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunDeliversFilteredEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, xlsx)
	require.NoError(t, err)

	var mu sync.Mutex
	var got []types.Event
	seen := make(chan struct{}, 16)
	target := filepath.Join(dir, "book.xlsx")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ev types.Event) {
			mu.Lock()
			got = append(got, ev)
			mu.Unlock()
			if ev.Path == target {
				seen <- struct{}{}
			}
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$book.xlsx"), []byte("lock"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("data"), 0o644))

	select {
	case <-seen:
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered for book.xlsx")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range got {
		assert.Equal(t, target, ev.Path)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), xlsx)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
