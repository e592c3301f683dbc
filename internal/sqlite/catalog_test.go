package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

var base = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func capture(file string, offset time.Duration, changed bool) types.Capture {
	c := types.Capture{
		FileName:     file,
		Kind:         types.EventModified.String(),
		CapturedAt:   base.Add(offset),
		SnapshotPath: filepath.Join("snapshots", file+".json"),
		Sheets:       1,
		Rows:         2,
		Cells:        4,
	}
	if changed {
		c.ChangePath = filepath.Join("changes", file+".json")
		c.Changes = types.ChangeSummary{ModifiedCells: 1}
	}
	return c
}

func openCatalog(t *testing.T, dir string) *Catalog {
	t.Helper()
	c, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpenEmptyDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	c := openCatalog(t, dir)

	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, capturesJSONL), c.Path())

	history, err := c.History("", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	files, err := c.Files()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRecordAssignsID(t *testing.T) {
	c := openCatalog(t, t.TempDir())

	got, err := c.Record(capture("a.xlsx", 0, false))
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)

	kept, err := c.Record(types.Capture{ID: "fixed", FileName: "a.xlsx", CapturedAt: base})
	require.NoError(t, err)
	assert.Equal(t, "fixed", kept.ID)
}

func TestRecordAppendsJSONLine(t *testing.T) {
	c := openCatalog(t, t.TempDir())

	_, err := c.Record(capture("a.xlsx", 0, false))
	require.NoError(t, err)
	_, err = c.Record(capture("a.xlsx", time.Second, true))
	require.NoError(t, err)

	data, err := os.ReadFile(c.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"file_name":"a.xlsx"`)
	assert.NotContains(t, lines[0], `"change_path"`)
	assert.Contains(t, lines[1], `"change_path"`)
}

func TestHistoryNewestFirst(t *testing.T) {
	c := openCatalog(t, t.TempDir())

	for i, offset := range []time.Duration{0, 2 * time.Second, time.Second} {
		entry := capture("a.xlsx", offset, i > 0)
		entry.ID = []string{"first", "third", "second"}[i]
		_, err := c.Record(entry)
		require.NoError(t, err)
	}
	_, err := c.Record(capture("b.xlsx", 3*time.Second, false))
	require.NoError(t, err)

	history, err := c.History("a.xlsx", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "third", history[0].ID)
	assert.Equal(t, "second", history[1].ID)
	assert.Equal(t, "first", history[2].ID)
	assert.True(t, history[0].CapturedAt.Equal(base.Add(2*time.Second)))
	assert.Equal(t, time.UTC, history[0].CapturedAt.Location())

	limited, err := c.History("a.xlsx", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "third", limited[0].ID)

	all, err := c.History("", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "b.xlsx", all[0].FileName)
}

func TestHistoryRoundTripsFields(t *testing.T) {
	c := openCatalog(t, t.TempDir())

	in := capture("a.xlsx", 1500*time.Millisecond, true)
	in.Baseline = true
	in.Changes = types.ChangeSummary{AddedSheets: 1, AddedRows: 2, ModifiedCells: 3}
	rec, err := c.Record(in)
	require.NoError(t, err)

	history, err := c.History("a.xlsx", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec, history[0])
}

func TestFilesSummaries(t *testing.T) {
	c := openCatalog(t, t.TempDir())

	for _, entry := range []types.Capture{
		capture("b.xlsx", 0, false),
		capture("a.xlsx", time.Second, false),
		capture("a.xlsx", 2*time.Second, true),
		capture("a.xlsx", 3*time.Second, true),
	} {
		_, err := c.Record(entry)
		require.NoError(t, err)
	}

	files, err := c.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "a.xlsx", files[0].FileName)
	assert.Equal(t, 3, files[0].Captures)
	assert.Equal(t, 2, files[0].ChangeRecs)
	assert.True(t, files[0].LastCaptured.Equal(base.Add(3*time.Second)))

	assert.Equal(t, "b.xlsx", files[1].FileName)
	assert.Equal(t, 1, files[1].Captures)
	assert.Equal(t, 0, files[1].ChangeRecs)
}

func TestReopenRebuildsFromJSONL(t *testing.T) {
	dir := t.TempDir()

	first, err := Open(dir)
	require.NoError(t, err)
	rec, err := first.Record(capture("a.xlsx", 0, true))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openCatalog(t, dir)
	history, err := second.History("a.xlsx", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, rec, history[0])
}

func TestReopenSkipsTornLine(t *testing.T) {
	dir := t.TempDir()

	first, err := Open(dir)
	require.NoError(t, err)
	_, err = first.Record(capture("a.xlsx", 0, false))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	f, err := os.OpenFile(filepath.Join(dir, capturesJSONL), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"capture_id":"torn","file_na` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	second := openCatalog(t, dir)
	history, err := second.History("", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestClosedCatalog(t *testing.T) {
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Record(capture("a.xlsx", 0, false))
	assert.ErrorIs(t, err, ErrCatalogClosed)
	_, err = c.History("", 0)
	assert.ErrorIs(t, err, ErrCatalogClosed)
	_, err = c.Files()
	assert.ErrorIs(t, err, ErrCatalogClosed)
}

func TestConcurrentRecord(t *testing.T) {
	c := openCatalog(t, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Record(capture("a.xlsx", time.Duration(i)*time.Millisecond, false))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := c.History("a.xlsx", 0)
	require.NoError(t, err)
	assert.Len(t, history, 20)

	records, err := readJSONL(c.Path())
	require.NoError(t, err)
	assert.Len(t, records, 20)
}
