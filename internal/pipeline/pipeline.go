// Package pipeline turns file-change notifications into snapshots and
// change records.
//
// Per workbook the pipeline moves through Idle, Settling, Reading, Diffing
// and Persisting before returning to Idle. A notification is accepted only
// while the file is Idle and at least the debounce window has passed since
// the last accepted notification; anything else is coalesced. Each accepted
// notification runs in its own goroutine, so different workbooks are
// captured independently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/sheetlog/internal/diff"
	"github.com/mesh-intelligence/sheetlog/internal/metrics"
	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// Reader parses a workbook into raw tabular data.
type Reader interface {
	Read(ctx context.Context, path string) (types.RawWorkbook, error)
}

// SnapshotStore persists grids and answers the latest grid of a file.
type SnapshotStore interface {
	Save(fileName string, g types.Grid, ts time.Time) (string, error)
	Latest(fileName string) (types.Grid, bool, error)
}

// ChangeStore persists non-empty change records.
type ChangeStore interface {
	Save(fileName string, rec types.ChangeRecord, ts time.Time) (string, error)
}

// Recorder catalogs finished captures. It returns the stored entry, which
// carries the assigned capture ID.
type Recorder interface {
	Record(c types.Capture) (types.Capture, error)
}

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	// Debounce is the minimum interval between accepted notifications for
	// the same file.
	Debounce time.Duration

	// SettleDelay is the unconditional wait between accepting a
	// notification and reading the file.
	SettleDelay time.Duration

	// DiffOnCreate diffs creation events against an existing snapshot.
	// Off by default: a created file is captured as a baseline.
	DiffOnCreate bool

	Recorder Recorder
	Logger   *slog.Logger
	Metrics  *metrics.Metrics

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// fileState is the per-file debounce and sequencing state.
type fileState struct {
	lastAccepted time.Time
	lastStamp    time.Time
	inFlight     bool
}

// Pipeline coordinates captures for every watched workbook.
//
// # Thread Safety
//
// Notify, Capture and Wait are safe for concurrent use. The per-file state
// map is guarded by a single mutex.
type Pipeline struct {
	reader    Reader
	snapshots SnapshotStore
	changes   ChangeStore
	opts      Options
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu    sync.Mutex
	files map[string]*fileState
	wg    sync.WaitGroup
}

// New returns a pipeline reading with r and persisting to the given stores.
func New(r Reader, snapshots SnapshotStore, changes ChangeStore, opts Options) *Pipeline {
	p := &Pipeline{
		reader:    r,
		snapshots: snapshots,
		changes:   changes,
		opts:      opts,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
		files:     make(map[string]*fileState),
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.metrics == nil {
		p.metrics = metrics.New(nil)
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// state returns the state for name. Callers hold p.mu.
func (p *Pipeline) state(name string) *fileState {
	st, ok := p.files[name]
	if !ok {
		st = &fileState{}
		p.files[name] = st
	}
	return st
}

// Notify handles one notification. It reports whether the notification was
// accepted; an accepted notification is captured asynchronously after the
// settle delay. Canceling ctx abandons captures still settling.
func (p *Pipeline) Notify(ctx context.Context, ev types.Event) bool {
	name := ev.FileName()
	now := p.now()

	p.mu.Lock()
	st := p.state(name)
	if st.inFlight || (!st.lastAccepted.IsZero() && now.Sub(st.lastAccepted) < p.opts.Debounce) {
		p.mu.Unlock()
		p.metrics.Notification(metrics.NotificationCoalesced)
		p.logger.Debug("notification coalesced", "file", name, "kind", ev.Kind.String())
		return false
	}
	st.lastAccepted = now
	st.inFlight = true
	p.mu.Unlock()

	p.metrics.Notification(metrics.NotificationAccepted)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.release(name)
		p.run(ctx, ev)
	}()
	return true
}

func (p *Pipeline) release(name string) {
	p.mu.Lock()
	p.state(name).inFlight = false
	p.mu.Unlock()
}

// Wait blocks until every accepted notification has finished or been
// abandoned.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context, ev types.Event) {
	name := ev.FileName()
	if err := settle(ctx, p.opts.SettleDelay); err != nil {
		p.metrics.Capture(metrics.CaptureAbandoned, 0)
		p.logger.Info("capture abandoned", "file", name, "reason", err)
		return
	}

	c, err := p.Capture(ctx, ev)
	var re *types.ReadError
	switch {
	case errors.As(err, &re):
		p.logger.Warn("capture skipped: workbook unreadable", "file", name, "path", ev.Path, "error", re.Err)
	case err != nil:
		p.logger.Error("capture failed", "file", name, "path", ev.Path, "error", err)
	default:
		p.logger.Info("captured",
			"file", name,
			"kind", ev.Kind.String(),
			"snapshot", c.SnapshotPath,
			"changes", c.ChangePath,
			"baseline", c.Baseline,
			"added_sheets", c.Changes.AddedSheets,
			"added_rows", c.Changes.AddedRows,
			"modified_cells", c.Changes.ModifiedCells,
		)
	}
}

// settle waits d or until ctx is done.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Capture reads ev.Path now, diffs it against the latest snapshot and
// persists the results. It bypasses debouncing and the settle delay.
//
// A read failure returns a *types.ReadError and persists nothing. A store
// failure returns the store's error; the snapshot is not saved when the
// change record could not be.
func (p *Pipeline) Capture(ctx context.Context, ev types.Event) (types.Capture, error) {
	name := ev.FileName()
	start := time.Now()

	raw, err := p.reader.Read(ctx, ev.Path)
	if err != nil {
		p.metrics.Capture(metrics.CaptureReadError, time.Since(start))
		var re *types.ReadError
		if !errors.As(err, &re) {
			err = &types.ReadError{Path: ev.Path, Err: err}
		}
		return types.Capture{}, err
	}
	grid := types.NewGrid(raw)

	var (
		prev    types.Grid
		hasPrev bool
	)
	if ev.Kind != types.EventCreated || p.opts.DiffOnCreate {
		prev, hasPrev, err = p.snapshots.Latest(name)
		if err != nil {
			p.metrics.Capture(metrics.CaptureStoreErr, time.Since(start))
			return types.Capture{}, fmt.Errorf("latest snapshot of %s: %w", name, err)
		}
	}

	ts := p.stamp(name)
	c := types.Capture{
		FileName:   name,
		Kind:       ev.Kind.String(),
		CapturedAt: ts,
		Baseline:   !hasPrev,
	}
	c.Sheets, c.Rows, c.Cells = grid.Stats()

	if hasPrev {
		rec := diff.Compare(prev, grid)
		c.Changes = rec.Summary()
		c.ChangePath, err = p.changes.Save(name, rec, ts)
		if err != nil {
			p.metrics.Capture(metrics.CaptureStoreErr, time.Since(start))
			return types.Capture{}, err
		}
	}

	c.SnapshotPath, err = p.snapshots.Save(name, grid, ts)
	if err != nil {
		p.metrics.Capture(metrics.CaptureStoreErr, time.Since(start))
		return types.Capture{}, err
	}

	if p.opts.Recorder != nil {
		stored, err := p.opts.Recorder.Record(c)
		if err != nil {
			p.logger.Warn("catalog record failed", "file", name, "error", err)
		} else {
			c = stored
		}
	}

	switch {
	case c.Baseline:
		p.metrics.Capture(metrics.CaptureBaseline, time.Since(start))
	case c.ChangePath == "":
		p.metrics.Capture(metrics.CaptureUnchanged, time.Since(start))
	default:
		p.metrics.ChangeRecord()
		p.metrics.Capture(metrics.CaptureChanged, time.Since(start))
	}
	return c, nil
}

// stamp returns a millisecond capture timestamp strictly later than any
// previous stamp issued for name.
func (p *Pipeline) stamp(name string) time.Time {
	ts := p.now().UTC().Truncate(time.Millisecond)

	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state(name)
	if !ts.After(st.lastStamp) {
		ts = st.lastStamp.Add(time.Millisecond)
	}
	st.lastStamp = ts
	return ts
}
