// Package watch delivers created/modified notifications for workbook files
// in a single directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// Handler receives filtered notifications. It is called from the watcher
// goroutine, one event at a time.
type Handler func(types.Event)

// Watcher watches one directory (non-recursively) and forwards create and
// write notifications for matching files.
//
// # Thread Safety
//
// Run must be called at most once. Close is safe to call from any
// goroutine and is idempotent.
type Watcher struct {
	dir     string
	filter  Filter
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
	errs    func(error)
	closeMu sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for notifier errors and skipped events.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithErrorHook registers a function called with every notifier error.
func WithErrorHook(fn func(error)) Option {
	return func(w *Watcher) { w.errs = fn }
}

// New creates a watcher for dir. The directory must exist.
func New(dir string, filter Filter, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch dir %s: not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &types.NotifierError{Err: err}
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, &types.NotifierError{Err: err}
	}

	w := &Watcher{
		dir:    dir,
		filter: filter,
		logger: slog.New(slog.DiscardHandler),
		fsw:    fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Run forwards notifications to handle until ctx is canceled or the
// notifier shuts down. Notifier errors are logged and do not stop Run.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			ev, ok := w.convert(event)
			if !ok {
				continue
			}
			handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			nerr := &types.NotifierError{Err: err}
			w.logger.Error("notifier error", "dir", w.dir, "error", nerr)
			if w.errs != nil {
				w.errs(nerr)
			}
		}
	}
}

// Close stops the underlying notifier.
func (w *Watcher) Close() error {
	var err error
	w.closeMu.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

// convert maps an fsnotify event to a pipeline event, dropping
// directories, non-matching names and operations other than create/write.
func (w *Watcher) convert(event fsnotify.Event) (types.Event, bool) {
	var kind types.EventKind
	switch {
	case event.Has(fsnotify.Create):
		kind = types.EventCreated
	case event.Has(fsnotify.Write):
		kind = types.EventModified
	default:
		return types.Event{}, false
	}
	if !w.filter.Match(event.Name) {
		return types.Event{}, false
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return types.Event{}, false
	}
	return types.Event{Kind: kind, Path: event.Name}, true
}
