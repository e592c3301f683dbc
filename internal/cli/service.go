package cli

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/sheetlog/internal/metrics"
	"github.com/mesh-intelligence/sheetlog/internal/paths"
	"github.com/mesh-intelligence/sheetlog/internal/pipeline"
	"github.com/mesh-intelligence/sheetlog/internal/reader"
	"github.com/mesh-intelligence/sheetlog/internal/sqlite"
	"github.com/mesh-intelligence/sheetlog/internal/store"
)

// service wires the reader, stores, catalog and pipeline from the loaded
// configuration.
type service struct {
	snapshots *store.Snapshots
	changes   *store.Changes
	catalog   *sqlite.Catalog
	metrics   *metrics.Metrics
	pipeline  *pipeline.Pipeline
}

// openService builds a service. A catalog that cannot be opened is logged
// and captures proceed without it.
func (a *app) openService() (*service, error) {
	rd, err := reader.NewExcel(a.cfg.ReaderKeys)
	if err != nil {
		return nil, userError("reader: %w", err)
	}
	snapshots, err := store.NewSnapshots(paths.SnapshotsDir(a.cfg.DataDir))
	if err != nil {
		return nil, sysError("%w", err)
	}
	changes, err := store.NewChanges(paths.ChangesDir(a.cfg.DataDir))
	if err != nil {
		return nil, sysError("%w", err)
	}

	svc := &service{
		snapshots: snapshots,
		changes:   changes,
		metrics:   metrics.New(prometheus.NewRegistry()),
	}

	opts := pipeline.Options{
		Debounce:     a.cfg.Debounce,
		SettleDelay:  a.cfg.SettleDelay,
		DiffOnCreate: a.cfg.DiffOnCreate,
		Logger:       a.logger,
		Metrics:      svc.metrics,
	}
	if catalog, err := sqlite.Open(a.cfg.DataDir); err != nil {
		a.logger.Warn("catalog unavailable", "data_dir", a.cfg.DataDir, "error", err)
	} else {
		svc.catalog = catalog
		opts.Recorder = catalog
	}

	svc.pipeline = pipeline.New(rd, snapshots, changes, opts)
	return svc, nil
}

// Close releases the catalog.
func (s *service) Close(logger *slog.Logger) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Close(); err != nil {
		logger.Warn("closing catalog", "error", err)
	}
}
