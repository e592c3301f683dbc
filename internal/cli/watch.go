package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/sheetlog/internal/paths"
	"github.com/mesh-intelligence/sheetlog/internal/watch"
	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and capture every saved workbook",
		Long: "Watch runs until interrupted. Each save of a matching workbook is\n" +
			"debounced, left to settle, read, diffed against the previous snapshot\n" +
			"and persisted.\n\n" +
			"Example:\n" +
			"  sheetlog watch ./reports\n" +
			"  sheetlog watch --log-level debug",
		Args: cobra.MaximumNArgs(1),
		RunE: a.runWatch,
	}
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	dir, err := paths.ResolveWatchDir(arg, a.cfg.WatchDir)
	if err != nil {
		return sysError("resolve watch dir: %w", err)
	}

	svc, err := a.openService()
	if err != nil {
		return err
	}
	defer svc.Close(a.logger)

	w, err := watch.New(dir, watch.Filter{Extension: a.cfg.Extension, LockPrefix: a.cfg.LockPrefix}, watch.WithLogger(a.logger))
	if err != nil {
		return userError("%w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("watching",
		"dir", dir,
		"data_dir", a.cfg.DataDir,
		"extension", a.cfg.Extension,
		"debounce", a.cfg.Debounce,
		"settle_delay", a.cfg.SettleDelay,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A notifier that shuts down on its own stops the metrics listener too.
		defer stop()
		return w.Run(gctx, func(ev types.Event) {
			svc.pipeline.Notify(gctx, ev)
		})
	})
	if a.cfg.MetricsAddr != "" {
		g.Go(func() error {
			a.logger.Info("serving metrics", "addr", a.cfg.MetricsAddr)
			return svc.metrics.Serve(gctx, a.cfg.MetricsAddr)
		})
	}

	err = g.Wait()
	svc.pipeline.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return sysError("watch: %w", err)
	}
	a.logger.Info("stopped", "dir", dir)
	return nil
}

