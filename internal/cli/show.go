package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheetlog/internal/paths"
	"github.com/mesh-intelligence/sheetlog/internal/store"
	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the latest snapshot of a workbook",
		Long: "Show prints the most recent stored snapshot of the named workbook.\n" +
			"A path is reduced to its file name.\n\n" +
			"Example:\n" +
			"  sheetlog show Q1.xlsx\n" +
			"  sheetlog show Q1.xlsx --format yaml",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShow(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, yaml")
	return cmd
}

func (a *app) runShow(cmd *cobra.Command, file, format string) error {
	name := filepath.Base(file)
	snapshots := store.OpenSnapshots(paths.SnapshotsDir(a.cfg.DataDir))

	grid, ok, err := snapshots.Latest(name)
	if err != nil {
		return sysError("latest snapshot of %s: %w", name, err)
	}
	if !ok {
		return userError("no snapshot of %s", name)
	}
	if grid == nil {
		grid = types.Grid{}
	}
	return printFormat(cmd.OutOrStdout(), format, grid)
}
