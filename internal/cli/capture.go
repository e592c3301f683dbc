package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

func newCaptureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "capture <path>",
		Short: "Capture one workbook now",
		Long: "Capture reads the workbook immediately, without debounce or settle\n" +
			"delay, diffs it against its latest snapshot and persists the result.\n\n" +
			"Example:\n" +
			"  sheetlog capture ./reports/Q1.xlsx\n" +
			"  sheetlog capture ./reports/Q1.xlsx --json",
		Args: cobra.ExactArgs(1),
		RunE: a.runCapture,
	}
}

func (a *app) runCapture(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return sysError("resolve path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return userError("%w", err)
	}
	if info.IsDir() {
		return userError("%s is a directory", path)
	}

	svc, err := a.openService()
	if err != nil {
		return err
	}
	defer svc.Close(a.logger)

	c, err := svc.pipeline.Capture(cmd.Context(), types.Event{Kind: types.EventModified, Path: path})
	if err != nil {
		if errors.Is(err, types.ErrUnreadable) {
			return userError("%w", err)
		}
		return sysError("%w", err)
	}

	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), c)
	}
	printCapture(cmd.OutOrStdout(), c)
	return nil
}

// printCapture writes a one-capture summary in human-readable form.
func printCapture(w io.Writer, c types.Capture) {
	switch {
	case c.Baseline:
		fmt.Fprintf(w, "%s: baseline (%d sheets, %d rows, %d cells)\n", c.FileName, c.Sheets, c.Rows, c.Cells)
	case c.ChangePath == "":
		fmt.Fprintf(w, "%s: unchanged\n", c.FileName)
	default:
		fmt.Fprintf(w, "%s: %d added sheets, %d added rows, %d modified cells\n",
			c.FileName, c.Changes.AddedSheets, c.Changes.AddedRows, c.Changes.ModifiedCells)
		fmt.Fprintf(w, "Changes: %s\n", c.ChangePath)
	}
	fmt.Fprintf(w, "Snapshot: %s\n", c.SnapshotPath)
}
