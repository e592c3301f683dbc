package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheetlog/internal/sqlite"
	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

const historyTimeLayout = "2006-01-02 15:04:05.000"

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "List recorded captures",
		Long: "Without an argument, history summarizes every recorded workbook. With a\n" +
			"workbook file name it lists that workbook's captures, newest first.\n\n" +
			"Example:\n" +
			"  sheetlog history\n" +
			"  sheetlog history Q1.xlsx --limit 10\n" +
			"  sheetlog history Q1.xlsx --json",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd, args, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of captures (0 = no limit)")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, args []string, limit int) error {
	if limit < 0 {
		return userError("--limit must not be negative")
	}

	catalog, err := sqlite.Open(a.cfg.DataDir)
	if err != nil {
		return sysError("open catalog: %w", err)
	}
	defer catalog.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		files, err := catalog.Files()
		if err != nil {
			return sysError("%w", err)
		}
		if a.flags.jsonMode {
			if files == nil {
				files = []types.FileSummary{}
			}
			return printJSON(out, files)
		}
		if len(files) == 0 {
			fmt.Fprintln(out, "No captures found.")
			return nil
		}
		rows := make([][]string, len(files))
		for i, f := range files {
			rows[i] = []string{f.FileName, strconv.Itoa(f.Captures), strconv.Itoa(f.ChangeRecs), localTime(f.LastCaptured)}
		}
		printTable(out, []string{"FILE", "CAPTURES", "CHANGES", "LAST CAPTURED"}, rows)
		return nil
	}

	history, err := catalog.History(args[0], limit)
	if err != nil {
		return sysError("%w", err)
	}
	if a.flags.jsonMode {
		if history == nil {
			history = []types.Capture{}
		}
		return printJSON(out, history)
	}
	if len(history) == 0 {
		fmt.Fprintf(out, "No captures found for %s.\n", args[0])
		return nil
	}
	rows := make([][]string, len(history))
	for i, c := range history {
		rows[i] = []string{
			localTime(c.CapturedAt),
			c.Kind,
			outcome(c),
			strconv.Itoa(c.Sheets),
			strconv.Itoa(c.Rows),
			strconv.Itoa(c.Cells),
			strconv.Itoa(c.Changes.ModifiedCells),
		}
	}
	printTable(out, []string{"CAPTURED", "KIND", "OUTCOME", "SHEETS", "ROWS", "CELLS", "MODIFIED"}, rows)
	fmt.Fprintf(out, "Total: %d capture(s)\n", len(history))
	return nil
}

func outcome(c types.Capture) string {
	switch {
	case c.Baseline:
		return "baseline"
	case c.ChangePath == "":
		return "unchanged"
	default:
		return "changed"
	}
}

func localTime(t time.Time) string {
	return t.Local().Format(historyTimeLayout)
}
