package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sheetlog/internal/diff"
	"github.com/mesh-intelligence/sheetlog/internal/store"
)

func newDiffCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "diff <old.json> <new.json>",
		Short: "Compare two snapshot artifacts",
		Long: "Diff loads two stored snapshots and prints the change record between\n" +
			"them. Identical snapshots print an empty record.\n\n" +
			"Example:\n" +
			"  sheetlog diff old.json new.json\n" +
			"  sheetlog diff old.json new.json --format yaml",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := store.Load(args[0])
			if err != nil {
				return userError("%w", err)
			}
			next, err := store.Load(args[1])
			if err != nil {
				return userError("%w", err)
			}
			return printFormat(cmd.OutOrStdout(), format, diff.Compare(prev, next))
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, yaml")
	return cmd
}
