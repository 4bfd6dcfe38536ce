package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cleanaudit/internal/report"
)

// errRegressions is returned when a check fails now that passed before.
var errRegressions = errors.New("regressions found")

var diffCmd = &cobra.Command{
	Use:   "diff <before> <after>",
	Short: "Compare two saved audit reports",
	Long: `Diff compares the check statuses of two reports saved with
"run --format json" or "run --format yaml" and lists every key whose
status changed. It exits non-zero when a check regressed to FAIL.

Example:
  cleanaudit diff last-week.json report.json`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colours")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	before, err := report.Load(args[0])
	if err != nil {
		return err
	}
	after, err := report.Load(args[1])
	if err != nil {
		return err
	}

	changes := report.Compare(before, after)
	if err := report.RenderChanges(cmd.OutOrStdout(), changes, !noColor); err != nil {
		return fmt.Errorf("failed to write changes: %w", err)
	}

	if report.HasRegressions(changes) {
		return errRegressions
	}
	return nil
}
