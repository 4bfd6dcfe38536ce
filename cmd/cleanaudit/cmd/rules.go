package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cleanaudit/internal/config"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the configured survey rules",
	Long: `Rules displays the survey rule set the audit checks against: the
partition flag, conditional prefixes, checkbox classification, cardinality
limits and constraint ranges.

Example:
  cleanaudit rules --config audit.yaml`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	r := cfg.Rules

	cmd.Printf("Rules defined in %s:\n\n", GetConfigFile())

	cmd.Printf("Partition flag:      %s (conditional when = %s)\n", r.PartitionFlag, formatNumber(r.ApplicableValue))
	cmd.Printf("Row id column:       %s\n", orNone(r.RowIDColumn))
	cmd.Printf("Conditional prefixes: %s\n", orNone(strings.Join(r.ConditionalPrefixes, ", ")))
	cmd.Printf("Checkbox separator:  %q\n", r.CheckboxSeparator)
	cmd.Printf("Checkbox pattern:    %s\n", r.CheckboxPattern)
	if len(r.MatrixPatterns) > 0 {
		cmd.Printf("Matrix patterns:\n")
		for _, p := range r.MatrixPatterns {
			cmd.Printf("   - %s\n", p)
		}
	}

	cmd.Printf("\nCardinality limits:  %d rule(s)\n", len(r.Cardinality))
	for _, c := range r.Cardinality {
		cmd.Printf("   - %s: prefix %q at most %d", c.Name, c.Prefix, c.Max)
		if len(c.Include) > 0 {
			cmd.Printf(", include %s", strings.Join(c.Include, "|"))
		}
		if len(c.Exclude) > 0 {
			cmd.Printf(", exclude %s", strings.Join(c.Exclude, "|"))
		}
		cmd.Printf("\n")
	}

	cmd.Printf("\nConstraint ranges:   %d rule(s)\n", len(r.Ranges))
	for _, rr := range r.Ranges {
		cmd.Printf("   - %s: %s in %s", rr.Name, rr.Column, formatRange(rr))
		if rr.VerifyRawNulled {
			cmd.Printf(" (raw violations must be nulled)")
		}
		cmd.Printf("\n")
	}

	cmd.Printf("\nAdded columns:       %s\n", orNone(strings.Join(r.AddedColumns, ", ")))
	cmd.Printf("Artifact columns:    %s\n", orNone(strings.Join(r.ArtifactColumns, ", ")))
	cmd.Printf("Column tolerance:    %d\n", r.ColumnTolerance)
	cmd.Printf("Missingness delta:   %s pp\n", formatNumber(r.MissingnessThreshold))
	cmd.Printf("Interviewer max missing: %s%%\n", formatNumber(r.InterviewerMissingPctMax))
	return nil
}

func formatRange(r config.RangeRule) string {
	lo, hi := "(-inf", "+inf)"
	if r.Lower != nil {
		lo = "[" + formatNumber(*r.Lower)
	}
	if r.Upper != nil {
		hi = formatNumber(*r.Upper) + "]"
	}
	return lo + ", " + hi
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
