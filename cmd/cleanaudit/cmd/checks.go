package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/cleanaudit/internal/audit"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the audit checks in report order",
	Long: `Checks lists the declared audit sequence with the result keys each
check produces. Keys marked with * are required to pass.

Example:
  cleanaudit checks`,
	Args: cobra.NoArgs,
	RunE: runChecks,
}

func init() {
	rootCmd.AddCommand(checksCmd)
}

func runChecks(cmd *cobra.Command, args []string) error {
	checks := audit.Checks()
	cmd.Printf("Audit checks (%d):\n\n", len(checks))

	for _, c := range checks {
		cmd.Printf("%2d. %s\n", c.Number, c.Key)
		for _, o := range c.Outputs {
			marker := " "
			if o.Required {
				marker = "*"
			}
			cmd.Printf("    %s %-22s %s\n", marker, o.Key, o.Title)
		}
	}
	cmd.Printf("\n* required to pass\n")
	return nil
}
