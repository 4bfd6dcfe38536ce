package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version, commit and build platform.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	cmd.Printf("cleanaudit %s (commit %s)\n", Version, Commit)
	cmd.Printf("  built with %s for %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
