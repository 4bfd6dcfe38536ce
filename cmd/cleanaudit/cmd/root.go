package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/cleanaudit/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile      string
	logLevel     string
	logFormat    string
	reportFormat string
	reportOutput string
	workers      int
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "cleanaudit",
	Short: "Survey cleaning reconciliation audit",
	Long: `A CLI tool that audits a survey cleaning run by reconciling the raw
export, the cleaned master table, the partition tables and the pipeline's
side logs, and reports every check as PASS, FAIL, WARN or SKIPPED.

Features:
  - Row-count and duplicate-removal reconciliation
  - Checkbox, skip-logic, cardinality and range re-verification
  - Column-count, missingness and type regression checks
  - Checkpoint summary vs recomputed counters
  - CSV, XLSX and MySQL inputs
  - Text, JSON and YAML reports with run-to-run comparison`,
	Version:       Version,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "audit.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel     string
	LogFormat    string
	ReportFormat string
	ReportOutput string
	Workers      int
	NoColor      bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		ReportFormat: reportFormat,
		ReportOutput: reportOutput,
		Workers:      workers,
		NoColor:      noColor,
	}
}

// loadConfig reads the config file and applies the CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	o := GetCLIOverrides()
	cfg.ApplyOverrides(o.LogLevel, o.LogFormat, o.ReportFormat, o.ReportOutput, o.Workers, o.NoColor)
	return cfg, nil
}
