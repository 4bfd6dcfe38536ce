package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigFile(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	for _, want := range []string{"", "/path/to/custom.yaml", "/path/to/my audit.yaml"} {
		cfgFile = want
		assert.Equal(t, want, GetConfigFile())
	}
}

func TestGetCLIOverrides(t *testing.T) {
	useFlags(t, "", func() {
		logFormat = "json"
		reportFormat = "yaml"
		reportOutput = "out.yaml"
		workers = 8
		noColor = true
	})

	assert.Equal(t, CLIOverrides{
		LogLevel:     "error",
		LogFormat:    "json",
		ReportFormat: "yaml",
		ReportOutput: "out.yaml",
		Workers:      8,
		NoColor:      true,
	}, GetCLIOverrides())
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	useFlags(t, writeFixture(t, cleanedCSV, ""), func() {
		reportFormat = "json"
		workers = 2
		noColor = true
	})

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Equal(t, 2, cfg.Processing.Workers)
	assert.False(t, cfg.Report.Color)
	assert.Equal(t, "has_loan", cfg.Rules.PartitionFlag, "defaults survive")
}

func TestRootCommandWiring(t *testing.T) {
	assert.Equal(t, "cleanaudit", rootCmd.Use)
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "validate", "rules", "checks", "diff", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
	for _, flag := range []string{"config", "log-level", "log-format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag))
	}
}
