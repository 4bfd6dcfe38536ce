package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	// Execute exits the process on error, so only its presence is checked.
	assert.NotNil(t, Execute)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, Commit, "Commit should not be empty")
}

func TestCLIFlagsVariables(t *testing.T) {
	assert.Equal(t, "audit.yaml", cfgFile, "cfgFile should default to audit.yaml")
	assert.Equal(t, "", logLevel)
	assert.Equal(t, "", logFormat)
	assert.Equal(t, "", reportFormat)
	assert.Equal(t, "", reportOutput)
	assert.Equal(t, 0, workers)
	assert.False(t, noColor)
	assert.False(t, failOnCritical)
}

// useFlags sets the package-level flag variables for one test and restores
// them afterwards.
func useFlags(t *testing.T, config string, set func()) {
	t.Helper()
	saved := []interface{}{cfgFile, logLevel, logFormat, reportFormat, reportOutput, workers, noColor, failOnCritical}
	t.Cleanup(func() {
		cfgFile = saved[0].(string)
		logLevel = saved[1].(string)
		logFormat = saved[2].(string)
		reportFormat = saved[3].(string)
		reportOutput = saved[4].(string)
		workers = saved[5].(int)
		noColor = saved[6].(bool)
		failOnCritical = saved[7].(bool)
	})
	cfgFile = config
	logLevel = "error"
	if set != nil {
		set()
	}
}

const (
	rawCSV = `age,amount
30,100
40,250
55,
`
	cleanedCSV = `row_id,age,amount,has_loan
1,30,100,1
2,40,250,0
3,55,NA,0
`
)

// writeFixture writes a survey and a config referencing it, and returns
// the config path. extra is appended to the inputs section.
func writeFixture(t *testing.T, cleaned, extra string) string {
	t.Helper()
	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.csv")
	clean := filepath.Join(dir, "cleaned.csv")
	require.NoError(t, os.WriteFile(raw, []byte(rawCSV), 0644))
	require.NoError(t, os.WriteFile(clean, []byte(cleaned), 0644))

	content := "inputs:\n" +
		"  raw: " + raw + "\n" +
		"  cleaned: " + clean + "\n" +
		"  dropped_duplicates: " + filepath.Join(dir, "dropped.csv") + "\n" +
		extra +
		"logging:\n  level: error\n"
	path := filepath.Join(dir, "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
