package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/cleanaudit/internal/audit"
	"github.com/dbsmedya/cleanaudit/internal/report"
)

func TestRunCommandStructure(t *testing.T) {
	assert.NotNil(t, runCmd)
	assert.Equal(t, "run", runCmd.Use)
	assert.NotEmpty(t, runCmd.Short)
	assert.NotEmpty(t, runCmd.Long)
	assert.NotNil(t, runCmd.RunE)

	for _, name := range []string{"format", "output", "workers", "no-color", "fail-on-critical"} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestRunAuditText(t *testing.T) {
	useFlags(t, writeFixture(t, cleanedCSV, ""), func() {
		reportFormat = "text"
		noColor = true
	})

	var buf bytes.Buffer
	runCmd.SetOut(&buf)
	defer runCmd.SetOut(nil)

	require.NoError(t, runAudit(runCmd, nil))
	out := buf.String()
	assert.Contains(t, out, "CLEANING AUDIT REPORT")
	assert.Contains(t, out, "row_count")
	assert.Contains(t, out, "reason: input not provided: dropped_duplicates",
		"a missing optional log skips its checks")
	assert.Contains(t, out, "Critical issues: NO")
	assert.NotContains(t, out, "\x1b[")
}

func TestRunAuditJSONFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	useFlags(t, writeFixture(t, cleanedCSV, ""), func() {
		reportFormat = "json"
		reportOutput = out
		workers = 1
	})

	require.NoError(t, runAudit(runCmd, nil))

	rep, err := report.Load(out)
	require.NoError(t, err)
	require.Len(t, rep.Results, 20)
	assert.Equal(t, "row_count", rep.Results[0].Key)
	assert.Equal(t, audit.StatusSkipped, rep.Results[0].Status)

	st, ok := rep.Summary().Get("negative_values")
	require.True(t, ok)
	assert.Equal(t, audit.StatusPass, st)
}

func TestRunAuditFailOnCritical(t *testing.T) {
	negative := strings.Replace(cleanedCSV, "2,40,250,0", "2,40,-250,0", 1)

	t.Run("reported but not fatal by default", func(t *testing.T) {
		useFlags(t, writeFixture(t, negative, ""), func() { noColor = true })
		var buf bytes.Buffer
		runCmd.SetOut(&buf)
		defer runCmd.SetOut(nil)

		require.NoError(t, runAudit(runCmd, nil))
		assert.Contains(t, buf.String(), "Critical issues: YES (negative_values)")
	})

	t.Run("flag makes it fatal", func(t *testing.T) {
		useFlags(t, writeFixture(t, negative, ""), func() {
			noColor = true
			failOnCritical = true
		})
		runCmd.SetOut(&bytes.Buffer{})
		defer runCmd.SetOut(nil)

		err := runAudit(runCmd, nil)
		assert.ErrorIs(t, err, errCriticalFailures)
		assert.ErrorContains(t, err, "negative_values")
	})
}

func TestRunAuditErrors(t *testing.T) {
	tests := []struct {
		name    string
		config  func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "nonexistent config",
			config:  func(t *testing.T) string { return "nonexistent-config.yaml" },
			wantErr: "failed to load config",
		},
		{
			name: "invalid configuration",
			config: func(t *testing.T) string {
				return writeFixture(t, cleanedCSV, "  interviewer_qc: qc.txt\n")
			},
			wantErr: "invalid configuration",
		},
		{
			name: "malformed input",
			config: func(t *testing.T) string {
				return writeFixture(t, "row_id,age\n1,30\n2,40,extra\n", "")
			},
			wantErr: "failed to load inputs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFlags(t, tt.config(t), nil)
			err := runAudit(runCmd, nil)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
