package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/cleanaudit/internal/config"
)

func TestRulesCommandStructure(t *testing.T) {
	assert.NotNil(t, rulesCmd)
	assert.Equal(t, "rules", rulesCmd.Use)
	assert.NotEmpty(t, rulesCmd.Short)
	assert.NotNil(t, rulesCmd.RunE)
}

func TestRunRules(t *testing.T) {
	useFlags(t, writeFixture(t, cleanedCSV, ""), nil)

	var buf bytes.Buffer
	rulesCmd.SetOut(&buf)
	defer rulesCmd.SetOut(nil)

	require.NoError(t, runRules(rulesCmd, nil))
	out := buf.String()
	assert.Contains(t, out, "Partition flag:      has_loan (conditional when = 1)")
	assert.Contains(t, out, "Cardinality limits:  4 rule(s)")
	assert.Contains(t, out, `- Q2.2 max 3 selections: prefix "2.2." at most 3`)
	assert.Contains(t, out, "include мувофиқ, exclude эмас")
	assert.Contains(t, out, "- age: 1.1. Ёшингиз: in [18, 100]")
	assert.Contains(t, out, "(raw violations must be nulled)")
}

func TestFormatRange(t *testing.T) {
	lo, hi := 0.5, 20.0
	assert.Equal(t, "[0.5, 20]", formatRange(config.RangeRule{Lower: &lo, Upper: &hi}))
	assert.Equal(t, "[0.5, +inf)", formatRange(config.RangeRule{Lower: &lo}))
	assert.Equal(t, "(-inf, 20]", formatRange(config.RangeRule{Upper: &hi}))
}
