package audit

import (
	"fmt"
	"strconv"

	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

// Output is one result key a check produces.
type Output struct {
	Key      string
	Title    string
	Required bool
}

// Check is one entry of the declared audit sequence.
type Check struct {
	Number  int
	Key     string
	Outputs []Output
	run     func(e *env) ([]CheckResult, error)
}

// env is the read-only view a check runs against.
type env struct {
	in    *Inputs
	rules *Rules
}

// Checks returns the declared check sequence. Report order follows it.
func Checks() []Check {
	return []Check{
		{Number: 1, Key: "row_count", run: checkRowCount, Outputs: []Output{
			{Key: "row_count", Title: "Row-count reconciliation", Required: true},
		}},
		{Number: 2, Key: "duplicates", run: checkDuplicates, Outputs: []Output{
			{Key: "duplicates", Title: "Duplicate-removal verification"},
		}},
		{Number: 3, Key: "binary_flags", run: checkBinaryFlags, Outputs: []Output{
			{Key: "binary_flags", Title: "Binary-flag compliance"},
			{Key: "binary_flags.dtype", Title: "Checkbox columns are numeric"},
		}},
		{Number: 4, Key: "target_flag", run: checkTargetFlag, Outputs: []Output{
			{Key: "target_flag.counts", Title: "Target-flag distribution", Required: true},
			{Key: "target_flag.subsets", Title: "Partition tables hold only their flag value"},
		}},
		{Number: 5, Key: "skip_logic", run: checkSkipLogic, Outputs: []Output{
			{Key: "skip_logic", Title: "Skip-logic enforcement"},
		}},
		{Number: 6, Key: "cardinality", run: checkCardinality, Outputs: []Output{
			{Key: "cardinality", Title: "Cardinality-rule re-verification"},
		}},
		{Number: 7, Key: "constraints", run: checkConstraints, Outputs: []Output{
			{Key: "constraints", Title: "Constraint-range re-verification"},
		}},
		{Number: 8, Key: "column_count", run: checkColumnCount, Outputs: []Output{
			{Key: "column_count", Title: "Column-count integrity"},
		}},
		{Number: 9, Key: "missingness", run: checkMissingness, Outputs: []Output{
			{Key: "missingness", Title: "Missingness delta"},
		}},
		{Number: 10, Key: "types", run: checkTypes, Outputs: []Output{
			{Key: "types", Title: "Type regression", Required: true},
			{Key: "types.checkbox", Title: "Checkbox columns are integer-like"},
		}},
		{Number: 11, Key: "partition", run: checkPartition, Outputs: []Output{
			{Key: "partition", Title: "Partition completeness"},
		}},
		{Number: 12, Key: "negative_values", run: checkNegativeValues, Outputs: []Output{
			{Key: "negative_values", Title: "Negative-value sweep", Required: true},
		}},
		{Number: 13, Key: "checkpoint", run: checkCheckpoint, Outputs: []Output{
			{Key: "checkpoint", Title: "Checkpoint summary vs actual"},
		}},
		{Number: 14, Key: "column_profile", run: checkColumnProfile, Outputs: []Output{
			{Key: "column_profile", Title: "Column profile coverage"},
		}},
		{Number: 15, Key: "age_mismatch", run: checkAgeMismatch, Outputs: []Output{
			{Key: "age_mismatch", Title: "Age mismatch log summary"},
		}},
		{Number: 16, Key: "interviewer_qc", run: checkInterviewerQC, Outputs: []Output{
			{Key: "interviewer_qc", Title: "QC by interviewer"},
		}},
		{Number: 17, Key: "question_registry", run: checkQuestionRegistry, Outputs: []Output{
			{Key: "question_registry", Title: "Question registry consistency"},
		}},
	}
}

// RequiredKeys returns the result keys that must pass for a clean audit.
func RequiredKeys() []string {
	var keys []string
	for _, c := range Checks() {
		for _, o := range c.Outputs {
			if o.Required {
				keys = append(keys, o.Key)
			}
		}
	}
	return keys
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func pct(f float64) string { return fmt.Sprintf("%.1f%%", f*100) }

func rowLabel(r int) string { return fmt.Sprintf("row %d", r+1) }

// flagCounts tallies the partition flag of a table.
type flagCounts struct {
	ones, zeros, missing, other int
	otherSamples               []string
}

func countFlag(t *dataset.Table, flag string, samples int) (flagCounts, error) {
	var fc flagCounts
	err := t.Scan(flag, func(_ int, v dataset.Value) {
		if v.IsMissing() {
			fc.missing++
			return
		}
		f, ok := v.Float()
		switch {
		case ok && f == 1:
			fc.ones++
		case ok && f == 0:
			fc.zeros++
		default:
			fc.other++
			if len(fc.otherSamples) < samples {
				fc.otherSamples = append(fc.otherSamples, v.String())
			}
		}
	})
	return fc, err
}

// countFinding compares an expected and an actual count; the delta is
// actual minus expected.
func countFinding(subject string, expected, actual int) Finding {
	return Finding{
		Subject:  subject,
		Expected: itoa(expected),
		Actual:   itoa(actual),
		Delta:    actual - expected,
	}
}

// sampleAppend adds s to samples unless it is already there or the limit is hit.
func sampleAppend(samples []string, s string, limit int) []string {
	if len(samples) >= limit {
		return samples
	}
	for _, x := range samples {
		if x == s {
			return samples
		}
	}
	return append(samples, s)
}
