package audit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/cleanaudit/internal/config"
	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

const (
	ageCol   = "1.1. Age"
	optA     = "2.2. Why?/ A"
	optB     = "2.2. Why?/ B"
	bankX    = "2.5. Bank?/ X"
	amount   = "2.6 Amount"
	loanQ    = "Loan?"
	emptyCol = "empty"
)

// testRules is the default rule set narrowed to the fixture survey.
func testRules(t testing.TB, mutate ...func(*config.RulesConfig)) *Rules {
	t.Helper()
	cfg := config.DefaultRules()
	cfg.ConditionalPrefixes = []string{"2.5", "2.6"}
	cfg.Cardinality = []config.CardinalityRule{{Name: "Q2.2 max 2", Prefix: "2.2.", Max: 2}}
	lo, hi := 18.0, 100.0
	cfg.Ranges = []config.RangeRule{{Name: "age", Column: ageCol, Lower: &lo, Upper: &hi, VerifyRawNulled: true}}
	cfg.AddedColumns = []string{"row_id", "has_loan"}
	cfg.MissingnessThreshold = 0.25
	for _, m := range mutate {
		m(&cfg)
	}
	r, err := NewRules(cfg)
	require.NoError(t, err)
	return r
}

var (
	rawColumns     = []string{ageCol, optA, optB, bankX, amount, loanQ, emptyCol}
	cleanedColumns = []string{"row_id", ageCol, optA, optB, bankX, amount, loanQ, "has_loan"}
)

func rawFixture() *dataset.Table {
	return dataset.MustTable("raw", rawColumns,
		dataset.Values(30, 1, 0, 1, 100, "yes", nil),
		dataset.Values(-5, 0, 1, 0, 200, "yes", nil),
		dataset.Values(45, 1, 1, nil, nil, "no", nil),
		dataset.Values(50, 0, 0, 0, nil, "no", nil),
		dataset.Values(60, 0, 1, nil, nil, nil, nil),
		dataset.Values(30, 1, 0, 1, 100, "yes", nil),
	)
}

func cleanedRows() [][]dataset.Value {
	return [][]dataset.Value{
		dataset.Values(1, 30, 1, 0, 1, 100, "yes", 1),
		dataset.Values(2, nil, 0, 1, 0, 200, "yes", 1),
		dataset.Values(3, 45, 1, 1, 0, nil, "no", 0),
		dataset.Values(4, 50, 0, 0, 0, nil, "no", 0),
		dataset.Values(5, 60, 0, 1, nil, nil, nil, nil),
	}
}

// fixtureInputs is a consistent cleaning run on which every check passes.
func fixtureInputs(t testing.TB) *Inputs {
	t.Helper()
	rows := cleanedRows()
	cleaned := dataset.MustTable("cleaned", cleanedColumns, rows...)

	profileRows := make([][]dataset.Value, 0, len(cleanedColumns))
	registryRows := make([][]dataset.Value, 0, len(cleanedColumns))
	for _, c := range cleanedColumns {
		rate, err := dataset.MissingRate(cleaned, c)
		require.NoError(t, err)
		profileRows = append(profileRows, dataset.Values(c, rate*100))
		registryRows = append(registryRows, dataset.Values(c, "single"))
	}

	return &Inputs{
		Raw:          rawFixture(),
		Cleaned:      cleaned,
		Borrowers:    dataset.MustTable("borrowers", cleanedColumns, rows[0], rows[1]),
		NonBorrowers: dataset.MustTable("non_borrowers", cleanedColumns, rows[2], rows[3]),
		Checkpoint: dataset.CheckpointOf(
			"raw_rows", 6,
			"raw_cols", 7,
			"dropped_exact_duplicates", 1,
			"rows_after_drop", 5,
			"cols_after_drop_empty", 8,
			"dummy_cols_count", 3,
			"borrowers_n", 2,
			"nonborrowers_n", 2,
			"has_loan_missing_n", 1,
			"cardinality_violations_n", 0,
			"constraint_fixes_n", 1,
			"skip_logic_violations_n", 0,
		),
		DroppedLog:       dataset.MustTable("dropped_duplicates", rawColumns, dataset.Values(30, 1, 0, 1, 100, "yes", nil)),
		CardinalityLog:   dataset.MustTable("cardinality_violations", []string{"row_id", "rule_name"}),
		ConstraintFixLog: dataset.MustTable("constraint_fixes", []string{"row_id", "column", "rule"}, dataset.Values(2, ageCol, "age 18-100")),
		AgeMismatchLog:   dataset.MustTable("age_mismatch", []string{"row_id", "age", "age_q"}, dataset.Values(1, 30, 31)),
		ColumnProfile:    dataset.MustTable("column_profile", []string{"column", "missing_pct"}, profileRows...),
		QuestionRegistry: dataset.MustTable("question_registry", []string{"column", "type"}, registryRows...),
		InterviewerQC: dataset.MustTable("interviewer_qc", []string{"interviewer", "n_interviews", "avg_missing_pct_all_vars"},
			dataset.Values("A", 3, 10),
			dataset.Values("B", 2, 12),
		),
	}
}

func runOne(t *testing.T, fn func(*env) ([]CheckResult, error), in *Inputs, r *Rules) []CheckResult {
	t.Helper()
	results, err := fn(&env{in: in, rules: r})
	require.NoError(t, err)
	return results
}

func resultFor(t *testing.T, results []CheckResult, key string) CheckResult {
	t.Helper()
	for _, r := range results {
		if r.Key == key {
			return r
		}
	}
	require.Failf(t, "result not found", "no result with key %q", key)
	return CheckResult{}
}

func findingFor(t *testing.T, r CheckResult, subject string) Finding {
	t.Helper()
	for _, f := range r.Findings {
		if f.Subject == subject {
			return f
		}
	}
	require.Failf(t, "finding not found", "no finding %q in %s: %+v", subject, r.Key, r.Findings)
	return Finding{}
}

// replaceCell returns a copy of t with one cell changed.
func replaceCell(t testing.TB, tbl *dataset.Table, row int, column string, v dataset.Value) *dataset.Table {
	t.Helper()
	cols := tbl.Columns()
	rows := make([][]dataset.Value, tbl.RowCount())
	for r := range rows {
		vals, err := tbl.Row(r, cols)
		require.NoError(t, err)
		rows[r] = vals
	}
	for i, c := range cols {
		if c == column {
			rows[row][i] = v
		}
	}
	out, err := dataset.NewTable(tbl.Name(), cols, rows)
	require.NoError(t, err)
	return out
}
