package audit

import "github.com/dbsmedya/cleanaudit/internal/dataset"

// Inputs are the tables of one audit run. Only Raw and Cleaned are always
// present; every other field may be nil, which skips the checks that need it.
type Inputs struct {
	Raw          *dataset.Table
	Cleaned      *dataset.Table
	Borrowers    *dataset.Table
	NonBorrowers *dataset.Table
	Checkpoint   *dataset.Checkpoint

	DroppedLog       *dataset.Table
	CardinalityLog   *dataset.Table
	ConstraintFixLog *dataset.Table
	AgeMismatchLog   *dataset.Table
	ColumnProfile    *dataset.Table
	QuestionRegistry *dataset.Table
	InterviewerQC    *dataset.Table
}

// RoleTable pairs a loaded table with its input role.
type RoleTable struct {
	Role  string
	Table *dataset.Table
}

// Tables lists the loaded tables by role, skipping absent ones.
func (in *Inputs) Tables() []RoleTable {
	all := []RoleTable{
		{"raw", in.Raw},
		{"cleaned", in.Cleaned},
		{"borrowers", in.Borrowers},
		{"non_borrowers", in.NonBorrowers},
		{"dropped_duplicates", in.DroppedLog},
		{"cardinality_violations", in.CardinalityLog},
		{"constraint_fixes", in.ConstraintFixLog},
		{"age_mismatch", in.AgeMismatchLog},
		{"column_profile", in.ColumnProfile},
		{"question_registry", in.QuestionRegistry},
		{"interviewer_qc", in.InterviewerQC},
	}
	out := all[:0]
	for _, rt := range all {
		if rt.Table != nil {
			out = append(out, rt)
		}
	}
	return out
}

// need returns ErrInputMissing for the first absent table.
func need(tables ...RoleTable) error {
	for _, rt := range tables {
		if rt.Table == nil {
			return missingInput(rt.Role)
		}
	}
	return nil
}
