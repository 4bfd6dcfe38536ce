package audit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dbsmedya/cleanaudit/internal/config"
	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

// Rules is the compiled form of config.RulesConfig.
type Rules struct {
	config.RulesConfig

	checkbox *regexp.Regexp
	matrix   []*regexp.Regexp
}

// NewRules compiles the column classification patterns.
func NewRules(cfg config.RulesConfig) (*Rules, error) {
	r := &Rules{RulesConfig: cfg}

	var err error
	if r.checkbox, err = regexp.Compile(cfg.CheckboxPattern); err != nil {
		return nil, fmt.Errorf("invalid checkbox pattern %q: %w", cfg.CheckboxPattern, err)
	}
	for _, p := range cfg.MatrixPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid matrix pattern %q: %w", p, err)
		}
		r.matrix = append(r.matrix, re)
	}
	if r.SampleSize <= 0 {
		r.SampleSize = 5
	}
	if r.TopN <= 0 {
		r.TopN = 10
	}
	return r, nil
}

// IsMultiSelect reports whether a column name encodes one option of a
// multi-select question, matrix blocks included.
func (r *Rules) IsMultiSelect(column string) bool {
	return strings.Contains(column, r.CheckboxSeparator) && r.checkbox.MatchString(column)
}

// IsMatrix reports whether a column belongs to a declared matrix/grid block.
func (r *Rules) IsMatrix(column string) bool {
	for _, re := range r.matrix {
		if re.MatchString(column) {
			return true
		}
	}
	return false
}

// IsCheckbox reports whether a column is a 0/1 checkbox outside any matrix block.
func (r *Rules) IsCheckbox(column string) bool {
	return r.IsMultiSelect(column) && !r.IsMatrix(column)
}

// IsConditional reports whether a column is only applicable for the
// applicable value of the partition flag.
func (r *Rules) IsConditional(column string) bool {
	for _, p := range r.ConditionalPrefixes {
		if strings.HasPrefix(column, p) {
			return true
		}
	}
	return false
}

// InapplicableValue is the partition flag value for which conditional
// columns must be empty.
func (r *Rules) InapplicableValue() float64 {
	if r.ApplicableValue == 0 {
		return 1
	}
	return 0
}

// CheckboxColumns returns the table's checkbox columns in table order.
func (r *Rules) CheckboxColumns(t *dataset.Table) []string {
	return r.filter(t, r.IsCheckbox)
}

// MultiSelectColumns returns every separator-encoded option column.
func (r *Rules) MultiSelectColumns(t *dataset.Table) []string {
	return r.filter(t, r.IsMultiSelect)
}

// ConditionalColumns returns the table's conditional-only columns.
func (r *Rules) ConditionalColumns(t *dataset.Table) []string {
	return r.filter(t, r.IsConditional)
}

func (r *Rules) filter(t *dataset.Table, keep func(string) bool) []string {
	var out []string
	for _, c := range t.Columns() {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// blockColumns returns the checkbox columns a cardinality rule sums over.
func (r *Rules) blockColumns(t *dataset.Table, rule config.CardinalityRule) []string {
	return r.filter(t, func(c string) bool {
		if !strings.HasPrefix(c, rule.Prefix) || !r.IsCheckbox(c) {
			return false
		}
		label := strings.ToLower(c)
		if len(rule.Include) > 0 && !containsAny(label, rule.Include) {
			return false
		}
		return !containsAny(label, rule.Exclude)
	})
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
