package audit

import (
	"fmt"
	"sort"

	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

// checkColumnCount reconciles the cleaned column count with raw minus empty
// columns, plus added columns, minus artifacts.
func checkColumnCount(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"raw", in.Raw}, RoleTable{"cleaned", in.Cleaned}); err != nil {
		return nil, err
	}

	empty := make(map[string]bool)
	if in.Raw.RowCount() > 0 {
		for _, col := range in.Raw.Columns() {
			rate, err := dataset.MissingRate(in.Raw, col)
			if err != nil {
				return nil, err
			}
			if rate >= 1 {
				empty[col] = true
			}
		}
	}
	added := 0
	for _, col := range e.rules.AddedColumns {
		if in.Cleaned.HasColumn(col) && !in.Raw.HasColumn(col) {
			added++
		}
	}
	artifacts := 0
	// An empty artifact is already subtracted as empty.
	for _, col := range e.rules.ArtifactColumns {
		if in.Raw.HasColumn(col) && !empty[col] {
			artifacts++
		}
	}

	expected := in.Raw.ColumnCount() - len(empty) + added - artifacts
	actual := in.Cleaned.ColumnCount()
	res := newResult("column_count")
	res.Expected = fmt.Sprintf("%d ± %d", expected, e.rules.ColumnTolerance)
	res.Actual = itoa(actual)
	res.Detail = fmt.Sprintf("raw %d - fully empty %d + added %d - artifacts %d", in.Raw.ColumnCount(), len(empty), added, artifacts)
	f := countFinding("expected vs actual cleaned columns", expected, actual)
	res.add(f)
	if f.Delta > e.rules.ColumnTolerance || -f.Delta > e.rules.ColumnTolerance {
		res.fail()
	}

	onlyRaw, onlyCleaned := dataset.SymmetricDifference(in.Raw, in.Cleaned)
	res.add(Finding{Subject: "columns added by cleaning", Count: len(onlyCleaned), Samples: onlyCleaned})
	res.add(Finding{Subject: "columns removed by cleaning", Count: len(onlyRaw), Samples: onlyRaw})
	return []CheckResult{res}, nil
}

type rateDelta struct {
	column     string
	raw, clean float64
}

func (d rateDelta) delta() float64 { return d.clean - d.raw }

func (d rateDelta) finding(note string) Finding {
	return Finding{
		Subject:  d.column,
		Expected: pct(d.raw),
		Actual:   pct(d.clean),
		Note:     fmt.Sprintf("%s %+.1f pp", note, d.delta()*100),
	}
}

// checkMissingness compares per-column missing rates of raw and cleaned,
// ignoring conditional-only columns.
func checkMissingness(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"raw", in.Raw}, RoleTable{"cleaned", in.Cleaned}); err != nil {
		return nil, err
	}

	threshold := e.rules.MissingnessThreshold
	var increases, decreases []rateDelta
	analysed := 0
	for _, col := range dataset.CommonColumns(in.Raw, in.Cleaned) {
		if e.rules.IsConditional(col) {
			continue
		}
		analysed++
		before, err := dataset.MissingRate(in.Raw, col)
		if err != nil {
			return nil, err
		}
		after, err := dataset.MissingRate(in.Cleaned, col)
		if err != nil {
			return nil, err
		}
		d := rateDelta{column: col, raw: before, clean: after}
		switch {
		case d.delta() > threshold:
			increases = append(increases, d)
		case d.delta() < -threshold:
			decreases = append(decreases, d)
		}
	}
	sort.SliceStable(increases, func(i, j int) bool { return increases[i].delta() > increases[j].delta() })
	sort.SliceStable(decreases, func(i, j int) bool { return decreases[i].delta() < decreases[j].delta() })

	res := newResult("missingness")
	res.Expected = fmt.Sprintf("no column more than %s more missing", pct(threshold))
	res.Actual = fmt.Sprintf("%d increased, %d decreased of %d columns", len(increases), len(decreases), analysed)
	for _, d := range increases {
		res.add(d.finding("increase"))
	}
	for _, d := range decreases {
		res.add(d.finding("decrease (informational)"))
	}
	if len(increases) > 0 {
		res.fail()
	}
	return []CheckResult{res}, nil
}

// checkColumnProfile verifies the column profile covers every cleaned column.
func checkColumnProfile(e *env) ([]CheckResult, error) {
	in, cols := e.in, e.rules.SideLogs
	if err := need(RoleTable{"cleaned", in.Cleaned}, RoleTable{"column_profile", in.ColumnProfile}); err != nil {
		return nil, err
	}

	res := newResult("column_profile")
	res.Expected = itoa(in.Cleaned.ColumnCount())
	res.Actual = itoa(in.ColumnProfile.RowCount())
	if in.ColumnProfile.RowCount() != in.Cleaned.ColumnCount() {
		res.fail()
	}
	res.add(countFinding("profile rows vs cleaned columns", in.Cleaned.ColumnCount(), in.ColumnProfile.RowCount()))

	rates, err := in.ColumnProfile.Column(cols.ProfileMissingPct)
	if err != nil {
		res.Detail = err.Error()
		return []CheckResult{res}, nil
	}
	names, _ := in.ColumnProfile.Column(cols.ProfileColumn)

	type entry struct {
		name string
		rate float64
	}
	var top []entry
	for r, v := range rates {
		x, ok := v.Float()
		if !ok {
			continue
		}
		name := rowLabel(r)
		if names != nil && !names[r].IsMissing() {
			name = names[r].String()
		}
		top = append(top, entry{name, x})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].rate > top[j].rate })
	if len(top) > e.rules.TopN {
		top = top[:e.rules.TopN]
	}
	for _, t := range top {
		res.add(Finding{Subject: t.name, Actual: ftoa(t.rate), Note: "most missing"})
	}
	return []CheckResult{res}, nil
}

// checkQuestionRegistry compares registry columns with cleaned columns.
func checkQuestionRegistry(e *env) ([]CheckResult, error) {
	in, cols := e.in, e.rules.SideLogs
	if err := need(RoleTable{"cleaned", in.Cleaned}, RoleTable{"question_registry", in.QuestionRegistry}); err != nil {
		return nil, err
	}

	registered := make(map[string]struct{})
	if err := in.QuestionRegistry.Scan(cols.RegistryColumn, func(_ int, v dataset.Value) {
		if !v.IsMissing() {
			registered[v.String()] = struct{}{}
		}
	}); err != nil {
		return nil, err
	}

	var notCleaned, notRegistered []string
	for name := range registered {
		if !in.Cleaned.HasColumn(name) {
			notCleaned = append(notCleaned, name)
		}
	}
	for _, c := range in.Cleaned.Columns() {
		if _, ok := registered[c]; !ok {
			notRegistered = append(notRegistered, c)
		}
	}
	sort.Strings(notCleaned)
	sort.Strings(notRegistered)

	res := newResult("question_registry")
	res.Expected = "registry and cleaned columns agree"
	res.Actual = fmt.Sprintf("%d only in registry, %d only in cleaned", len(notCleaned), len(notRegistered))
	if len(notCleaned) > 0 {
		res.warn()
		res.add(Finding{Subject: "in registry, not in cleaned", Count: len(notCleaned), Samples: limit(notCleaned, e.rules.TopN)})
	}
	if len(notRegistered) > 0 {
		res.warn()
		res.add(Finding{Subject: "in cleaned, not in registry", Count: len(notRegistered), Samples: limit(notRegistered, e.rules.TopN)})
	}

	byType := make(map[string]int)
	_ = in.QuestionRegistry.Scan(cols.RegistryType, func(_ int, v dataset.Value) {
		byType[v.String()]++
	})
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		res.add(Finding{Subject: "type " + t, Count: byType[t]})
	}
	res.Detail = fmt.Sprintf("%d registry rows", in.QuestionRegistry.RowCount())
	return []CheckResult{res}, nil
}

func limit(s []string, n int) []string {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
