package audit

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/cleanaudit/internal/config"
	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

func outOfBounds(rule config.RangeRule, f float64) bool {
	if rule.Lower != nil && f < *rule.Lower {
		return true
	}
	return rule.Upper != nil && f > *rule.Upper
}

func describeBounds(rule config.RangeRule) string {
	switch {
	case rule.Lower != nil && rule.Upper != nil:
		return fmt.Sprintf("[%s, %s]", ftoa(*rule.Lower), ftoa(*rule.Upper))
	case rule.Lower != nil:
		return ">= " + ftoa(*rule.Lower)
	case rule.Upper != nil:
		return "<= " + ftoa(*rule.Upper)
	default:
		return "unbounded"
	}
}

// rowMapping maps every raw row to its cleaned row, or -1 when the row did
// not survive cleaning. Rows are matched by the row-id column when both
// tables carry it, otherwise by order among raw rows kept by keep=first
// de-duplication.
func rowMapping(raw, cleaned *dataset.Table, rowID string) ([]int, error) {
	mapping := make([]int, raw.RowCount())
	for i := range mapping {
		mapping[i] = -1
	}

	if rowID != "" && raw.HasColumn(rowID) && cleaned.HasColumn(rowID) {
		byID := make(map[string]int, cleaned.RowCount())
		if err := cleaned.Scan(rowID, func(r int, v dataset.Value) {
			if !v.IsMissing() {
				byID[v.String()] = r
			}
		}); err != nil {
			return nil, err
		}
		err := raw.Scan(rowID, func(r int, v dataset.Value) {
			if c, ok := byID[v.String()]; ok && !v.IsMissing() {
				mapping[r] = c
			}
		})
		return mapping, err
	}

	dup, err := dataset.DuplicateMask(raw, raw.Columns(), dataset.KeepFirst)
	if err != nil {
		return nil, err
	}
	kept := raw.RowCount() - dataset.CountTrue(dup)
	if kept != cleaned.RowCount() {
		return nil, dataset.SchemaMismatchf("cannot map raw rows to cleaned rows: %d raw rows survive de-duplication, cleaned has %d and no %q column", kept, cleaned.RowCount(), rowID)
	}
	next := 0
	for r, isDup := range dup {
		if !isDup {
			mapping[r] = next
			next++
		}
	}
	return mapping, nil
}

// fixLogCounts counts constraint-fix log entries per column.
func fixLogCounts(e *env) (map[string]int, error) {
	out := make(map[string]int)
	err := e.in.ConstraintFixLog.Scan(e.rules.SideLogs.FixColumn, func(_ int, v dataset.Value) {
		if !v.IsMissing() {
			out[v.String()]++
		}
	})
	return out, err
}

// checkConstraints verifies range rules on the cleaned table and that
// out-of-range raw values were nulled rather than dropped.
func checkConstraints(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"cleaned", in.Cleaned}); err != nil {
		return nil, err
	}

	res := newResult("constraints")
	res.Expected = "0 out-of-range values in cleaned"

	var mapping []int
	var mappingErr error
	mappingDone := false
	var fixes map[string]int
	var fixErr error
	if in.ConstraintFixLog != nil {
		fixes, fixErr = fixLogCounts(e)
	}

	checked, remaining := 0, 0
	var skipped []string
	for _, rule := range e.rules.Ranges {
		if !in.Cleaned.HasColumn(rule.Column) {
			skipped = append(skipped, rule.Name)
			res.add(Finding{Subject: rule.Name, Note: fmt.Sprintf("skipped: column %q not in cleaned", rule.Column)})
			continue
		}
		checked++

		f := Finding{Subject: rule.Name, Expected: describeBounds(rule)}
		var samples []string
		if err := in.Cleaned.Scan(rule.Column, func(_ int, v dataset.Value) {
			if x, ok := v.Float(); ok && outOfBounds(rule, x) {
				f.Count++
				samples = sampleAppend(samples, v.String(), e.rules.SampleSize)
			}
		}); err != nil {
			return nil, err
		}
		f.Samples = samples
		f.Actual = fmt.Sprintf("%d out of range", f.Count)
		remaining += f.Count
		if f.Count > 0 {
			res.fail()
		}
		res.add(f)

		if !rule.VerifyRawNulled {
			continue
		}
		if in.Raw == nil || !in.Raw.HasColumn(rule.Column) {
			res.add(Finding{Subject: rule.Name + " raw fixes", Note: "skipped: column not in raw"})
			continue
		}
		if !mappingDone {
			mapping, mappingErr = rowMapping(in.Raw, in.Cleaned, e.rules.RowIDColumn)
			mappingDone = true
		}
		if mappingErr != nil {
			res.add(Finding{Subject: rule.Name + " raw fixes", Note: "skipped: " + mappingErr.Error()})
			continue
		}
		fixed, notNulled, err := verifyNulled(e, rule, mapping)
		if err != nil {
			return nil, err
		}
		switch {
		case in.ConstraintFixLog == nil:
			fixed.Note = joinNote(fixed.Note, "no constraint fix log provided")
		case fixErr != nil:
			fixed.Note = joinNote(fixed.Note, "fix log unreadable: "+fixErr.Error())
		default:
			logged := fixes[rule.Column]
			fixed.Note = joinNote(fixed.Note, fmt.Sprintf("fix log has %d entries", logged))
			if logged != fixed.Count {
				fixed.Delta = logged - fixed.Count
				res.fail()
			}
		}
		if notNulled > 0 {
			res.fail()
		}
		res.add(fixed)
	}

	if checked == 0 && len(e.rules.Ranges) > 0 {
		return nil, &dataset.ColumnNotFoundError{Table: in.Cleaned.Name(), Column: e.rules.Ranges[0].Column}
	}
	res.Actual = fmt.Sprintf("%d out-of-range values in %d columns", remaining, checked)
	if len(skipped) > 0 {
		res.Detail = fmt.Sprintf("rules skipped: %s", strings.Join(skipped, ", "))
	}
	return []CheckResult{res}, nil
}

// verifyNulled checks raw out-of-range values that survived de-duplication
// are missing in cleaned. The finding's Count is the number of such raw
// values; notNulled counts those still present in cleaned.
func verifyNulled(e *env, rule config.RangeRule, mapping []int) (f Finding, notNulled int, err error) {
	f = Finding{Subject: rule.Name + " raw fixes", Expected: "out-of-range raw values are missing in cleaned"}
	cleanedCol, err := e.in.Cleaned.Column(rule.Column)
	if err != nil {
		return f, 0, err
	}

	dropped := 0
	var samples []string
	err = e.in.Raw.Scan(rule.Column, func(r int, v dataset.Value) {
		x, ok := v.Float()
		if !ok || !outOfBounds(rule, x) {
			return
		}
		c := mapping[r]
		if c < 0 {
			dropped++
			return
		}
		f.Count++
		if !cleanedCol[c].IsMissing() {
			notNulled++
			samples = sampleAppend(samples, fmt.Sprintf("%s: %s", rowLabel(r), cleanedCol[c].String()), e.rules.SampleSize)
		}
	})
	if err != nil {
		return f, 0, err
	}
	f.Samples = samples
	if notNulled > 0 {
		f.Actual = fmt.Sprintf("%d of %d not nulled", notNulled, f.Count)
	} else {
		f.Actual = fmt.Sprintf("%d of %d nulled", f.Count, f.Count)
	}
	if dropped > 0 {
		f.Note = fmt.Sprintf("%d out-of-range raw rows were dropped as duplicates", dropped)
	}
	return f, notNulled, nil
}

func joinNote(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
