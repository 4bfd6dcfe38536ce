package audit

import (
	"fmt"
	"sort"

	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

// columnCount is a per-column tally used for top-N listings.
type columnCount struct {
	column  string
	count   int
	samples []string
}

// topColumns orders tallies by count, highest first, keeping table order
// among equal counts, and drops zero counts.
func topColumns(counts []columnCount, n int) []columnCount {
	out := make([]columnCount, 0, len(counts))
	for _, c := range counts {
		if c.count > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// nullListingLimit caps the missing-instead-of-0 columns listed by skip_logic.
const nullListingLimit = 5

func isBinary(v dataset.Value) bool {
	f, ok := v.Float()
	return ok && (f == 0 || f == 1)
}

// checkBinaryFlags verifies checkbox columns hold only 0 and 1.
func checkBinaryFlags(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"cleaned", in.Cleaned}); err != nil {
		return nil, err
	}
	cols := e.rules.CheckboxColumns(in.Cleaned)

	flags := newResult("binary_flags")
	flags.Expected = "0 columns with values outside {0, 1}"
	dtype := newResult("binary_flags.dtype")
	dtype.Expected = "0 non-numeric checkbox columns"

	bad := 0
	for _, col := range cols {
		cc := columnCount{column: col}
		if err := in.Cleaned.Scan(col, func(_ int, v dataset.Value) {
			if v.IsMissing() || isBinary(v) {
				return
			}
			cc.count++
			cc.samples = sampleAppend(cc.samples, v.String(), e.rules.SampleSize)
		}); err != nil {
			return nil, err
		}
		if cc.count > 0 {
			bad++
			flags.add(Finding{Subject: col, Count: cc.count, Samples: cc.samples})
		}

		typ, err := dataset.InferType(in.Cleaned, col)
		if err != nil {
			return nil, err
		}
		if typ == dataset.TypeText {
			dtype.add(Finding{Subject: col, Actual: string(typ), Expected: string(dataset.TypeNumeric)})
		}
	}

	flags.Actual = fmt.Sprintf("%d of %d checkbox columns", bad, len(cols))
	if bad > 0 {
		flags.fail()
	}
	dtype.Actual = fmt.Sprintf("%d of %d checkbox columns", len(dtype.Findings), len(cols))
	if len(dtype.Findings) > 0 {
		dtype.fail()
	}
	if len(cols) == 0 {
		flags.Detail = "no checkbox columns found in cleaned"
		dtype.Detail = flags.Detail
	}
	return []CheckResult{flags, dtype}, nil
}

// checkSkipLogic verifies conditional-only columns are empty (or 0 for
// checkboxes) where the partition flag takes the inapplicable value.
func checkSkipLogic(e *env) ([]CheckResult, error) {
	in, flag := e.in, e.rules.PartitionFlag
	if err := need(RoleTable{"cleaned", in.Cleaned}); err != nil {
		return nil, err
	}
	flagCol, err := in.Cleaned.Column(flag)
	if err != nil {
		return nil, err
	}

	inapplicable := e.rules.InapplicableValue()
	var skipRows, unknownRows []int
	for r, v := range flagCol {
		if v.IsMissing() {
			unknownRows = append(unknownRows, r)
			continue
		}
		if f, ok := v.Float(); ok && f == inapplicable {
			skipRows = append(skipRows, r)
		}
	}

	cond := e.rules.ConditionalColumns(in.Cleaned)
	var violations, nullInsteadOfZero []columnCount
	totalViolations, totalNulls, unknownCells := 0, 0, 0
	for _, col := range cond {
		cells, err := in.Cleaned.Column(col)
		if err != nil {
			return nil, err
		}
		checkbox := e.rules.IsCheckbox(col)
		viol := columnCount{column: col}
		nulls := columnCount{column: col}
		for _, r := range skipRows {
			v := cells[r]
			if !checkbox {
				if !v.IsMissing() {
					viol.count++
					viol.samples = sampleAppend(viol.samples, v.String(), e.rules.SampleSize)
				}
				continue
			}
			f, ok := v.Float()
			switch {
			case !ok:
				nulls.count++
			case f != 0:
				viol.count++
				viol.samples = sampleAppend(viol.samples, v.String(), e.rules.SampleSize)
			}
		}
		if !checkbox {
			for _, r := range unknownRows {
				if !cells[r].IsMissing() {
					unknownCells++
				}
			}
		}
		totalViolations += viol.count
		totalNulls += nulls.count
		violations = append(violations, viol)
		nullInsteadOfZero = append(nullInsteadOfZero, nulls)
	}

	res := newResult("skip_logic")
	res.Expected = "0 violating cells"
	res.Actual = fmt.Sprintf("%d violating cells", totalViolations)
	for _, c := range topColumns(violations, e.rules.TopN) {
		res.add(Finding{Subject: c.column, Count: c.count, Samples: c.samples, Note: "value where " + flag + "==" + ftoa(inapplicable)})
	}
	if totalViolations > 0 {
		res.fail()
	}
	if totalNulls > 0 {
		res.warn()
		for _, c := range topColumns(nullInsteadOfZero, nullListingLimit) {
			res.add(Finding{Subject: c.column, Count: c.count, Note: "missing instead of 0"})
		}
	}
	if unknownCells > 0 {
		res.add(Finding{
			Subject: "rows with missing " + flag,
			Count:   unknownCells,
			Note:    fmt.Sprintf("informational; non-missing conditional cells across %d rows", len(unknownRows)),
		})
	}
	res.Detail = fmt.Sprintf("%d conditional columns, %d rows with %s==%s", len(cond), len(skipRows), flag, ftoa(inapplicable))
	return []CheckResult{res}, nil
}

// checkCardinality recomputes multi-select row sums on the cleaned table.
func checkCardinality(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"cleaned", in.Cleaned}); err != nil {
		return nil, err
	}

	res := newResult("cardinality")
	res.Expected = "0 rows over a rule maximum"
	logged := loggedViolations(e)
	totalRows := 0
	for _, rule := range e.rules.Cardinality {
		var block []string
		for _, col := range e.rules.blockColumns(in.Cleaned, rule) {
			num, err := dataset.IsNumeric(in.Cleaned, col)
			if err != nil {
				return nil, err
			}
			if num {
				block = append(block, col)
			}
		}
		f := Finding{Subject: rule.Name, Expected: "<= " + itoa(rule.Max)}
		if len(block) == 0 {
			f.Note = fmt.Sprintf("no numeric checkbox columns with prefix %q", rule.Prefix)
			res.add(f)
			continue
		}

		sums := make([]float64, in.Cleaned.RowCount())
		for _, col := range block {
			if err := in.Cleaned.Scan(col, func(r int, v dataset.Value) {
				if x, ok := v.Float(); ok {
					sums[r] += x
				}
			}); err != nil {
				return nil, err
			}
		}
		maxSum := 0.0
		for r, s := range sums {
			if s > maxSum {
				maxSum = s
			}
			if s > float64(rule.Max) {
				f.Count++
				f.Samples = sampleAppend(f.Samples, rowLabel(r), e.rules.SampleSize)
			}
		}
		f.Actual = "max " + ftoa(maxSum)
		f.Note = fmt.Sprintf("%d columns", len(block))
		if n, ok := logged[rule.Name]; ok {
			f.Note += fmt.Sprintf(", %d logged", n)
		}
		if f.Count > 0 {
			res.fail()
		}
		totalRows += f.Count
		res.add(f)
	}
	res.Actual = fmt.Sprintf("%d rows over a rule maximum", totalRows)
	if in.CardinalityLog != nil {
		res.Detail = fmt.Sprintf("violations log has %d rows; logged violations are evidence of detection, not correction", in.CardinalityLog.RowCount())
	} else {
		res.Detail = "no cardinality violations log provided"
	}
	return []CheckResult{res}, nil
}

// loggedViolations counts cardinality log rows per rule name.
func loggedViolations(e *env) map[string]int {
	out := make(map[string]int)
	if e.in.CardinalityLog == nil {
		return out
	}
	_ = e.in.CardinalityLog.Scan(e.rules.SideLogs.ViolationRule, func(_ int, v dataset.Value) {
		if !v.IsMissing() {
			out[v.String()]++
		}
	})
	return out
}

// checkTypes verifies numeric raw columns stay numeric in cleaned and
// checkbox columns are integer-like.
func checkTypes(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"raw", in.Raw}, RoleTable{"cleaned", in.Cleaned}); err != nil {
		return nil, err
	}

	types := newResult("types")
	types.Expected = "0 numeric-to-text regressions"
	common := dataset.CommonColumns(in.Raw, in.Cleaned)
	for _, col := range common {
		before, err := dataset.InferType(in.Raw, col)
		if err != nil {
			return nil, err
		}
		after, err := dataset.InferType(in.Cleaned, col)
		if err != nil {
			return nil, err
		}
		if before != dataset.TypeNumeric || after != dataset.TypeText {
			continue
		}
		var samples []string
		_ = in.Cleaned.Scan(col, func(_ int, v dataset.Value) {
			if _, ok := v.Float(); !ok && !v.IsMissing() {
				samples = sampleAppend(samples, v.String(), e.rules.SampleSize)
			}
		})
		types.add(Finding{Subject: col, Expected: string(before), Actual: string(after), Samples: samples})
	}
	types.Actual = fmt.Sprintf("%d regressions in %d common columns", len(types.Findings), len(common))
	if len(types.Findings) > 0 {
		types.fail()
	}

	checkbox := newResult("types.checkbox")
	cols := e.rules.CheckboxColumns(in.Cleaned)
	checkbox.Expected = fmt.Sprintf("%d integer-like checkbox columns", len(cols))
	integerLike := 0
	for _, col := range cols {
		n := 0
		if err := in.Cleaned.Scan(col, func(_ int, v dataset.Value) {
			if !v.IsMissing() && !isBinary(v) {
				n++
			}
		}); err != nil {
			return nil, err
		}
		if n == 0 {
			integerLike++
			continue
		}
		checkbox.add(Finding{Subject: col, Count: n, Note: "non-integer-like values"})
	}
	checkbox.Actual = fmt.Sprintf("%d integer-like, %d not", integerLike, len(cols)-integerLike)
	if integerLike != len(cols) {
		checkbox.fail()
	}
	return []CheckResult{types, checkbox}, nil
}

// checkNegativeValues sweeps numeric non-checkbox columns for negatives.
func checkNegativeValues(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"cleaned", in.Cleaned}); err != nil {
		return nil, err
	}

	res := newResult("negative_values")
	res.Expected = "0 columns with negative values"
	scanned := 0
	for _, col := range in.Cleaned.Columns() {
		if e.rules.IsCheckbox(col) {
			continue
		}
		typ, err := dataset.InferType(in.Cleaned, col)
		if err != nil {
			return nil, err
		}
		if typ != dataset.TypeNumeric {
			continue
		}
		scanned++
		n, minimum := 0, 0.0
		_ = in.Cleaned.Scan(col, func(_ int, v dataset.Value) {
			if f, ok := v.Float(); ok && f < 0 {
				n++
				if f < minimum {
					minimum = f
				}
			}
		})
		if n > 0 {
			res.add(Finding{Subject: col, Count: n, Actual: "min " + ftoa(minimum)})
		}
	}
	res.Actual = fmt.Sprintf("%d of %d numeric columns", len(res.Findings), scanned)
	if len(res.Findings) > 0 {
		res.fail()
	}
	return []CheckResult{res}, nil
}
