package audit

import (
	"fmt"

	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

// checkRowCount verifies raw - dropped == cleaned and the checkpoint's row counters.
func checkRowCount(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"raw", in.Raw}, RoleTable{"cleaned", in.Cleaned}, RoleTable{"dropped_duplicates", in.DroppedLog}); err != nil {
		return nil, err
	}

	res := newResult("row_count")
	expected := in.Raw.RowCount() - in.DroppedLog.RowCount()
	actual := in.Cleaned.RowCount()
	res.Expected = itoa(expected)
	res.Actual = itoa(actual)
	res.add(countFinding("rows(raw) - rows(dropped_duplicates) vs rows(cleaned)", expected, actual))

	var unreported []string
	if v, ok := in.Checkpoint.Int("raw_rows"); ok {
		res.add(countFinding("checkpoint raw_rows vs rows(raw)", v, in.Raw.RowCount()))
	} else {
		unreported = append(unreported, "raw_rows")
	}
	if v, ok := in.Checkpoint.Int("dropped_exact_duplicates"); ok {
		res.add(countFinding("checkpoint dropped_exact_duplicates vs rows(dropped_duplicates)", v, in.DroppedLog.RowCount()))
	} else {
		unreported = append(unreported, "dropped_exact_duplicates")
	}
	if len(unreported) > 0 {
		res.Detail = fmt.Sprintf("checkpoint does not report %v", unreported)
	}

	for _, f := range res.Findings {
		if f.Delta != 0 {
			res.fail()
		}
	}
	return []CheckResult{res}, nil
}

// checkDuplicates verifies every dropped row is a true duplicate in raw.
func checkDuplicates(e *env) ([]CheckResult, error) {
	in := e.in
	if err := need(RoleTable{"raw", in.Raw}, RoleTable{"dropped_duplicates", in.DroppedLog}); err != nil {
		return nil, err
	}

	common := dataset.CommonColumns(in.Raw, in.DroppedLog)
	if len(common) == 0 {
		return nil, dataset.SchemaMismatchf("dropped_duplicates shares no columns with raw")
	}

	res := newResult("duplicates")
	if n := in.DroppedLog.ColumnCount() - len(common); n > 0 {
		res.Detail = fmt.Sprintf("%d dropped_duplicates columns are not in raw and were ignored", n)
	}

	mask, err := dataset.DuplicateMask(in.Raw, common, dataset.KeepFirst)
	if err != nil {
		return nil, err
	}
	secondOccurrences := dataset.CountTrue(mask)
	res.Expected = itoa(in.DroppedLog.RowCount())
	res.Actual = itoa(secondOccurrences)
	res.add(countFinding("rows(dropped_duplicates) vs repeated rows in raw (keep=first)", in.DroppedLog.RowCount(), secondOccurrences))
	if secondOccurrences != in.DroppedLog.RowCount() {
		res.fail()
	}

	rawFPs, err := dataset.RowFingerprints(in.Raw, common)
	if err != nil {
		return nil, err
	}
	rawCounts := dataset.FingerprintCounts(rawFPs)
	droppedFPs, err := dataset.RowFingerprints(in.DroppedLog, common)
	if err != nil {
		return nil, err
	}

	unverified := 0
	for r, fp := range droppedFPs {
		if rawCounts[fp] >= 2 {
			continue
		}
		unverified++
		res.add(Finding{
			Subject:  "dropped " + rowLabel(r),
			Expected: ">= 2 occurrences in raw",
			Actual:   itoa(rawCounts[fp]),
			Note:     "fingerprint " + fp.Short(),
		})
	}
	if unverified > 0 {
		res.fail()
	}

	within, err := dataset.DuplicateMask(in.DroppedLog, common, dataset.KeepFirst)
	if err != nil {
		return nil, err
	}
	res.add(Finding{
		Subject: "duplicates within dropped_duplicates",
		Count:   dataset.CountTrue(within),
		Note:    "informational; expected when a row occurred 3+ times in raw",
	})
	res.add(Finding{
		Subject:  "unverified drops",
		Count:    unverified,
		Expected: "0",
		Actual:   itoa(unverified),
	})
	return []CheckResult{res}, nil
}

// checkTargetFlag compares the partition flag distribution with the
// partition tables and checkpoint counters.
func checkTargetFlag(e *env) ([]CheckResult, error) {
	in, flag := e.in, e.rules.PartitionFlag
	if err := need(RoleTable{"cleaned", in.Cleaned}, RoleTable{"borrowers", in.Borrowers}, RoleTable{"non_borrowers", in.NonBorrowers}); err != nil {
		return nil, err
	}
	fc, err := countFlag(in.Cleaned, flag, e.rules.SampleSize)
	if err != nil {
		return nil, err
	}

	counts := newResult("target_flag.counts")
	counts.Expected = fmt.Sprintf("%s=1: %d, %s=0: %d", flag, in.Borrowers.RowCount(), flag, in.NonBorrowers.RowCount())
	counts.Actual = fmt.Sprintf("%s=1: %d, %s=0: %d, missing: %d", flag, fc.ones, flag, fc.zeros, fc.missing)
	counts.add(countFinding("rows(borrowers) vs "+flag+"==1", in.Borrowers.RowCount(), fc.ones))
	counts.add(countFinding("rows(non_borrowers) vs "+flag+"==0", in.NonBorrowers.RowCount(), fc.zeros))
	for _, m := range []struct {
		metric string
		actual int
	}{
		{"borrowers_n", fc.ones},
		{"nonborrowers_n", fc.zeros},
		{"has_loan_missing_n", fc.missing},
	} {
		if v, ok := in.Checkpoint.Int(m.metric); ok {
			counts.add(countFinding("checkpoint "+m.metric, v, m.actual))
		}
	}
	for _, f := range counts.Findings {
		if f.Delta != 0 {
			counts.fail()
		}
	}
	if fc.other > 0 {
		counts.add(Finding{Subject: flag + " outside {0, 1, missing}", Count: fc.other, Samples: fc.otherSamples})
	}

	subsets := newResult("target_flag.subsets")
	subsets.Expected = "0 rows with the wrong flag value"
	wrong := 0
	for _, part := range []struct {
		role  string
		table *dataset.Table
		want  float64
	}{
		{"borrowers", in.Borrowers, 1},
		{"non_borrowers", in.NonBorrowers, 0},
	} {
		n, samples, err := countFlagNot(part.table, flag, part.want, e.rules.SampleSize)
		if err != nil {
			return []CheckResult{counts, skippedResult(subsets.Key, err)}, nil
		}
		wrong += n
		if n > 0 {
			subsets.add(Finding{
				Subject:  part.role,
				Count:    n,
				Expected: flag + "==" + ftoa(part.want),
				Samples:  samples,
			})
		}
	}
	subsets.Actual = fmt.Sprintf("%d rows with the wrong flag value", wrong)
	if wrong > 0 {
		subsets.fail()
	}

	return []CheckResult{counts, subsets}, nil
}

// countFlagNot counts rows whose flag is not want; missing counts as wrong.
func countFlagNot(t *dataset.Table, flag string, want float64, limit int) (int, []string, error) {
	n := 0
	var samples []string
	err := t.Scan(flag, func(_ int, v dataset.Value) {
		if f, ok := v.Float(); ok && f == want {
			return
		}
		n++
		samples = sampleAppend(samples, v.String(), limit)
	})
	return n, samples, err
}

// checkPartition verifies the partition tables add up to the cleaned table.
func checkPartition(e *env) ([]CheckResult, error) {
	in, flag := e.in, e.rules.PartitionFlag
	if err := need(RoleTable{"cleaned", in.Cleaned}, RoleTable{"borrowers", in.Borrowers}, RoleTable{"non_borrowers", in.NonBorrowers}); err != nil {
		return nil, err
	}
	fc, err := countFlag(in.Cleaned, flag, e.rules.SampleSize)
	if err != nil {
		return nil, err
	}

	res := newResult("partition")
	rows := in.Cleaned.RowCount()
	split := in.Borrowers.RowCount() + in.NonBorrowers.RowCount() + fc.missing
	res.Expected = itoa(rows)
	res.Actual = itoa(split)
	res.add(countFinding("rows(cleaned) vs rows(borrowers) + rows(non_borrowers) + missing flag", rows, split))
	res.add(countFinding("rows(cleaned) vs "+flag+" ones + zeros + missing", rows, fc.ones+fc.zeros+fc.missing))
	for _, f := range res.Findings {
		if f.Delta != 0 {
			res.fail()
		}
	}

	for _, part := range []RoleTable{{"borrowers", in.Borrowers}, {"non_borrowers", in.NonBorrowers}} {
		extra, missing := dataset.SymmetricDifference(part.Table, in.Cleaned)
		if len(extra) > 0 {
			res.fail()
			res.add(Finding{Subject: "columns in " + part.Role + " not in cleaned", Count: len(extra), Samples: extra})
		}
		if len(missing) > 0 {
			res.fail()
			res.add(Finding{Subject: "columns in cleaned not in " + part.Role, Count: len(missing), Samples: missing})
		}
	}
	return []CheckResult{res}, nil
}

// checkCheckpoint compares every checkpoint metric with its recomputed value.
func checkCheckpoint(e *env) ([]CheckResult, error) {
	in := e.in
	if in.Checkpoint == nil {
		return nil, missingInput("checkpoint")
	}

	actual := recomputeMetrics(e)
	res := newResult("checkpoint")
	matched, mismatched, unknown := 0, 0, 0
	for _, metric := range in.Checkpoint.Metrics() {
		reported, _ := in.Checkpoint.Int(metric)
		v, ok := actual[metric]
		if !ok {
			unknown++
			res.add(Finding{Subject: metric, Expected: itoa(reported), Actual: "N/A", Note: "not recomputable"})
			continue
		}
		f := countFinding(metric, reported, v)
		if f.Delta != 0 {
			mismatched++
			f.Note = "mismatch"
		} else {
			matched++
		}
		res.add(f)
	}
	res.Expected = fmt.Sprintf("%d metrics match", matched+mismatched)
	res.Actual = fmt.Sprintf("%d match, %d mismatch, %d N/A", matched, mismatched, unknown)
	if mismatched > 0 {
		res.fail()
	}
	if in.Checkpoint.Len() == 0 {
		res.Detail = "checkpoint is empty"
	}
	return []CheckResult{res}, nil
}

// recomputeMetrics derives the pipeline counters from the loaded tables.
// Metrics whose source table is absent are left out.
func recomputeMetrics(e *env) map[string]int {
	in := e.in
	m := make(map[string]int)
	if in.Raw != nil {
		m["raw_rows"] = in.Raw.RowCount()
		m["raw_cols"] = in.Raw.ColumnCount()
	}
	if in.Cleaned != nil {
		m["rows_after_drop"] = in.Cleaned.RowCount()
		m["cols_after_drop_empty"] = in.Cleaned.ColumnCount()
		m["dummy_cols_count"] = len(e.rules.MultiSelectColumns(in.Cleaned))
		if n, err := dataset.MissingCount(in.Cleaned, e.rules.PartitionFlag); err == nil {
			m["has_loan_missing_n"] = n
		}
	}
	for metric, t := range map[string]*dataset.Table{
		"dropped_exact_duplicates": in.DroppedLog,
		"borrowers_n":              in.Borrowers,
		"nonborrowers_n":           in.NonBorrowers,
		"cardinality_violations_n": in.CardinalityLog,
		"constraint_fixes_n":       in.ConstraintFixLog,
	} {
		if t != nil {
			m[metric] = t.RowCount()
		}
	}
	return m
}
