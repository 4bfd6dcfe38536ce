package audit

import (
	"fmt"
	"math"

	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

// numericStats summarises the numeric cells of a column.
type numericStats struct {
	n             int
	min, max, sum float64
}

func (s numericStats) mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.sum / float64(s.n)
}

func (s *numericStats) observe(x float64) {
	if s.n == 0 || x < s.min {
		s.min = x
	}
	if s.n == 0 || x > s.max {
		s.max = x
	}
	s.n++
	s.sum += x
}

// checkAgeMismatch summarises the age mismatch log. It is informational.
func checkAgeMismatch(e *env) ([]CheckResult, error) {
	in, cols := e.in, e.rules.SideLogs
	if err := need(RoleTable{"age_mismatch", in.AgeMismatchLog}); err != nil {
		return nil, err
	}

	res := newResult("age_mismatch")
	res.Actual = fmt.Sprintf("%d rows logged", in.AgeMismatchLog.RowCount())
	if in.AgeMismatchLog.RowCount() == 0 {
		return []CheckResult{res}, nil
	}

	reported, err := in.AgeMismatchLog.Column(cols.AgeReported)
	if err != nil {
		res.Detail = err.Error()
		return []CheckResult{res}, nil
	}
	derived, err := in.AgeMismatchLog.Column(cols.AgeDerived)
	if err != nil {
		res.Detail = err.Error()
		return []CheckResult{res}, nil
	}

	var diff numericStats
	var samples []string
	for r := range reported {
		a, okA := reported[r].Float()
		b, okB := derived[r].Float()
		if !okA || !okB {
			continue
		}
		diff.observe(math.Abs(a - b))
		samples = sampleAppend(samples, fmt.Sprintf("%s=%s %s=%s", cols.AgeReported, ftoa(a), cols.AgeDerived, ftoa(b)), e.rules.SampleSize)
	}
	res.add(Finding{
		Subject: "absolute difference",
		Count:   diff.n,
		Actual:  fmt.Sprintf("mean %.1f, max %s", diff.mean(), ftoa(diff.max)),
		Samples: samples,
	})
	return []CheckResult{res}, nil
}

// checkInterviewerQC summarises per-interviewer QC and warns about
// interviewers above the missing-rate threshold.
func checkInterviewerQC(e *env) ([]CheckResult, error) {
	in, cols := e.in, e.rules.SideLogs
	if err := need(RoleTable{"interviewer_qc", in.InterviewerQC}); err != nil {
		return nil, err
	}
	qc := in.InterviewerQC

	res := newResult("interviewer_qc")
	res.Actual = fmt.Sprintf("%d interviewers", qc.RowCount())

	var interviews numericStats
	if err := qc.Scan(cols.InterviewerCount, func(_ int, v dataset.Value) {
		if x, ok := v.Float(); ok {
			interviews.observe(x)
		}
	}); err == nil && interviews.n > 0 {
		res.add(Finding{
			Subject: "interviews per interviewer",
			Actual:  fmt.Sprintf("min %s, max %s, mean %.1f", ftoa(interviews.min), ftoa(interviews.max), interviews.mean()),
		})
	}

	rates, err := qc.Column(cols.InterviewerMissingPct)
	if err != nil {
		res.Detail = err.Error()
		return []CheckResult{res}, nil
	}
	names, _ := qc.Column(cols.Interviewer)

	var missing numericStats
	var high []string
	for r, v := range rates {
		x, ok := v.Float()
		if !ok {
			continue
		}
		missing.observe(x)
		if x <= e.rules.InterviewerMissingPctMax {
			continue
		}
		name := rowLabel(r)
		if names != nil && !names[r].IsMissing() {
			name = names[r].String()
		}
		high = append(high, fmt.Sprintf("%s (%s%%)", name, ftoa(x)))
	}
	res.add(Finding{Subject: "mean missing rate", Actual: fmt.Sprintf("%.1f%%", missing.mean())})
	res.Expected = fmt.Sprintf("0 interviewers above %s%% missing", ftoa(e.rules.InterviewerMissingPctMax))
	if len(high) > 0 {
		res.warn()
		res.add(Finding{
			Subject: "interviewers above missing-rate threshold",
			Count:   len(high),
			Samples: limit(high, e.rules.TopN),
		})
	}
	return []CheckResult{res}, nil
}
