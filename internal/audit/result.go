// Package audit runs the reconciliation checks of a survey cleaning run
// against its raw export, cleaned master table and side logs.
package audit

import (
	"errors"
	"fmt"

	"github.com/dbsmedya/cleanaudit/internal/dataset"
)

// Status is the outcome of one check.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarn    Status = "WARN"
	StatusSkipped Status = "SKIPPED"
)

// ErrInputMissing marks a check whose input table was not supplied.
var ErrInputMissing = errors.New("input not provided")

// CheckResult is the output unit of the audit. Results carry no identity
// beyond their key and position in the run.
type CheckResult struct {
	Key      string    `json:"key" yaml:"key"`
	Number   int       `json:"number" yaml:"number"`
	Title    string    `json:"title" yaml:"title"`
	Status   Status    `json:"status" yaml:"status"`
	Required bool      `json:"required" yaml:"required"`
	Expected string    `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   string    `json:"actual,omitempty" yaml:"actual,omitempty"`
	Findings []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
	Detail   string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	Reason   string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Finding is one offending (or informational) column, row, rule or metric.
type Finding struct {
	Subject  string   `json:"subject" yaml:"subject"`
	Count    int      `json:"count,omitempty" yaml:"count,omitempty"`
	Expected string   `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   string   `json:"actual,omitempty" yaml:"actual,omitempty"`
	Delta    int      `json:"delta,omitempty" yaml:"delta,omitempty"`
	Samples  []string `json:"samples,omitempty" yaml:"samples,omitempty"`
	Note     string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// Passed reports whether the result is not a failure.
func (r CheckResult) Passed() bool { return r.Status != StatusFail }

func (r *CheckResult) add(f Finding) { r.Findings = append(r.Findings, f) }

// fail marks the result failed. A failure is never downgraded.
func (r *CheckResult) fail() { r.Status = StatusFail }

// warn marks the result as a warning unless it already failed.
func (r *CheckResult) warn() {
	if r.Status != StatusFail {
		r.Status = StatusWarn
	}
}

func newResult(key string) CheckResult {
	return CheckResult{Key: key, Status: StatusPass}
}

func skippedResult(key string, err error) CheckResult {
	return CheckResult{Key: key, Status: StatusSkipped, Reason: err.Error()}
}

// degrades reports whether err skips a check instead of aborting the run.
func degrades(err error) bool {
	return errors.Is(err, dataset.ErrColumnNotFound) ||
		errors.Is(err, dataset.ErrSchemaMismatch) ||
		errors.Is(err, ErrInputMissing)
}

func missingInput(role string) error {
	return fmt.Errorf("%w: %s", ErrInputMissing, role)
}
