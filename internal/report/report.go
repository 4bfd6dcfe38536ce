// Package report aggregates check results into an AuditReport, renders it
// and compares saved reports across runs.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/cleanaudit/internal/audit"
)

// Totals counts results per status.
type Totals struct {
	Pass    int `json:"pass" yaml:"pass"`
	Fail    int `json:"fail" yaml:"fail"`
	Warn    int `json:"warn" yaml:"warn"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Total   int `json:"total" yaml:"total"`
}

// AuditReport is the ordered result list of one audit run.
type AuditReport struct {
	Results          []audit.CheckResult `json:"results" yaml:"results"`
	Totals           Totals              `json:"totals" yaml:"totals"`
	Critical         bool                `json:"critical" yaml:"critical"`
	CriticalFailures []string            `json:"critical_failures,omitempty" yaml:"critical_failures,omitempty"`
}

// New builds a report. Critical is set when any result whose key is in
// critical failed. Results keep their order.
func New(results []audit.CheckResult, critical []string) *AuditReport {
	crit := make(map[string]bool, len(critical))
	for _, k := range critical {
		crit[k] = true
	}

	r := &AuditReport{Results: results}
	for _, res := range results {
		r.Totals.Total++
		switch res.Status {
		case audit.StatusPass:
			r.Totals.Pass++
		case audit.StatusFail:
			r.Totals.Fail++
			if crit[res.Key] {
				r.Critical = true
				r.CriticalFailures = append(r.CriticalFailures, res.Key)
			}
		case audit.StatusWarn:
			r.Totals.Warn++
		case audit.StatusSkipped:
			r.Totals.Skipped++
		}
	}
	return r
}

// Summary maps each result key to its status, in report order.
func (r *AuditReport) Summary() *orderedmap.OrderedMap[string, audit.Status] {
	m := orderedmap.NewOrderedMap[string, audit.Status]()
	for _, res := range r.Results {
		m.Set(res.Key, res.Status)
	}
	return m
}

// Load reads a report saved as JSON or YAML. The format follows the file
// extension; anything other than .yaml or .yml is read as JSON.
func Load(path string) (*AuditReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r AuditReport
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &r)
	default:
		err = json.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}
