package report

import (
	"fmt"
	"io"

	"github.com/dbsmedya/cleanaudit/internal/audit"
)

// ChangeKind classifies a status change between two runs.
type ChangeKind string

const (
	ChangeRegression ChangeKind = "regression" // passed before, fails now
	ChangeFix        ChangeKind = "fix"        // failed before, passes now
	ChangeStatus     ChangeKind = "changed"
	ChangeNew        ChangeKind = "new"
	ChangeRemoved    ChangeKind = "removed"
)

// Change is one result key whose status differs between two reports.
type Change struct {
	Key    string       `json:"key" yaml:"key"`
	Kind   ChangeKind   `json:"kind" yaml:"kind"`
	Before audit.Status `json:"before,omitempty" yaml:"before,omitempty"`
	After  audit.Status `json:"after,omitempty" yaml:"after,omitempty"`
}

// Compare lists status changes from before to after. Keys of after come
// first in after's order, then keys only present in before.
func Compare(before, after *AuditReport) []Change {
	prev := before.Summary()
	next := after.Summary()

	var changes []Change
	for el := next.Front(); el != nil; el = el.Next() {
		key, now := el.Key, el.Value
		was, ok := prev.Get(key)
		switch {
		case !ok:
			changes = append(changes, Change{Key: key, Kind: ChangeNew, After: now})
		case was == now:
		case now == audit.StatusFail:
			changes = append(changes, Change{Key: key, Kind: ChangeRegression, Before: was, After: now})
		case was == audit.StatusFail:
			changes = append(changes, Change{Key: key, Kind: ChangeFix, Before: was, After: now})
		default:
			changes = append(changes, Change{Key: key, Kind: ChangeStatus, Before: was, After: now})
		}
	}
	for el := prev.Front(); el != nil; el = el.Next() {
		if _, ok := next.Get(el.Key); !ok {
			changes = append(changes, Change{Key: el.Key, Kind: ChangeRemoved, Before: el.Value})
		}
	}
	return changes
}

// HasRegressions reports whether any change is a regression.
func HasRegressions(changes []Change) bool {
	for _, c := range changes {
		if c.Kind == ChangeRegression {
			return true
		}
	}
	return false
}

// RenderChanges writes one line per change.
func RenderChanges(w io.Writer, changes []Change, colored bool) error {
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "No status changes.")
		return err
	}
	p := statusPainter(colored)
	for _, c := range changes {
		kind := string(c.Kind)
		switch c.Kind {
		case ChangeRegression:
			kind = p(audit.StatusFail, kind)
		case ChangeFix:
			kind = p(audit.StatusPass, kind)
		}
		if _, err := fmt.Fprintf(w, "%-10s %s: %s -> %s\n", kind, c.Key, orDash(c.Before), orDash(c.After)); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s audit.Status) string {
	if s == "" {
		return "-"
	}
	return string(s)
}
