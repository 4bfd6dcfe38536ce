package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/cleanaudit/internal/audit"
)

// Formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	maxCellWidth = 48
	ellipsis     = "…"
)

// Render writes the report in the given format. Colour applies to text only.
func (r *AuditReport) Render(w io.Writer, format string, colored bool) error {
	switch format {
	case FormatText, "":
		return r.RenderText(w, colored)
	case FormatJSON:
		return r.RenderJSON(w)
	case FormatYAML:
		return r.RenderYAML(w)
	default:
		return fmt.Errorf("unknown report format %q (want text, json or yaml)", format)
	}
}

// RenderJSON writes the report as indented JSON.
func (r *AuditReport) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderYAML writes the report as YAML.
func (r *AuditReport) RenderYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// paint colours status words; it is the identity when colour is off.
type paint func(audit.Status, string) string

func statusPainter(colored bool) paint {
	if !colored {
		return func(_ audit.Status, s string) string { return s }
	}
	return func(st audit.Status, s string) string {
		switch st {
		case audit.StatusPass:
			return color.Green.Sprint(s)
		case audit.StatusFail:
			return color.Red.Sprint(s)
		case audit.StatusWarn:
			return color.Yellow.Sprint(s)
		default:
			return color.FgDarkGray.Sprint(s)
		}
	}
}

// fit truncates s to width display cells and pads it on the right.
// Cyrillic and CJK column names are measured by display width.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, ellipsis)
	}
	return runewidth.FillRight(s, width)
}

// RenderText writes the human-readable report: a status table in check
// order followed by the findings of every result that did not pass.
func (r *AuditReport) RenderText(w io.Writer, colored bool) error {
	p := statusPainter(colored)
	var b strings.Builder

	b.WriteString("CLEANING AUDIT REPORT\n")
	b.WriteString(strings.Repeat("=", 21) + "\n\n")

	keyW, expW := len("CHECK"), len("EXPECTED")
	for _, res := range r.Results {
		keyW = max(keyW, min(runewidth.StringWidth(res.Key), maxCellWidth))
		expW = max(expW, min(runewidth.StringWidth(res.Expected), maxCellWidth))
	}
	statusW := len(audit.StatusSkipped)

	fmt.Fprintf(&b, "%3s  %s  %s  %s  %s\n", "#", fit("CHECK", keyW), fit("STATUS", statusW), fit("EXPECTED", expW), "ACTUAL")
	for _, res := range r.Results {
		status := p(res.Status, fit(string(res.Status), statusW))
		req := " "
		if res.Required {
			req = "*"
		}
		line := fmt.Sprintf("%3d%s %s  %s  %s  %s", res.Number, req, fit(res.Key, keyW), status, fit(res.Expected, expW), truncate(res.Actual))
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	b.WriteString("\n* required to pass\n")

	for _, res := range r.Results {
		if res.Status == audit.StatusPass {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] %d. %s (%s)\n", p(res.Status, string(res.Status)), res.Number, res.Title, res.Key)
		if res.Reason != "" {
			fmt.Fprintf(&b, "    reason: %s\n", res.Reason)
		}
		if res.Detail != "" {
			fmt.Fprintf(&b, "    %s\n", res.Detail)
		}
		for _, f := range res.Findings {
			b.WriteString("    - " + formatFinding(f) + "\n")
		}
	}

	t := r.Totals
	fmt.Fprintf(&b, "\nSummary: %d checks, %s passed, %s failed, %s warnings, %s skipped\n",
		t.Total,
		p(audit.StatusPass, fmt.Sprint(t.Pass)),
		p(audit.StatusFail, fmt.Sprint(t.Fail)),
		p(audit.StatusWarn, fmt.Sprint(t.Warn)),
		p(audit.StatusSkipped, fmt.Sprint(t.Skipped)))
	if r.Critical {
		fmt.Fprintf(&b, "Critical issues: %s (%s)\n", p(audit.StatusFail, "YES"), strings.Join(r.CriticalFailures, ", "))
	} else {
		fmt.Fprintf(&b, "Critical issues: %s\n", p(audit.StatusPass, "NO"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string) string {
	if runewidth.StringWidth(s) > maxCellWidth {
		return runewidth.Truncate(s, maxCellWidth, ellipsis)
	}
	return s
}

func formatFinding(f audit.Finding) string {
	parts := []string{f.Subject}
	if f.Count != 0 {
		parts = append(parts, fmt.Sprintf("count=%d", f.Count))
	}
	if f.Expected != "" {
		parts = append(parts, "expected="+f.Expected)
	}
	if f.Actual != "" {
		parts = append(parts, "actual="+f.Actual)
	}
	if f.Delta != 0 {
		parts = append(parts, fmt.Sprintf("delta=%+d", f.Delta))
	}
	if len(f.Samples) > 0 {
		parts = append(parts, "samples=["+strings.Join(f.Samples, "; ")+"]")
	}
	s := strings.Join(parts, " ")
	if f.Note != "" {
		s += " (" + f.Note + ")"
	}
	return s
}
