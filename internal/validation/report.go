package validation

import (
	"fmt"
	"strings"
)

// Report summarizes a set of findings.
type Report struct {
	Findings []Finding `json:"findings"`
}

// NewReport wraps findings.
func NewReport(findings []Finding) Report {
	return Report{Findings: findings}
}

func (r Report) count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

func (r Report) HasErrors() bool   { return r.ErrorCount() > 0 }
func (r Report) HasWarnings() bool { return r.WarningCount() > 0 }
func (r Report) ErrorCount() int   { return r.count(SeverityError) }
func (r Report) WarningCount() int { return r.count(SeverityWarning) }

// String renders the report as a fixed-width text block.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("Validation Report\n")
	b.WriteString("=================\n")
	fmt.Fprintf(&b, "Total issues: %d\n", len(r.Findings))
	fmt.Fprintf(&b, "Errors: %d\n", r.ErrorCount())
	fmt.Fprintf(&b, "Warnings: %d\n\n", r.WarningCount())

	for _, f := range r.Findings {
		fmt.Fprintf(&b, "[%-7s] %s: %s", f.Severity, f.Field, f.Message)
		if f.Suggestion != "" {
			fmt.Fprintf(&b, " (%s)", f.Suggestion)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
