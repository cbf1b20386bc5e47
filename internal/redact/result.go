package redact

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Result contains the scrubbing result.
type Result struct {
	// Original is the input content.
	Original string `json:"-"`

	// Scrubbed is the content with credentials replaced.
	Scrubbed string `json:"scrubbed"`

	Findings      []Finding      `json:"findings,omitempty"`
	Duration      time.Duration  `json:"duration"`
	TotalFindings int            `json:"total_findings"`
	ByRule        map[string]int `json:"by_rule,omitempty"`
}

// Finding locates one detected credential. The matched value is never kept.
type Finding struct {
	RuleID      string `json:"rule_id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
	Line        int    `json:"line,omitempty"`
}

// HasFindings reports whether anything was redacted.
func (r *Result) HasFindings() bool {
	return r.TotalFindings > 0
}

// RuleIDs returns the matched rule IDs in sorted order.
func (r *Result) RuleIDs() []string {
	ids := make([]string, 0, len(r.ByRule))
	for id := range r.ByRule {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Summary returns a one-line description suitable for logs.
func (r *Result) Summary() string {
	if !r.HasFindings() {
		return "no secrets detected"
	}
	parts := make([]string, 0, len(r.ByRule))
	for _, id := range r.RuleIDs() {
		parts = append(parts, fmt.Sprintf("%s=%d", id, r.ByRule[id]))
	}
	return fmt.Sprintf("%d secret(s) redacted (%s)", r.TotalFindings, strings.Join(parts, ", "))
}
