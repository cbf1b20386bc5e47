// Package redact removes credentials from RFQ text before it is sent to a
// remote extraction backend.
//
// Two passes run over the content: a compact set of regex rules that cover the
// credentials most likely to be pasted into a chat message, and optionally the
// full gitleaks rule set. The original text is never modified; callers get a
// Result holding the scrubbed copy and position-only findings.
package redact

import (
	"fmt"
	"regexp"
)

// DefaultRedactionString replaces each redacted span.
const DefaultRedactionString = "[REDACTED]"

// Config configures a Scrubber.
type Config struct {
	Enabled bool `koanf:"enabled"`

	// Gitleaks adds the gitleaks default rule set as a second pass.
	Gitleaks bool `koanf:"gitleaks"`

	Rules           []Rule `koanf:"rules"`
	RedactionString string `koanf:"redaction_string"`

	// Allowlist patterns are never redacted.
	Allowlist *Allowlist `koanf:"-"`
}

// Rule is one regex detection rule.
type Rule struct {
	ID          string `koanf:"id"`
	Description string `koanf:"description"`
	Pattern     string `koanf:"pattern"`
	Severity    string `koanf:"severity"`
}

type compiledRule struct {
	Rule
	pattern *regexp.Regexp
}

// DefaultConfig enables the built-in rules without the gitleaks pass.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		RedactionString: DefaultRedactionString,
		Rules:           DefaultRules(),
	}
}

func (c *Config) compile() ([]*compiledRule, []*regexp.Regexp, error) {
	rules := make([]*compiledRule, 0, len(c.Rules))
	for i, rule := range c.Rules {
		if rule.ID == "" {
			return nil, nil, fmt.Errorf("rule %d: ID is required", i)
		}
		if rule.Pattern == "" {
			return nil, nil, fmt.Errorf("rule %s: pattern is required", rule.ID)
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("rule %s: %w: %v", rule.ID, ErrInvalidRegex, err)
		}
		rules = append(rules, &compiledRule{Rule: rule, pattern: re})
	}

	var allow []*regexp.Regexp
	if c.Allowlist != nil {
		for _, pattern := range c.Allowlist.Regexes {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, nil, fmt.Errorf("allowlist: %w: %v", ErrInvalidRegex, err)
			}
			allow = append(allow, re)
		}
	}
	return rules, allow, nil
}
