// Package validation post-checks extracted trade fields with a set of named
// business rules. Rules read a flat string map and return at most one finding.
package validation

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Severity ranks a finding.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// MarshalText encodes the severity as its tag.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Finding is one rule violation.
type Finding struct {
	Severity   Severity `json:"severity"`
	Field      string   `json:"field"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

func (f Finding) IsError() bool   { return f.Severity == SeverityError }
func (f Finding) IsWarning() bool { return f.Severity == SeverityWarning }

// Rule inspects fields and returns a finding, or nil when satisfied.
type Rule func(fields map[string]string) *Finding

// Config holds the bounds the built-in rules check against.
type Config struct {
	Strict             bool
	MinNotional        float64
	MaxNotional        float64
	CurrencyCodeLength int
}

// DefaultConfig returns lenient mode with notional bounds [1e3, 1e12].
func DefaultConfig() Config {
	return Config{
		MinNotional:        1000,
		MaxNotional:        1e12,
		CurrencyCodeLength: 3,
	}
}

// Validator runs its rules in name order. Rules may be added or removed
// while other goroutines validate.
type Validator struct {
	cfg        Config
	currencyRe *regexp.Regexp

	mu    sync.RWMutex
	rules map[string]Rule
}

// New returns a Validator with the built-in rules registered.
func New(cfg Config) (*Validator, error) {
	if cfg.CurrencyCodeLength <= 0 {
		return nil, fmt.Errorf("currency code length must be positive, got %d", cfg.CurrencyCodeLength)
	}
	if cfg.MaxNotional <= cfg.MinNotional {
		return nil, fmt.Errorf("max notional %g must exceed min notional %g", cfg.MaxNotional, cfg.MinNotional)
	}

	v := &Validator{
		cfg:        cfg,
		currencyRe: regexp.MustCompile(fmt.Sprintf(`^[A-Z]{%d}$`, cfg.CurrencyCodeLength)),
	}
	v.rules = map[string]Rule{
		"currency":  v.checkCurrency,
		"day_count": checkDayCount,
		"direction": v.checkDirection,
		"notional":  v.checkNotional,
		"rate":      checkRate,
		"tenor":     checkTenor,
	}
	return v, nil
}

// AddRule registers rule under name, replacing any rule with that name.
func (v *Validator) AddRule(name string, rule Rule) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rules[name] = rule
}

// RemoveRule unregisters name. Unknown names are ignored.
func (v *Validator) RemoveRule(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.rules, name)
}

// RuleCount returns the number of registered rules.
func (v *Validator) RuleCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.rules)
}

// Validate runs every rule and returns findings ordered by rule name.
// A panicking rule is reported as an error rather than crashing the caller.
func (v *Validator) Validate(ctx context.Context, fields map[string]string) (findings []Finding, err error) {
	v.mu.RLock()
	names := make([]string, 0, len(v.rules))
	for name := range v.rules {
		names = append(names, name)
	}
	rules := make([]Rule, 0, len(names))
	sort.Strings(names)
	for _, name := range names {
		rules = append(rules, v.rules[name])
	}
	v.mu.RUnlock()

	for i, rule := range rules {
		if err := ctx.Err(); err != nil {
			return findings, err
		}
		f, rerr := runRule(names[i], rule, fields)
		if rerr != nil {
			return findings, rerr
		}
		if f != nil {
			findings = append(findings, *f)
		}
	}
	return findings, nil
}

func runRule(name string, rule Rule, fields map[string]string) (f *Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rule %q panicked: %v", name, r)
		}
	}()
	return rule(fields), nil
}

// IsValid reports whether fields produce no ERROR findings.
func (v *Validator) IsValid(ctx context.Context, fields map[string]string) bool {
	findings, err := v.Validate(ctx, fields)
	return err == nil && !NewReport(findings).HasErrors()
}

// Errors returns only ERROR findings.
func (v *Validator) Errors(ctx context.Context, fields map[string]string) ([]Finding, error) {
	return v.filter(ctx, fields, Finding.IsError)
}

// Warnings returns only WARNING findings.
func (v *Validator) Warnings(ctx context.Context, fields map[string]string) ([]Finding, error) {
	return v.filter(ctx, fields, Finding.IsWarning)
}

func (v *Validator) filter(ctx context.Context, fields map[string]string, keep func(Finding) bool) ([]Finding, error) {
	all, err := v.Validate(ctx, fields)
	if err != nil {
		return nil, err
	}
	var out []Finding
	for _, f := range all {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// value returns fields[key], treating empty as absent.
func value(fields map[string]string, keys ...string) (string, bool) {
	for _, k := range keys {
		if v := fields[k]; v != "" {
			return v, true
		}
	}
	return "", false
}

func (v *Validator) checkDirection(fields map[string]string) *Finding {
	dir, ok := value(fields, "direction")
	if !ok {
		if v.cfg.Strict {
			return &Finding{SeverityError, "direction", "Direction is required", "Specify BUY, SELL, or TWO_WAY"}
		}
		return nil
	}
	switch strings.ToUpper(dir) {
	case "BUY", "SELL", "TWO_WAY", "TWO-WAY", "PAY", "RECEIVE":
		return nil
	}
	return &Finding{SeverityError, "direction", "Invalid direction: " + dir, "Valid values: BUY, SELL, TWO_WAY, PAY, RECEIVE"}
}

func (v *Validator) checkCurrency(fields map[string]string) *Finding {
	ccy, ok := value(fields, "currency", "notional_currency")
	if !ok {
		if v.cfg.Strict {
			return &Finding{SeverityWarning, "currency", "Currency not specified", "Default currency may be assumed"}
		}
		return nil
	}
	if !v.currencyRe.MatchString(ccy) {
		return &Finding{SeverityError, "currency", "Invalid currency code: " + ccy, "Use 3-letter ISO code (e.g., USD, EUR, GBP)"}
	}
	return nil
}

func (v *Validator) checkNotional(fields map[string]string) *Finding {
	raw, ok := value(fields, "notional", "quantity")
	if !ok {
		if v.cfg.Strict {
			return &Finding{Severity: SeverityError, Field: "notional", Message: "Notional amount is required"}
		}
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return &Finding{SeverityError, "notional", "Invalid notional value: " + raw, "Must be a valid number"}
	}
	switch {
	case n <= 0:
		return &Finding{Severity: SeverityError, Field: "notional", Message: "Notional must be positive"}
	case n < v.cfg.MinNotional:
		return &Finding{SeverityWarning, "notional", "Notional below minimum: " + raw, "Minimum is " + formatFloat(v.cfg.MinNotional)}
	case n > v.cfg.MaxNotional:
		return &Finding{SeverityWarning, "notional", "Notional exceeds maximum: " + raw, "Maximum is " + formatFloat(v.cfg.MaxNotional)}
	}
	return nil
}

var tenorRe = regexp.MustCompile(`(?i)^\d+[DWMY]$`)

func checkTenor(fields map[string]string) *Finding {
	tenor, ok := value(fields, "tenor")
	if !ok || tenorRe.MatchString(tenor) {
		return nil
	}
	return &Finding{SeverityError, "tenor", "Invalid tenor format: " + tenor, "Use format like '3M', '1Y', '5Y'"}
}

func checkRate(fields map[string]string) *Finding {
	raw, ok := value(fields, "rate", "strike")
	if !ok {
		return nil
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return &Finding{SeverityError, "rate", "Invalid rate value: " + raw, "Must be a valid number"}
	}
	if r < -0.05 || r > 1.0 {
		return &Finding{SeverityWarning, "rate", "Rate outside typical range: " + raw, "Typical range: -5% to 100%"}
	}
	return nil
}

var dayCountConventions = []string{"ACT/360", "ACT/365", "30/360", "ACT/ACT"}

func checkDayCount(fields map[string]string) *Finding {
	dc, ok := value(fields, "day_count")
	if !ok {
		return nil
	}
	upper := strings.ToUpper(dc)
	for _, conv := range dayCountConventions {
		if strings.Contains(upper, conv) {
			return nil
		}
	}
	return &Finding{SeverityWarning, "day_count", "Unusual day count convention: " + dc, "Common: ACT/360, ACT/365, 30/360, ACT/ACT"}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
