package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// Scrubber detects and redacts credentials in text.
type Scrubber struct {
	enabled         bool
	redactionString string
	rules           []*compiledRule
	allow           []*regexp.Regexp

	gitleaks bool
	// gitleaks detectors are not safe for concurrent use.
	mu       sync.Mutex
	detector *detect.Detector
}

// New compiles cfg into a Scrubber. A nil cfg uses DefaultConfig.
func New(cfg *Config) (*Scrubber, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rules, allow, err := cfg.compile()
	if err != nil {
		return nil, err
	}

	s := &Scrubber{
		enabled:         cfg.Enabled,
		redactionString: cfg.RedactionString,
		rules:           rules,
		allow:           allow,
		gitleaks:        cfg.Gitleaks,
	}
	if s.redactionString == "" {
		s.redactionString = DefaultRedactionString
	}

	if cfg.Enabled && cfg.Gitleaks {
		detector, err := detect.NewDetectorDefaultConfig()
		if err != nil {
			return nil, fmt.Errorf("creating gitleaks detector: %w", err)
		}
		if len(allow) > 0 {
			applyAllowlist(&detector.Config, allow)
		}
		s.detector = detector
	}
	return s, nil
}

// MustNew is New that panics on an invalid config.
func MustNew(cfg *Config) *Scrubber {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// IsEnabled reports whether scrubbing is active.
func (s *Scrubber) IsEnabled() bool {
	return s.enabled
}

// Redact returns content with every detected credential replaced.
func (s *Scrubber) Redact(content string) string {
	return s.Scrub(content).Scrubbed
}

// Check reports findings without needing the scrubbed copy.
func (s *Scrubber) Check(content string) *Result {
	return s.Scrub(content)
}

// Scrub detects credentials in content and returns a redacted copy.
func (s *Scrubber) Scrub(content string) *Result {
	start := time.Now()
	result := &Result{
		Original: content,
		Scrubbed: content,
		ByRule:   make(map[string]int),
	}
	if !s.enabled || content == "" {
		result.Duration = time.Since(start)
		return result
	}

	var findings []Finding
	for _, rule := range s.rules {
		for _, loc := range rule.pattern.FindAllStringIndex(content, -1) {
			if s.allowed(content[loc[0]:loc[1]]) {
				continue
			}
			findings = append(findings, Finding{
				RuleID:      rule.ID,
				Description: rule.Description,
				Severity:    rule.Severity,
				StartIndex:  loc[0],
				EndIndex:    loc[1],
				Line:        lineAt(content, loc[0]),
			})
		}
	}
	findings = append(findings, s.detectGitleaks(content)...)

	if len(findings) == 0 {
		result.Duration = time.Since(start)
		return result
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].StartIndex != findings[j].StartIndex {
			return findings[i].StartIndex < findings[j].StartIndex
		}
		return findings[i].EndIndex > findings[j].EndIndex
	})

	result.Findings = findings
	result.TotalFindings = len(findings)
	for _, f := range findings {
		result.ByRule[f.RuleID]++
	}
	result.Scrubbed = s.replace(content, findings)
	result.Duration = time.Since(start)
	return result
}

func (s *Scrubber) allowed(match string) bool {
	for _, re := range s.allow {
		if re.MatchString(match) {
			return true
		}
	}
	return false
}

// detectGitleaks maps gitleaks findings back to byte offsets. Gitleaks reports
// the secret value, so each one is located by searching its line.
func (s *Scrubber) detectGitleaks(content string) []Finding {
	if s.detector == nil {
		return nil
	}

	s.mu.Lock()
	leaks := s.detector.DetectString(content)
	s.mu.Unlock()

	lineStarts := lineOffsets(content)
	var findings []Finding
	for _, leak := range leaks {
		if leak.Secret == "" {
			continue
		}
		// Search from the line before StartLine to tolerate either line base.
		line := min(max(leak.StartLine-1, 0), len(lineStarts)-1)
		from := lineStarts[line]
		idx := strings.Index(content[from:], leak.Secret)
		if idx < 0 {
			continue
		}
		begin := from + idx
		findings = append(findings, Finding{
			RuleID:      leak.RuleID,
			Description: leak.Description,
			Severity:    "high",
			StartIndex:  begin,
			EndIndex:    begin + len(leak.Secret),
			Line:        lineAt(content, begin),
		})
	}
	return findings
}

// replace substitutes sorted findings, merging overlapping spans.
func (s *Scrubber) replace(content string, findings []Finding) string {
	type span struct{ start, end int }
	var merged []span
	for _, f := range findings {
		if n := len(merged); n > 0 && f.StartIndex <= merged[n-1].end {
			if f.EndIndex > merged[n-1].end {
				merged[n-1].end = f.EndIndex
			}
			continue
		}
		merged = append(merged, span{f.StartIndex, f.EndIndex})
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, sp := range merged {
		b.WriteString(content[last:sp.start])
		b.WriteString(s.redactionString)
		last = sp.end
	}
	b.WriteString(content[last:])
	return b.String()
}

func applyAllowlist(cfg *gitleaksConfig.Config, allow []*regexp.Regexp) {
	list := &gitleaksConfig.Allowlist{Description: "rfqd allowlist"}
	for _, re := range allow {
		list.Regexes = append(list.Regexes, (*gitleaksRegexp.Regexp)(re))
	}
	cfg.Allowlists = append(cfg.Allowlists, list)
}

func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}

// lineOffsets returns the byte offset of each zero-indexed line.
func lineOffsets(content string) []int {
	offsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
