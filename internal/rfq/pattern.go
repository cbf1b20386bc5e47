package rfq

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PatternNote is recorded on every result produced by the pattern path.
const PatternNote = "Parsed using regex fallback (no LLM)"

// Currencies is the ordered set of recognized ISO codes. Pair detection walks
// it as a nested loop, so order decides which pair wins.
var Currencies = []string{
	"EUR", "USD", "GBP", "JPY", "CHF", "AUD", "NZD", "CAD",
	"CNY", "HKD", "SGD", "NOK", "SEK", "DKK", "MXN", "ZAR",
}

// Normalized is input text in the forms the detectors need.
type Normalized struct {
	Raw     string // byte-identical input
	Trimmed string
	Upper   string
}

// Normalize never fails.
func Normalize(text string) Normalized {
	trimmed := strings.TrimSpace(text)
	return Normalized{Raw: text, Trimmed: trimmed, Upper: strings.ToUpper(trimmed)}
}

// Extraction is the field set detected by the pattern path.
type Extraction struct {
	Direction    Direction
	AssetClass   AssetClass
	Instrument   string
	CurrencyPair string
	Quantity     *float64
	QuantityUnit string
	Tenor        string
	Urgency      Urgency
	UrgencyLevel UrgencyLevel
}

type keywordRule[T any] struct {
	value    T
	keywords []string
}

var directionRules = []keywordRule[Direction]{
	{DirectionBuy, []string{"BUY", "BID", "LONG", "MINE"}},
	{DirectionSell, []string{"SELL", "OFFER", "SHORT", "YOURS"}},
	{DirectionTwoWay, []string{"TWO-WAY", "2-WAY", "BOTH SIDES"}},
}

type urgencyPair struct {
	urgency Urgency
	level   UrgencyLevel
}

var urgencyRules = []keywordRule[urgencyPair]{
	{urgencyPair{UrgencyImmediate, UrgencyLevelUrgent}, []string{"URGENT", "ASAP", "NOW", "IMMEDIATELY"}},
	{urgencyPair{UrgencyEndOfDay, UrgencyLevelLow}, []string{"EOD", "END OF DAY", "CLOSE"}},
}

// firstRule returns the first rule, in priority order, with any keyword
// occurring as a substring of upper.
func firstRule[T any](rules []keywordRule[T], upper string) (T, bool) {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(upper, kw) {
				return r.value, true
			}
		}
	}
	var zero T
	return zero, false
}

var quantityMultipliers = map[string]float64{
	"K":   1e3,
	"M":   1e6,
	"MM":  1e6,
	"MIO": 1e6,
	"MLN": 1e6,
	"B":   1e9,
	"BN":  1e9,
}

var tenorUnits = map[string]string{
	"D": "D", "DAY": "D",
	"W": "W", "WEEK": "W",
	"M": "M", "MONTH": "M",
	"Y": "Y", "YEAR": "Y",
}

type pairPattern struct {
	base, quote string
	re          *regexp.Regexp
}

// PatternExtractor runs the ordered deterministic detectors. It holds only
// compiled patterns and is safe for concurrent use.
type PatternExtractor struct {
	pairs    []pairPattern
	quantity *regexp.Regexp
	tenor    *regexp.Regexp
}

// NewPatternExtractor compiles the detector patterns.
func NewPatternExtractor() *PatternExtractor {
	pairs := make([]pairPattern, 0, len(Currencies)*(len(Currencies)-1))
	for _, c1 := range Currencies {
		for _, c2 := range Currencies {
			if c1 == c2 {
				continue
			}
			// C1/C2, C1C2 or C1 C2 as a whole token.
			re := regexp.MustCompile(`\b(?:` + c1 + `/` + c2 + `|` + c1 + c2 + `|` + c1 + `\s+` + c2 + `)\b`)
			pairs = append(pairs, pairPattern{base: c1, quote: c2, re: re})
		}
	}
	return &PatternExtractor{
		pairs:    pairs,
		quantity: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(MM|M|K|B|MIO|MLN|BN)?\b`),
		tenor:    regexp.MustCompile(`(?i)\b(\d+)\s*(D|W|M|Y|DAY|WEEK|MONTH|YEAR)S?\b`),
	}
}

// Extract always succeeds; undetected fields keep their UNKNOWN or empty default.
func (p *PatternExtractor) Extract(n Normalized) Extraction {
	e := Extraction{
		Direction:    DirectionUnknown,
		AssetClass:   AssetClassUnknown,
		Urgency:      UrgencyNormal,
		UrgencyLevel: UrgencyLevelNormal,
	}

	if d, ok := firstRule(directionRules, n.Upper); ok {
		e.Direction = d
	}

	for _, pp := range p.pairs {
		if pp.re.MatchString(n.Upper) {
			e.CurrencyPair = pp.base + "/" + pp.quote
			e.Instrument = pp.base + pp.quote
			e.AssetClass = AssetFXSpot
			break
		}
	}

	if m := p.quantity.FindStringSubmatch(n.Trimmed); m != nil {
		// Out-of-range amounts (ErrRange, or +Inf after scaling) are left
		// undetected; JSON cannot carry Inf.
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			unit := strings.ToUpper(m[2])
			mult, scaled := quantityMultipliers[unit]
			if scaled {
				amount *= mult
			}
			if !math.IsInf(amount, 0) {
				e.Quantity = &amount
				if scaled {
					e.QuantityUnit = unit
				}
			}
		}
	}

	if m := p.tenor.FindStringSubmatch(n.Trimmed); m != nil {
		e.Tenor = m[1] + tenorUnits[strings.ToUpper(m[2])]
		if e.AssetClass == AssetFXSpot {
			e.AssetClass = AssetFXForward
		}
	}

	if u, ok := firstRule(urgencyRules, n.Upper); ok {
		e.Urgency = u.urgency
		e.UrgencyLevel = u.level
	}

	return e
}

// Score is the share of the five core fields that were detected, capped at 1.
func Score(e Extraction) float64 {
	found := 0
	for _, ok := range []bool{
		e.Direction != DirectionUnknown,
		e.AssetClass != AssetClassUnknown,
		e.Instrument != "",
		e.Quantity != nil,
		e.CurrencyPair != "",
	} {
		if ok {
			found++
		}
	}
	return min(float64(found)/5, 1.0)
}

// Band buckets a confidence score for display: high at or above the high
// threshold, medium at or above 0.5, low otherwise.
func Band(score, high float64) string {
	switch {
	case score >= high:
		return "high"
	case score >= 0.5:
		return "medium"
	default:
		return "low"
	}
}
