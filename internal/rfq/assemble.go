package rfq

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/rfqd/internal/validation"
)

// DefaultSemanticConfidence is used when a semantic payload omits its score.
const DefaultSemanticConfidence = 0.8

// Validator post-checks a flat view of an assembled request.
type Validator interface {
	Validate(ctx context.Context, fields map[string]string) ([]validation.Finding, error)
}

// Assembler turns extractor output into the canonical ParsedRequest.
type Assembler struct {
	validator        Validator
	minConfidence    float64
	defaultCurrency  string
	extractContacts  bool
	extractCompany   bool
	extractLineItems bool
}

// FromPattern fills req from a pattern extraction.
func (a *Assembler) FromPattern(ctx context.Context, req *ParsedRequest, e Extraction) *ParsedRequest {
	req.Direction = e.Direction
	req.AssetClass = e.AssetClass
	req.Instrument = e.Instrument
	req.CurrencyPair = e.CurrencyPair
	req.Quantity = e.Quantity
	req.QuantityUnit = e.QuantityUnit
	req.Tenor = e.Tenor
	req.Urgency = e.Urgency
	req.UrgencyLevel = e.UrgencyLevel
	req.ConfidenceScore = Score(e)
	req.AddNote(PatternNote)

	a.finish(ctx, req)
	return req
}

// FromSemantic fills req from a backend payload, mapping every enum token
// through the vocabulary tables.
func (a *Assembler) FromSemantic(ctx context.Context, req *ParsedRequest, p *Payload) *ParsedRequest {
	req.Direction = ParseDirection(p.Direction)
	req.AssetClass = ParseAssetClass(p.AssetClass)
	req.Instrument = p.Instrument
	req.QuantityUnit = p.QuantityUnit
	req.Notional = p.Notional
	req.NotionalCurrency = p.NotionalCurrency
	req.SettlementDate = p.SettlementDate
	req.Tenor = p.Tenor
	req.Strike = p.Strike
	req.ClientName = p.ClientName
	req.Urgency = ParseUrgency(p.Urgency)
	req.UrgencyLevel = ParseUrgencyLevel(p.Urgency)
	if p.AdditionalTerms != nil {
		req.AdditionalTerms = p.AdditionalTerms
	}
	req.ParsingNotes = append(req.ParsingNotes, p.ParsingNotes...)

	if p.Quantity != nil && *p.Quantity < 0 {
		req.AddNote(fmt.Sprintf("quantity ignored: negative value %s", formatNumber(*p.Quantity)))
	} else {
		req.Quantity = p.Quantity
	}

	if p.CurrencyPair != "" {
		if pair, ok := NormalizeCurrencyPair(p.CurrencyPair); ok {
			req.CurrencyPair = pair
		} else {
			req.AddNote("currency_pair ignored: " + p.CurrencyPair)
		}
	}

	if req.Notional != nil && req.NotionalCurrency == "" && a.defaultCurrency != "" {
		req.NotionalCurrency = a.defaultCurrency
	}

	confidence := DefaultSemanticConfidence
	if p.ConfidenceScore != nil {
		confidence = *p.ConfidenceScore
	}
	req.ConfidenceScore = clamp01(confidence)

	a.attachSideRecords(req, p)
	a.finish(ctx, req)
	return req
}

func (a *Assembler) attachSideRecords(req *ParsedRequest, p *Payload) {
	if a.extractContacts && p.ContactInfo != nil && !p.ContactInfo.IsEmpty() {
		contact := *p.ContactInfo
		req.ContactInfo = &contact
	}

	if a.extractCompany && p.CompanyInfo != nil && !p.CompanyInfo.IsEmpty() {
		company, err := NewCompanyInfo(*p.CompanyInfo)
		if err != nil {
			req.AddNote("company_info ignored: " + err.Error())
		} else {
			req.CompanyInfo = company
		}
	}

	if a.extractLineItems {
		for i, item := range p.LineItems {
			item.Direction = ParseDirection(string(item.Direction))
			item.AssetClass = ParseAssetClass(string(item.AssetClass))
			item.Side = ParseLegSide(string(item.Side))
			if item.ItemNumber <= 0 {
				item.ItemNumber = i + 1
			}
			if item.CurrencyPair != "" {
				pair, ok := NormalizeCurrencyPair(item.CurrencyPair)
				if !ok {
					req.AddNote(fmt.Sprintf("line_items[%d].currency_pair ignored: %s", i, item.CurrencyPair))
				}
				item.CurrencyPair = pair
			}
			req.LineItems = append(req.LineItems, item)
		}
	}
}

// finish applies the steps shared by both paths.
func (a *Assembler) finish(ctx context.Context, req *ParsedRequest) {
	if a.minConfidence > 0 && req.ConfidenceScore < a.minConfidence {
		req.AddNote(fmt.Sprintf("Confidence %.2f below threshold %.2f", req.ConfidenceScore, a.minConfidence))
	}
	if a.validator != nil {
		a.validate(ctx, req)
	}
	ConfidenceScore.Observe(req.ConfidenceScore)
}

// validate merges validator findings into the notes. A failing or panicking
// validator leaves a single note and never aborts the parse.
func (a *Assembler) validate(ctx context.Context, req *ParsedRequest) {
	findings, err := a.runValidator(ctx, ValidationFields(req))
	if err != nil {
		req.AddNote("Validation error: " + err.Error())
		return
	}
	for _, f := range findings {
		ValidationFindingsTotal.WithLabelValues(f.Severity.String()).Inc()
		note := fmt.Sprintf("[%s] %s: %s", f.Severity, f.Field, f.Message)
		if !req.HasNote(note) {
			req.AddNote(note)
		}
	}
}

func (a *Assembler) runValidator(ctx context.Context, fields map[string]string) (findings []validation.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return a.validator.Validate(ctx, fields)
}

// ValidationFields is the flat view handed to a Validator.
func ValidationFields(req *ParsedRequest) map[string]string {
	notional := ""
	if req.Notional != nil && *req.Notional != 0 {
		notional = formatNumber(*req.Notional)
	}
	return map[string]string{
		"direction":         string(req.Direction),
		"asset_class":       string(req.AssetClass),
		"instrument":        req.Instrument,
		"notional":          notional,
		"notional_currency": req.NotionalCurrency,
		"tenor":             req.Tenor,
		"urgency":           string(req.Urgency),
	}
}

// NormalizeCurrencyPair accepts "EUR/USD", "EURUSD" or "EUR USD" in any case
// and returns the canonical "EUR/USD" form. Both codes must be recognized
// and distinct.
func NormalizeCurrencyPair(s string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	var base, quote string
	switch {
	case len(upper) == 6:
		base, quote = upper[:3], upper[3:]
	case len(upper) == 7 && (upper[3] == '/' || upper[3] == ' '):
		base, quote = upper[:3], upper[4:]
	default:
		return "", false
	}
	if base == quote || !isCurrency(base) || !isCurrency(quote) {
		return "", false
	}
	return base + "/" + quote, true
}

func isCurrency(code string) bool {
	return slices.Contains(Currencies, code)
}

func clamp01(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return max(0, min(f, 1))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
