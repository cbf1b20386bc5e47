package rfq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/rfqd/internal/validation"
)

var fixedTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type validatorFunc func(ctx context.Context, fields map[string]string) ([]validation.Finding, error)

func (f validatorFunc) Validate(ctx context.Context, fields map[string]string) ([]validation.Finding, error) {
	return f(ctx, fields)
}

func newTestRequest(raw string) *ParsedRequest {
	return newParsedRequest(raw, "req-1", fixedTime)
}

func TestFromSemantic_MapsVocabulary(t *testing.T) {
	a := &Assembler{}
	p := &Payload{
		Direction:        "sell",
		AssetClass:       "irs",
		Instrument:       "USD 5Y IRS",
		Quantity:         ptr(25e6),
		QuantityUnit:     "MM",
		Notional:         ptr(25e6),
		NotionalCurrency: "USD",
		Tenor:            "5Y",
		Strike:           ptr(0.035),
		ClientName:       "Acme",
		Urgency:          "asap",
		AdditionalTerms:  map[string]any{"fixed_leg": "receive"},
		ConfidenceScore:  ptr(0.9),
		ParsingNotes:     []string{"Parsed by backend"},
	}

	req := a.FromSemantic(context.Background(), newTestRequest("raw"), p)

	assert.Equal(t, DirectionSell, req.Direction)
	assert.Equal(t, AssetIRS, req.AssetClass)
	assert.Equal(t, "USD 5Y IRS", req.Instrument)
	assert.Equal(t, 25e6, *req.Quantity)
	assert.Equal(t, "5Y", req.Tenor)
	assert.Equal(t, 0.035, *req.Strike)
	assert.Equal(t, "Acme", req.ClientName)
	// "asap" is unknown to the urgency table but known to the level table.
	assert.Equal(t, UrgencyUnknown, req.Urgency)
	assert.Equal(t, UrgencyLevelUrgent, req.UrgencyLevel)
	assert.Equal(t, "receive", req.AdditionalTerms["fixed_leg"])
	assert.Equal(t, 0.9, req.ConfidenceScore)
	assert.Equal(t, []string{"Parsed by backend"}, req.ParsingNotes)
	assert.Equal(t, "raw", req.RawText)
}

func TestFromSemantic_Defaults(t *testing.T) {
	req := (&Assembler{}).FromSemantic(context.Background(), newTestRequest("x"), &Payload{})

	assert.Equal(t, DirectionUnknown, req.Direction)
	assert.Equal(t, AssetClassUnknown, req.AssetClass)
	assert.Equal(t, UrgencyNormal, req.Urgency)
	assert.Equal(t, UrgencyLevelNormal, req.UrgencyLevel)
	assert.Equal(t, DefaultSemanticConfidence, req.ConfidenceScore)
	assert.Nil(t, req.Quantity)
	assert.Nil(t, req.Notional)
	assert.Nil(t, req.SettlementDate)
	assert.NotNil(t, req.AdditionalTerms)
	assert.Empty(t, req.ParsingNotes)
}

func TestFromSemantic_ClampsConfidence(t *testing.T) {
	a := &Assembler{}
	high := a.FromSemantic(context.Background(), newTestRequest("x"), &Payload{ConfidenceScore: ptr(1.7)})
	assert.Equal(t, 1.0, high.ConfidenceScore)

	low := a.FromSemantic(context.Background(), newTestRequest("x"), &Payload{ConfidenceScore: ptr(-0.2)})
	assert.Equal(t, 0.0, low.ConfidenceScore)
}

func TestFromSemantic_CurrencyPair(t *testing.T) {
	a := &Assembler{}
	tests := []struct {
		in   string
		want string
		note bool
	}{
		{"EUR/USD", "EUR/USD", false},
		{"eurusd", "EUR/USD", false},
		{"GBP USD", "GBP/USD", false},
		{"USD/TRY", "", true},
		{"EUR/EUR", "", true},
		{"cable", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			req := a.FromSemantic(context.Background(), newTestRequest("x"), &Payload{CurrencyPair: tt.in})
			assert.Equal(t, tt.want, req.CurrencyPair)
			assert.Equal(t, tt.note, req.HasNote("currency_pair ignored: "+tt.in))
		})
	}
}

func TestFromSemantic_NegativeQuantityDropped(t *testing.T) {
	req := (&Assembler{}).FromSemantic(context.Background(), newTestRequest("x"), &Payload{Quantity: ptr(-5.0)})
	assert.Nil(t, req.Quantity)
	assert.True(t, req.HasNote("quantity ignored: negative value -5"))
}

func TestFromSemantic_DefaultCurrency(t *testing.T) {
	a := &Assembler{defaultCurrency: "USD"}
	req := a.FromSemantic(context.Background(), newTestRequest("x"), &Payload{Notional: ptr(1e6)})
	assert.Equal(t, "USD", req.NotionalCurrency)

	req = a.FromSemantic(context.Background(), newTestRequest("x"), &Payload{})
	assert.Empty(t, req.NotionalCurrency)
}

func TestFromSemantic_SideRecords(t *testing.T) {
	payload := &Payload{
		ContactInfo: &ContactInfo{Name: "Jo Trader", Desk: "G10 FX"},
		CompanyInfo: &CompanyInfo{Name: "Acme Capital", LEI: "5493001KJTIIGC8Y1R12"},
		LineItems: []LineItem{
			{Direction: "pay", AssetClass: "irs", Side: "payer", Tenor: "5Y"},
			{ItemNumber: 7, Direction: "buy", AssetClass: "fx spot", CurrencyPair: "eurusd"},
		},
	}

	t.Run("disabled", func(t *testing.T) {
		req := (&Assembler{}).FromSemantic(context.Background(), newTestRequest("x"), payload)
		assert.Nil(t, req.ContactInfo)
		assert.Nil(t, req.CompanyInfo)
		assert.Empty(t, req.LineItems)
	})

	t.Run("enabled", func(t *testing.T) {
		a := &Assembler{extractContacts: true, extractCompany: true, extractLineItems: true}
		req := a.FromSemantic(context.Background(), newTestRequest("x"), payload)

		require.NotNil(t, req.ContactInfo)
		assert.Equal(t, "G10 FX", req.ContactInfo.Desk)
		require.NotNil(t, req.CompanyInfo)
		assert.Equal(t, "Acme Capital", req.CompanyInfo.Name)

		require.Len(t, req.LineItems, 2)
		assert.Equal(t, 1, req.LineItems[0].ItemNumber)
		assert.Equal(t, DirectionUnknown, req.LineItems[0].Direction)
		assert.Equal(t, AssetIRS, req.LineItems[0].AssetClass)
		assert.Equal(t, SidePay, req.LineItems[0].Side)
		assert.Equal(t, 7, req.LineItems[1].ItemNumber)
		assert.Equal(t, DirectionBuy, req.LineItems[1].Direction)
		assert.Equal(t, AssetFXSpot, req.LineItems[1].AssetClass)
		assert.Equal(t, "EUR/USD", req.LineItems[1].CurrencyPair)
	})

	t.Run("company without name", func(t *testing.T) {
		a := &Assembler{extractContacts: true, extractCompany: true}
		req := a.FromSemantic(context.Background(), newTestRequest("x"), &Payload{
			ContactInfo: &ContactInfo{},
			CompanyInfo: &CompanyInfo{Country: "GB"},
		})
		assert.Nil(t, req.ContactInfo)
		assert.Nil(t, req.CompanyInfo)
		assert.True(t, req.HasNote("company_info ignored: name is required"))
	})
}

func TestFinish_MinConfidence(t *testing.T) {
	a := &Assembler{minConfidence: 0.5}
	e := NewPatternExtractor().Extract(Normalize("buy something"))
	req := a.FromPattern(context.Background(), newTestRequest("buy something"), e)

	assert.Equal(t, 0.2, req.ConfidenceScore)
	assert.Equal(t, []string{PatternNote, "Confidence 0.20 below threshold 0.50"}, req.ParsingNotes)
}

func TestValidate_MergesFindings(t *testing.T) {
	var seen map[string]string
	a := &Assembler{validator: validatorFunc(func(_ context.Context, fields map[string]string) ([]validation.Finding, error) {
		seen = fields
		return []validation.Finding{
			{Severity: validation.SeverityWarning, Field: "notional", Message: "Notional below minimum: 10"},
			{Severity: validation.SeverityWarning, Field: "notional", Message: "Notional below minimum: 10"},
			{Severity: validation.SeverityError, Field: "tenor", Message: "Invalid tenor format: soon"},
		}, nil
	})}

	req := a.FromSemantic(context.Background(), newTestRequest("x"), &Payload{
		Direction:        "BUY",
		AssetClass:       "FX_FORWARD",
		Instrument:       "EURUSD",
		Notional:         ptr(10.0),
		NotionalCurrency: "EUR",
		Tenor:            "soon",
	})

	assert.Equal(t, map[string]string{
		"direction":         "BUY",
		"asset_class":       "FX_FORWARD",
		"instrument":        "EURUSD",
		"notional":          "10",
		"notional_currency": "EUR",
		"tenor":             "soon",
		"urgency":           "NORMAL",
	}, seen)
	assert.Equal(t, []string{
		"[WARNING] notional: Notional below minimum: 10",
		"[ERROR] tenor: Invalid tenor format: soon",
	}, req.ParsingNotes)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name string
		v    Validator
		note string
	}{
		{
			name: "error",
			v: validatorFunc(func(context.Context, map[string]string) ([]validation.Finding, error) {
				return nil, errors.New("rules unavailable")
			}),
			note: "Validation error: rules unavailable",
		},
		{
			name: "panic",
			v: validatorFunc(func(context.Context, map[string]string) ([]validation.Finding, error) {
				panic("native library crashed")
			}),
			note: "Validation error: native library crashed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Assembler{validator: tt.v}
			e := NewPatternExtractor().Extract(Normalize("Buy 10MM EUR/USD"))
			req := a.FromPattern(context.Background(), newTestRequest("Buy 10MM EUR/USD"), e)

			assert.Equal(t, DirectionBuy, req.Direction)
			assert.Equal(t, []string{PatternNote, tt.note}, req.ParsingNotes)
		})
	}
}

func TestValidate_WithRealValidator(t *testing.T) {
	v, err := validation.New(validation.DefaultConfig())
	require.NoError(t, err)

	a := &Assembler{validator: v}
	e := NewPatternExtractor().Extract(Normalize("price on 5M GBP/USD"))
	req := a.FromPattern(context.Background(), newTestRequest("price on 5M GBP/USD"), e)

	assert.True(t, req.HasNote("[ERROR] direction: Invalid direction: UNKNOWN"))
}

func TestValidationFields_ZeroNotionalIsEmpty(t *testing.T) {
	req := newTestRequest("x")
	req.Notional = ptr(0.0)
	assert.Equal(t, "", ValidationFields(req)["notional"])

	req.Notional = ptr(1.5e7)
	assert.Equal(t, "15000000", ValidationFields(req)["notional"])
}
