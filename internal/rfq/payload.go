package rfq

import "context"

// Payload is the structured object a semantic backend returns. Enum fields
// are raw tokens; the assembler maps them through the vocabulary tables.
type Payload struct {
	Direction        string         `json:"direction"`
	AssetClass       string         `json:"asset_class"`
	Instrument       string         `json:"instrument"`
	Quantity         *float64       `json:"quantity"`
	QuantityUnit     string         `json:"quantity_unit"`
	CurrencyPair     string         `json:"currency_pair"`
	Notional         *float64       `json:"notional"`
	NotionalCurrency string         `json:"notional_currency"`
	SettlementDate   *string        `json:"settlement_date"`
	Tenor            string         `json:"tenor"`
	Strike           *float64       `json:"strike"`
	ClientName       string         `json:"client_name"`
	Urgency          string         `json:"urgency"`
	AdditionalTerms  map[string]any `json:"additional_terms"`
	ConfidenceScore  *float64       `json:"confidence_score"`
	ParsingNotes     []string       `json:"parsing_notes"`
	ContactInfo      *ContactInfo   `json:"contact_info"`
	CompanyInfo      *CompanyInfo   `json:"company_info"`
	LineItems        []LineItem     `json:"line_items"`
}

// SemanticExtractor sends text to a semantic backend and returns its payload.
// Any error is a per-call failure; the parser falls back to patterns.
type SemanticExtractor interface {
	Extract(ctx context.Context, text string) (*Payload, error)
}
