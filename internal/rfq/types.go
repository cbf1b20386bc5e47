package rfq

import (
	"errors"
	"slices"
	"time"
)

// Direction is the side the client wants to trade.
type Direction string

const (
	DirectionBuy     Direction = "BUY"
	DirectionSell    Direction = "SELL"
	DirectionTwoWay  Direction = "TWO_WAY"
	DirectionUnknown Direction = "UNKNOWN"
)

// AssetClass is the instrument family of the request.
type AssetClass string

const (
	AssetFXSpot       AssetClass = "FX_SPOT"
	AssetFXForward    AssetClass = "FX_FORWARD"
	AssetFXSwap       AssetClass = "FX_SWAP"
	AssetFXOption     AssetClass = "FX_OPTION"
	AssetBond         AssetClass = "BOND"
	AssetIRS          AssetClass = "INTEREST_RATE_SWAP"
	AssetCDS          AssetClass = "CREDIT_DEFAULT_SWAP"
	AssetEquity       AssetClass = "EQUITY"
	AssetCommodity    AssetClass = "COMMODITY"
	AssetClassUnknown AssetClass = "UNKNOWN"
)

// Urgency is the coarse timing requirement.
type Urgency string

const (
	UrgencyImmediate Urgency = "IMMEDIATE"
	UrgencyNormal    Urgency = "NORMAL"
	UrgencyEndOfDay  Urgency = "END_OF_DAY"
	UrgencyUnknown   Urgency = "UNKNOWN"
)

// UrgencyLevel is a finer timing taxonomy. It is populated independently of
// Urgency and is not a refinement of it.
type UrgencyLevel string

const (
	UrgencyLevelCritical UrgencyLevel = "CRITICAL"
	UrgencyLevelUrgent   UrgencyLevel = "URGENT"
	UrgencyLevelHigh     UrgencyLevel = "HIGH"
	UrgencyLevelNormal   UrgencyLevel = "NORMAL"
	UrgencyLevelLow      UrgencyLevel = "LOW"
	UrgencyLevelUnknown  UrgencyLevel = "UNKNOWN"
)

// LegSide is the pay/receive side of a swap leg.
type LegSide string

const (
	SidePay     LegSide = "PAY"
	SideReceive LegSide = "RECEIVE"
)

// ParsedRequest is the canonical result of parsing one RFQ message.
//
// Every field except ParsingNotes is fixed once the request is assembled.
// Optional numbers and dates are pointers so an unextracted value encodes
// as null rather than zero.
type ParsedRequest struct {
	RawText          string         `json:"raw_text"`
	ID               string         `json:"id"`
	Direction        Direction      `json:"direction"`
	AssetClass       AssetClass     `json:"asset_class"`
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
	Urgency          Urgency        `json:"urgency"`
	UrgencyLevel     UrgencyLevel   `json:"urgency_level"`
	AdditionalTerms  map[string]any `json:"additional_terms"`
	ConfidenceScore  float64        `json:"confidence_score"`
	ParsingNotes     []string       `json:"parsing_notes"`
	Timestamp        time.Time      `json:"timestamp"`
	LineItems        []LineItem     `json:"line_items"`
	ContactInfo      *ContactInfo   `json:"contact_info"`
	CompanyInfo      *CompanyInfo   `json:"company_info"`
}

func newParsedRequest(raw, id string, ts time.Time) *ParsedRequest {
	return &ParsedRequest{
		RawText:         raw,
		ID:              id,
		Direction:       DirectionUnknown,
		AssetClass:      AssetClassUnknown,
		Urgency:         UrgencyNormal,
		UrgencyLevel:    UrgencyLevelNormal,
		AdditionalTerms: map[string]any{},
		ParsingNotes:    []string{},
		Timestamp:       ts,
		LineItems:       []LineItem{},
	}
}

// AddNote appends a diagnostic note.
func (r *ParsedRequest) AddNote(note string) {
	r.ParsingNotes = append(r.ParsingNotes, note)
}

// HasNote reports whether note is already recorded verbatim.
func (r *ParsedRequest) HasNote(note string) bool {
	return slices.Contains(r.ParsingNotes, note)
}

// LineItem is one instrument leg of a multi-leg request.
type LineItem struct {
	ItemNumber       int        `json:"item_number"`
	Direction        Direction  `json:"direction"`
	AssetClass       AssetClass `json:"asset_class"`
	Instrument       string     `json:"instrument"`
	Quantity         *float64   `json:"quantity"`
	QuantityUnit     string     `json:"quantity_unit"`
	Unit             string     `json:"unit"`
	CurrencyPair     string     `json:"currency_pair"`
	Notional         *float64   `json:"notional"`
	NotionalCurrency string     `json:"notional_currency"`
	SettlementDate   *string    `json:"settlement_date"`
	Tenor            string     `json:"tenor"`
	Strike           *float64   `json:"strike"`
	Price            *float64   `json:"price"`
	Side             LegSide    `json:"side,omitempty"`
	Rate             *float64   `json:"rate"`
	Description      string     `json:"description"`
}

// ContactInfo identifies the person behind a request.
type ContactInfo struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Desk        string `json:"desk,omitempty"`
	Role        string `json:"role,omitempty"`
	BloombergID string `json:"bloomberg_id,omitempty"`
	ReutersID   string `json:"reuters_id,omitempty"`
}

// IsEmpty reports whether no contact field is set.
func (c ContactInfo) IsEmpty() bool {
	return c == ContactInfo{}
}

// ErrCompanyNameRequired is returned when a company record has no name.
var ErrCompanyNameRequired = errors.New("name is required")

// CompanyInfo identifies the counterparty of a request.
type CompanyInfo struct {
	Name                string `json:"name"`
	LegalEntity         string `json:"legal_entity,omitempty"`
	LEI                 string `json:"lei,omitempty"`
	Country             string `json:"country,omitempty"`
	Sector              string `json:"sector,omitempty"`
	RelationshipManager string `json:"relationship_manager,omitempty"`
	CreditRating        string `json:"credit_rating,omitempty"`
	IsInternal          bool   `json:"is_internal"`
}

// NewCompanyInfo validates c and returns a copy.
func NewCompanyInfo(c CompanyInfo) (*CompanyInfo, error) {
	if c.Name == "" {
		return nil, ErrCompanyNameRequired
	}
	return &c, nil
}

// IsEmpty reports whether none of the identifying fields are set.
func (c CompanyInfo) IsEmpty() bool {
	return c.Name == "" && c.LegalEntity == "" && c.LEI == "" && c.Country == "" && c.Sector == ""
}
