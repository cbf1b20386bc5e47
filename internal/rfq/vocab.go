package rfq

import "strings"

// Closed lookup tables. Anything not listed resolves to the UNKNOWN variant.
var (
	directionVocab = map[string]Direction{
		"BUY":     DirectionBuy,
		"SELL":    DirectionSell,
		"TWO_WAY": DirectionTwoWay,
		"2WAY":    DirectionTwoWay,
	}

	assetClassVocab = map[string]AssetClass{
		"FX_SPOT":             AssetFXSpot,
		"FX_FORWARD":          AssetFXForward,
		"FX_SWAP":             AssetFXSwap,
		"FX_OPTION":           AssetFXOption,
		"BOND":                AssetBond,
		"INTEREST_RATE_SWAP":  AssetIRS,
		"IRS":                 AssetIRS,
		"CREDIT_DEFAULT_SWAP": AssetCDS,
		"CDS":                 AssetCDS,
		"EQUITY":              AssetEquity,
		"COMMODITY":           AssetCommodity,
	}

	urgencyVocab = map[string]Urgency{
		"IMMEDIATE":  UrgencyImmediate,
		"NORMAL":     UrgencyNormal,
		"END_OF_DAY": UrgencyEndOfDay,
		"EOD":        UrgencyEndOfDay,
	}

	// Keyed by the lowercased token. "high" and "critical" have no Urgency counterpart.
	urgencyLevelVocab = map[string]UrgencyLevel{
		"critical":   UrgencyLevelCritical,
		"urgent":     UrgencyLevelUrgent,
		"asap":       UrgencyLevelUrgent,
		"immediate":  UrgencyLevelCritical,
		"high":       UrgencyLevelHigh,
		"normal":     UrgencyLevelNormal,
		"low":        UrgencyLevelLow,
		"eod":        UrgencyLevelLow,
		"end of day": UrgencyLevelLow,
	}
)

// ParseDirection maps a free-form direction token.
func ParseDirection(token string) Direction {
	if d, ok := directionVocab[strings.ToUpper(strings.TrimSpace(token))]; ok {
		return d
	}
	return DirectionUnknown
}

// ParseAssetClass maps an asset class token; spaces are treated as underscores.
func ParseAssetClass(token string) AssetClass {
	key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(token)), " ", "_")
	if a, ok := assetClassVocab[key]; ok {
		return a
	}
	return AssetClassUnknown
}

// ParseUrgency maps an urgency token. An empty token means the field was not
// supplied and yields NORMAL; an unrecognized one yields UNKNOWN.
func ParseUrgency(token string) Urgency {
	key := strings.ToUpper(strings.TrimSpace(token))
	if key == "" {
		return UrgencyNormal
	}
	if u, ok := urgencyVocab[key]; ok {
		return u
	}
	return UrgencyUnknown
}

// ParseUrgencyLevel maps the same raw urgency token through the finer table.
func ParseUrgencyLevel(token string) UrgencyLevel {
	key := strings.ToLower(strings.TrimSpace(token))
	if key == "" {
		return UrgencyLevelNormal
	}
	if l, ok := urgencyLevelVocab[key]; ok {
		return l
	}
	return UrgencyLevelUnknown
}

// ParseLegSide maps PAY/RECEIVE (and the PAYER/RECEIVER, REC spellings).
// Anything else yields "".
func ParseLegSide(token string) LegSide {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "PAY", "PAYER":
		return SidePay
	case "RECEIVE", "RECEIVER", "REC":
		return SideReceive
	}
	return ""
}
