package rfq

import "strings"

// Sample is a named example request.
type Sample struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// Samples returns example requests covering each detector.
func Samples() []Sample {
	return []Sample{
		{Name: "FX Spot (Buy)", Text: "Buy 10MM EUR/USD spot"},
		{Name: "FX Forward", Text: "Need a price on 5M GBP/USD 3M forward"},
		{Name: "Two-Way", Text: "Can I get a two-way on 50MM USD/JPY?"},
		{Name: "Urgent Request", Text: "URGENT: Sell 25MM EUR/USD ASAP!"},
		{Name: "Complex RFQ", Text: "Hi, looking to buy 100 MIO EURUSD 6 months outright, value date IMM Dec"},
	}
}

// SplitLines splits newline-separated batch input, trimming each line and
// dropping blank ones.
func SplitLines(input string) []string {
	var out []string
	for _, line := range strings.Split(input, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
