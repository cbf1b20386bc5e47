package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/fyrsmithlabs/rfqd/internal/rfq"
)

const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"

	labelWidth = 16
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	bandStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML, formatTable:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected json, yaml, or table)", format)
	}
}

// render writes v as JSON or YAML, or calls table for the human format.
func render(w io.Writer, format string, v any, table func(io.Writer)) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		out, err := toYAML(v)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case formatTable:
		table(w)
		return nil
	default:
		return checkFormat(format)
	}
}

// toYAML goes through JSON so YAML keys match the API field names and keep
// their declaration order.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("converting result: %w", err)
	}
	blockStyle(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return out, nil
}

// blockStyle drops the flow and quoting styles inherited from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func confidence(score, high float64) string {
	band := rfq.Band(score, high)
	return bandStyles[band].Render(fmt.Sprintf("%.2f (%s)", score, band))
}

func row(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(pad(label, labelWidth)), valueStyle.Render(value))
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// writeRequest renders one result as aligned label/value rows. Empty fields
// are omitted.
func writeRequest(w io.Writer, r *rfq.ParsedRequest, high float64) {
	fmt.Fprintln(w, titleStyle.Render("RFQ "+r.ID))
	fmt.Fprintf(w, "  %s\n", dimStyle.Render(strings.TrimSpace(r.RawText)))

	row(w, "Direction", string(r.Direction))
	row(w, "Asset class", string(r.AssetClass))
	row(w, "Instrument", r.Instrument)
	row(w, "Currency pair", r.CurrencyPair)
	if q := formatFloat(r.Quantity); q != "" {
		row(w, "Quantity", strings.TrimSpace(q+" "+r.QuantityUnit))
	}
	if n := formatFloat(r.Notional); n != "" {
		row(w, "Notional", strings.TrimSpace(n+" "+r.NotionalCurrency))
	}
	row(w, "Tenor", r.Tenor)
	if r.SettlementDate != nil {
		row(w, "Settlement", *r.SettlementDate)
	}
	row(w, "Strike", formatFloat(r.Strike))
	row(w, "Client", r.ClientName)
	row(w, "Urgency", fmt.Sprintf("%s / %s", r.Urgency, r.UrgencyLevel))

	if len(r.AdditionalTerms) > 0 {
		keys := make([]string, 0, len(r.AdditionalTerms))
		for k := range r.AdditionalTerms {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row(w, k, fmt.Sprint(r.AdditionalTerms[k]))
		}
	}
	if r.CompanyInfo != nil {
		row(w, "Company", r.CompanyInfo.Name)
	}
	if r.ContactInfo != nil {
		row(w, "Contact", strings.TrimSpace(r.ContactInfo.Name+" "+r.ContactInfo.Desk))
	}
	if len(r.LineItems) > 0 {
		row(w, "Line items", strconv.Itoa(len(r.LineItems)))
	}

	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(pad("Confidence", labelWidth)), confidence(r.ConfidenceScore, high))
	for _, note := range r.ParsingNotes {
		fmt.Fprintf(w, "  %s\n", dimStyle.Render("- "+note))
	}
}
