package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/rfqd/internal/rfq"
)

var samplesParse bool

func init() {
	samplesCmd.Flags().BoolVar(&samplesParse, "parse", false, "parse each sample and show the result")
}

// parseCmd parses a single RFQ
var parseCmd = &cobra.Command{
	Use:   "parse [text...]",
	Short: "Parse one RFQ from arguments or stdin",
	Long: `Parse one RFQ message.

Examples:
  # Parse from arguments
  rfq parse Client wants to buy 10M EUR/USD 3M forward

  # Parse from stdin as JSON
  echo "Sell 25MM EUR/USD ASAP" | rfq parse -o json

  # Pattern-only, no backend call
  rfq parse --preset fast "Two-way on 20MM USDJPY"`,
	RunE: runParse,
}

// batchCmd parses newline-separated RFQs
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Parse newline-separated RFQs from a file or stdin",
	Long: `Parse one RFQ per line. Blank lines are skipped and results keep
input order.

Examples:
  rfq batch requests.txt
  cat requests.txt | rfq batch - -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

// samplesCmd lists the built-in sample RFQs
var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "List sample RFQs",
	RunE:  runSamples,
}

func runParse(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		text = string(content)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no RFQ text to parse")
	}

	parser, cfg, err := newParser(cmd.Context())
	if err != nil {
		return err
	}
	parsed := parser.Parse(cmd.Context(), text)
	return render(cmd.OutOrStdout(), outputFormat, parsed, func(w io.Writer) {
		writeRequest(w, parsed, cfg.Parser.HighConfidence)
	})
}

func runBatch(cmd *cobra.Command, args []string) error {
	var content []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
	}

	texts := rfq.SplitLines(string(content))
	if len(texts) == 0 {
		return fmt.Errorf("no RFQs to parse")
	}

	parser, cfg, err := newParser(cmd.Context())
	if err != nil {
		return err
	}
	results := parser.ParseBatch(cmd.Context(), texts)
	out := batchResult{Count: len(results), Results: results}
	return render(cmd.OutOrStdout(), outputFormat, out, func(w io.Writer) {
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeRequest(w, r, cfg.Parser.HighConfidence)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d request(s) parsed", len(results))))
	})
}

// batchResult matches the HTTP batch response.
type batchResult struct {
	Count   int                  `json:"count"`
	Results []*rfq.ParsedRequest `json:"results"`
}

type sampleResult struct {
	rfq.Sample
	Result *rfq.ParsedRequest `json:"result,omitempty"`
}

func runSamples(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(outputFormat); err != nil {
		return err
	}

	samples := rfq.Samples()
	out := make([]sampleResult, len(samples))
	high := 0.8
	if samplesParse {
		parser, cfg, err := newParser(cmd.Context())
		if err != nil {
			return err
		}
		high = cfg.Parser.HighConfidence
		texts := make([]string, len(samples))
		for i, s := range samples {
			texts[i] = s.Text
		}
		for i, r := range parser.ParseBatch(cmd.Context(), texts) {
			out[i].Result = r
		}
	}
	for i, s := range samples {
		out[i].Sample = s
	}

	return render(cmd.OutOrStdout(), outputFormat, out, func(w io.Writer) {
		for _, s := range out {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render(pad(s.Name, labelWidth)), valueStyle.Render(s.Text))
			if s.Result != nil {
				fmt.Fprintf(w, "%s %s\n", pad("", labelWidth), confidence(s.Result.ConfidenceScore, high))
			}
		}
	})
}
