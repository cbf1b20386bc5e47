package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with fresh flag values and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MISTRAL_API_KEY", "")

	serverURL = "http://localhost:9090"
	outputFormat = formatTable
	presetName = ""
	providerName = ""
	configPath = ""
	verbose = false
	samplesParse = false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

type parsedJSON struct {
	RawText         string   `json:"raw_text"`
	Direction       string   `json:"direction"`
	AssetClass      string   `json:"asset_class"`
	CurrencyPair    string   `json:"currency_pair"`
	Quantity        *float64 `json:"quantity"`
	ConfidenceScore float64  `json:"confidence_score"`
	ParsingNotes    []string `json:"parsing_notes"`
}

func TestRootCmd_Commands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
		assert.NotEmpty(t, cmd.Short, cmd.Name())
	}
	for _, want := range []string{"parse", "batch", "samples", "health"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestParseCmd_JSON(t *testing.T) {
	out, err := execute(t, "", "parse", "--preset", "fast", "-o", "json", "Buy", "10MM", "EUR/USD", "spot")
	require.NoError(t, err)

	var got parsedJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Buy 10MM EUR/USD spot", got.RawText)
	assert.Equal(t, "BUY", got.Direction)
	assert.Equal(t, "FX_SPOT", got.AssetClass)
	assert.Equal(t, "EUR/USD", got.CurrencyPair)
	require.NotNil(t, got.Quantity)
	assert.Equal(t, 1e7, *got.Quantity)
	assert.Equal(t, 1.0, got.ConfidenceScore)
	assert.Equal(t, []string{"Parsed using regex fallback (no LLM)"}, got.ParsingNotes)
}

func TestParseCmd_Stdin(t *testing.T) {
	out, err := execute(t, "Sell 25MM EUR/USD ASAP\n", "parse", "--preset", "fast", "-o", "json")
	require.NoError(t, err)

	var got parsedJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "SELL", got.Direction)
	assert.Equal(t, "Sell 25MM EUR/USD ASAP\n", got.RawText)
}

func TestParseCmd_Empty(t *testing.T) {
	_, err := execute(t, "   ", "parse", "--preset", "fast")
	assert.ErrorContains(t, err, "no RFQ text to parse")
}

func TestParseCmd_YAML(t *testing.T) {
	out, err := execute(t, "", "parse", "--preset", "fast", "-o", "yaml", "Buy 10MM EUR/USD spot")
	require.NoError(t, err)
	assert.Contains(t, out, "direction: BUY\n")
	assert.Contains(t, out, "asset_class: FX_SPOT\n")
	assert.Contains(t, out, "quantity: 10000000\n")
	assert.NotContains(t, out, `"direction"`)
}

func TestParseCmd_Table(t *testing.T) {
	out, err := execute(t, "", "parse", "--preset", "fast", "Buy 10MM EUR/USD spot")
	require.NoError(t, err)
	assert.Contains(t, out, "RFQ ")
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "EUR/USD")
	assert.Contains(t, out, "1.00 (high)")
	assert.Contains(t, out, "- Parsed using regex fallback (no LLM)")
}

func TestParseCmd_MockProvider(t *testing.T) {
	out, err := execute(t, "", "parse", "--provider", "mock", "-o", "json", "sell 5mm usd/jpy")
	require.NoError(t, err)

	var got parsedJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "SELL", got.Direction)
	assert.Equal(t, 0.95, got.ConfidenceScore)
	assert.NotContains(t, got.ParsingNotes, "Parsed using regex fallback (no LLM)")
}

func TestParseCmd_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"output", []string{"parse", "-o", "xml", "buy"}, "unknown output format"},
		{"preset", []string{"parse", "--preset", "turbo", "buy"}, "unknown preset"},
		{"provider", []string{"parse", "--provider", "carrier-pigeon", "buy"}, "not supported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBatchCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfqs.txt")
	require.NoError(t, os.WriteFile(path, []byte("Buy 10MM EURUSD\n\n  Sell 5MM GBPUSD  \nTwo-way on 20MM USDJPY\n"), 0o600))

	t.Run("file json", func(t *testing.T) {
		out, err := execute(t, "", "batch", "--preset", "fast", "-o", "json", path)
		require.NoError(t, err)

		var got struct {
			Count   int          `json:"count"`
			Results []parsedJSON `json:"results"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Equal(t, 3, got.Count)
		assert.Equal(t, "BUY", got.Results[0].Direction)
		assert.Equal(t, "SELL", got.Results[1].Direction)
		assert.Equal(t, "TWO_WAY", got.Results[2].Direction)
	})

	t.Run("stdin table", func(t *testing.T) {
		out, err := execute(t, "Buy 1MM EURUSD\nSell 2MM USDCHF\n", "batch", "--preset", "fast", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "2 request(s) parsed")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := execute(t, "\n\n", "batch", "--preset", "fast")
		assert.ErrorContains(t, err, "no RFQs to parse")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "", "batch", filepath.Join(t.TempDir(), "nope.txt"))
		assert.ErrorContains(t, err, "failed to read file")
	})
}

func TestSamplesCmd(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "", "samples", "-o", "json")
		require.NoError(t, err)

		var got []struct {
			Name   string      `json:"name"`
			Text   string      `json:"text"`
			Result *parsedJSON `json:"result"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 5)
		assert.Equal(t, "FX Spot (Buy)", got[0].Name)
		assert.Nil(t, got[0].Result)
	})

	t.Run("parse", func(t *testing.T) {
		out, err := execute(t, "", "samples", "--parse", "--preset", "fast", "-o", "json")
		require.NoError(t, err)

		var got []struct {
			Text   string      `json:"text"`
			Result *parsedJSON `json:"result"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 5)
		for _, s := range got {
			require.NotNil(t, s.Result)
			assert.Equal(t, s.Text, s.Result.RawText)
		}
	})

	t.Run("table", func(t *testing.T) {
		out, err := execute(t, "", "samples")
		require.NoError(t, err)
		assert.Contains(t, out, "Need a price on 5M GBP/USD 3M forward")
	})
}

func TestHealthCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/status" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.2.3","mode":"pattern_only","uptime":"5s","services":{"parser":"ok"}}`))
	}))
	defer srv.Close()

	t.Run("table", func(t *testing.T) {
		out, err := execute(t, "", "health", "--server", srv.URL)
		require.NoError(t, err)
		assert.Contains(t, out, "Server Status")
		assert.Contains(t, out, "pattern_only")
		assert.Contains(t, out, "1.2.3")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "", "health", "--server", srv.URL, "-o", "json")
		require.NoError(t, err)

		var got StatusResponse
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "ok", got.Status)
		assert.Equal(t, "pattern_only", got.Mode)
	})
}

func TestHealthCmd_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := execute(t, "", "health", "--server", srv.URL)
	assert.ErrorContains(t, err, "server returned status 500")
}

func TestToYAML_KeepsFieldOrder(t *testing.T) {
	out, err := toYAML(StatusResponse{Status: "ok", Version: "null", Mode: "pattern_only"})
	require.NoError(t, err)

	s := string(out)
	assert.Less(t, strings.Index(s, "status:"), strings.Index(s, "mode:"))
	// A string that reads as YAML null must stay quoted.
	assert.Contains(t, s, `version: "null"`)
}
