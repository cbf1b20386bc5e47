package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// MockCall records one Complete invocation.
type MockCall struct {
	Model       string
	Messages    []Message
	Temperature float64
}

type mockRule struct {
	pattern string
	payload map[string]any
	raw     string
	isRaw   bool
}

// MockClient is an in-process Completer for tests and offline demos. It
// answers with canned payloads, falling back to keyword detection over the
// RFQ text.
type MockClient struct {
	mu             sync.Mutex
	defaultPayload map[string]any
	rules          []mockRule
	err            error
	calls          []MockCall
}

// NewMockClient returns a mock with the standard default payload.
func NewMockClient() *MockClient {
	return &MockClient{defaultPayload: DefaultMockPayload()}
}

// DefaultMockPayload is the base response before keyword detection.
func DefaultMockPayload() map[string]any {
	return map[string]any{
		"direction":        "BUY",
		"asset_class":      "FX_SPOT",
		"instrument":       "EURUSD",
		"quantity":         10000000.0,
		"quantity_unit":    "MM",
		"currency_pair":    "EUR/USD",
		"urgency":          "NORMAL",
		"confidence_score": 0.95,
		"parsing_notes":    []string{"Parsed by MockClient"},
	}
}

// SetDefault replaces the base payload.
func (m *MockClient) SetDefault(payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPayload = maps.Clone(payload)
}

// SetResponse returns payload verbatim for any RFQ containing substring,
// compared case-insensitively. Rules are checked in the order they were set.
func (m *MockClient) SetResponse(substring string, payload map[string]any) {
	m.setRule(mockRule{pattern: strings.ToLower(substring), payload: payload})
}

// SetRawResponse returns raw as the completion content for any RFQ
// containing substring.
func (m *MockClient) SetRawResponse(substring, raw string) {
	m.setRule(mockRule{pattern: strings.ToLower(substring), raw: raw, isRaw: true})
}

func (m *MockClient) setRule(rule mockRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].pattern == rule.pattern {
			m.rules[i] = rule
			return
		}
	}
	m.rules = append(m.rules, rule)
}

// SetError makes every call fail with err. A nil err clears it.
func (m *MockClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Complete records the call and returns the matching canned response.
func (m *MockClient) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	m.calls = append(m.calls, MockCall{
		Model:       req.Model,
		Messages:    append([]Message(nil), req.Messages...),
		Temperature: req.Temperature,
	})
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return Response{}, err
	}

	text := strings.ToLower(strings.TrimPrefix(firstUserMessage(req.Messages), userPromptPrefix))
	for _, rule := range m.rules {
		if !strings.Contains(text, rule.pattern) {
			continue
		}
		m.mu.Unlock()
		if rule.isRaw {
			return Response{Content: rule.raw, Model: req.Model}, nil
		}
		return m.encode(req.Model, rule.payload)
	}
	payload := detect(text, maps.Clone(m.defaultPayload))
	m.mu.Unlock()

	return m.encode(req.Model, payload)
}

func (m *MockClient) encode(model string, payload map[string]any) (Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("mock: encoding payload: %w", err)
	}
	return Response{Content: string(data), Model: model}, nil
}

// Available always reports true.
func (m *MockClient) Available() bool {
	return true
}

// CallCount returns the number of Complete calls.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent call.
func (m *MockClient) LastCall() (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return MockCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// Calls returns a copy of the call history.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// Reset clears the call history, canned responses and forced error.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.rules = nil
	m.err = nil
}

func firstUserMessage(msgs []Message) string {
	for _, msg := range msgs {
		if msg.Role == RoleUser {
			return msg.Content
		}
	}
	return ""
}

var (
	mockAmountRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(mm|mio|bn|m|k|b)?\b`)
	mockTenorRe  = regexp.MustCompile(`\b(\d+)\s*(months?|years?|weeks?|days?|m|y|w|d)\b`)

	mockPairs = []string{"eurusd", "gbpusd", "usdjpy", "usdchf", "audusd", "nzdusd", "usdcad"}

	mockMultipliers = map[string]float64{
		"k": 1e3, "m": 1e6, "mm": 1e6, "mio": 1e6, "b": 1e9, "bn": 1e9,
	}
)

// detect fills payload from keywords in lowercased text.
func detect(text string, payload map[string]any) map[string]any {
	switch {
	case containsAny(text, "sell", "offer", "short"):
		payload["direction"] = "SELL"
	case containsAny(text, "buy", "bid", "long"):
		payload["direction"] = "BUY"
	case containsAny(text, "two-way", "2-way", "both"):
		payload["direction"] = "TWO_WAY"
	}

	switch {
	case containsAny(text, "urgent", "asap", "immediately"):
		payload["urgency"] = "IMMEDIATE"
	case containsAny(text, "eod", "end of day"):
		payload["urgency"] = "END_OF_DAY"
	}

	for _, pair := range mockPairs {
		if strings.Contains(text, pair) || strings.Contains(text, pair[:3]+"/"+pair[3:]) {
			payload["currency_pair"] = strings.ToUpper(pair[:3] + "/" + pair[3:])
			payload["instrument"] = strings.ToUpper(pair)
			break
		}
	}

	amountStart := -1
	if loc := mockAmountRe.FindStringSubmatchIndex(text); loc != nil {
		amountStart = loc[0]
		amount, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64)
		if err == nil {
			unit := ""
			if loc[4] >= 0 {
				unit = text[loc[4]:loc[5]]
			}
			if mult, ok := mockMultipliers[unit]; ok {
				amount *= mult
			}
			payload["quantity"] = amount
			payload["quantity_unit"] = strings.ToUpper(unit)
		}
	}

	// The amount itself ("10m") also looks like a tenor, so skip it.
	for _, loc := range mockTenorRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] == amountStart {
			continue
		}
		payload["tenor"] = text[loc[2]:loc[3]] + strings.ToUpper(text[loc[4]:loc[4]+1])
		payload["asset_class"] = "FX_FORWARD"
		break
	}

	return payload
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

var _ Completer = (*MockClient)(nil)
