package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockExtract(t *testing.T, m *MockClient, text string) map[string]any {
	t.Helper()
	resp, err := m.Complete(context.Background(), BuildRequest(text, RequestOptions{Model: "mock", Temperature: 0.1}))
	require.NoError(t, err)
	p, err := DecodePayload(resp.Content)
	require.NoError(t, err)

	out := map[string]any{
		"direction":     p.Direction,
		"asset_class":   p.AssetClass,
		"currency_pair": p.CurrencyPair,
		"urgency":       p.Urgency,
		"tenor":         p.Tenor,
		"quantity_unit": p.QuantityUnit,
	}
	if p.Quantity != nil {
		out["quantity"] = *p.Quantity
	}
	return out
}

func TestMockClient_DefaultPayload(t *testing.T) {
	m := NewMockClient()
	resp, err := m.Complete(context.Background(), BuildRequest("hello", RequestOptions{}))
	require.NoError(t, err)

	p, err := DecodePayload(resp.Content)
	require.NoError(t, err)
	assert.Equal(t, "BUY", p.Direction)
	assert.Equal(t, "FX_SPOT", p.AssetClass)
	assert.Equal(t, "EUR/USD", p.CurrencyPair)
	assert.Equal(t, 1e7, *p.Quantity)
	assert.Equal(t, 0.95, *p.ConfidenceScore)
	assert.Equal(t, []string{"Parsed by MockClient"}, p.ParsingNotes)
}

func TestMockClient_Detection(t *testing.T) {
	m := NewMockClient()

	tests := []struct {
		text string
		want map[string]any
	}{
		{
			text: "Sell 5M USD/JPY urgent",
			want: map[string]any{"direction": "SELL", "currency_pair": "USD/JPY", "urgency": "IMMEDIATE", "quantity": 5e6, "quantity_unit": "M"},
		},
		{
			text: "Client wants to buy 10M EUR/USD 3M forward",
			want: map[string]any{"direction": "BUY", "asset_class": "FX_FORWARD", "tenor": "3M", "quantity": 1e7},
		},
		{
			text: "Two-way price in GBPUSD by eod",
			want: map[string]any{"direction": "TWO_WAY", "currency_pair": "GBP/USD", "urgency": "END_OF_DAY"},
		},
		{
			text: "Bid 250k AUDUSD",
			want: map[string]any{"direction": "BUY", "currency_pair": "AUD/USD", "quantity": 250000.0, "quantity_unit": "K", "asset_class": "FX_SPOT"},
		},
		{
			text: "Buy 10MM EURUSD 1 year",
			want: map[string]any{"tenor": "1Y", "asset_class": "FX_FORWARD", "quantity": 1e7, "quantity_unit": "MM"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := mockExtract(t, m, tt.text)
			for k, v := range tt.want {
				assert.Equal(t, v, got[k], k)
			}
		})
	}
}

func TestMockClient_CustomResponses(t *testing.T) {
	m := NewMockClient()
	m.SetResponse("SPECIAL", map[string]any{"direction": "SELL", "instrument": "XAU"})
	m.SetRawResponse("garbage", "not json at all")

	got := mockExtract(t, m, "this is a special request to buy")
	assert.Equal(t, "SELL", got["direction"])

	resp, err := m.Complete(context.Background(), BuildRequest("send garbage", RequestOptions{}))
	require.NoError(t, err)
	_, err = DecodePayload(resp.Content)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	m.SetResponse("special", map[string]any{"direction": "BUY"})
	got = mockExtract(t, m, "special")
	assert.Equal(t, "BUY", got["direction"])
}

func TestMockClient_SetError(t *testing.T) {
	m := NewMockClient()
	boom := errors.New("backend down")
	m.SetError(boom)

	_, err := m.Complete(context.Background(), BuildRequest("x", RequestOptions{}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, m.CallCount())

	m.SetError(nil)
	_, err = m.Complete(context.Background(), BuildRequest("x", RequestOptions{}))
	assert.NoError(t, err)
}

func TestMockClient_History(t *testing.T) {
	m := NewMockClient()
	_, ok := m.LastCall()
	assert.False(t, ok)

	for _, text := range []string{"first", "second"} {
		_, err := m.Complete(context.Background(), BuildRequest(text, RequestOptions{Model: "mistral-small", Temperature: 0.3}))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, m.CallCount())
	last, ok := m.LastCall()
	require.True(t, ok)
	assert.Equal(t, "mistral-small", last.Model)
	assert.Equal(t, 0.3, last.Temperature)
	assert.Equal(t, "Parse this RFQ:\n\nsecond", last.Messages[1].Content)
	assert.Len(t, m.Calls(), 2)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	assert.True(t, m.Available())
}

func TestMockClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMockClient()
	_, err := m.Complete(ctx, BuildRequest("x", RequestOptions{}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.CallCount())
}
