package semantic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/rfqd/internal/rfq"
)

type ollamaChatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newOllamaServer(t *testing.T, content string, got *ollamaChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}

		body, err := json.Marshal(map[string]any{
			"model":      "mistral",
			"created_at": "2024-01-01T00:00:00Z",
			"message":    map[string]string{"role": "assistant", "content": content},
			"done":       true,
		})
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write(append(body, '\n'))
	}))
}

func TestOllamaClient_Complete(t *testing.T) {
	var got ollamaChatRequest
	server := newOllamaServer(t, `{"direction":"BUY"}`, &got)
	defer server.Close()

	client, err := NewOllamaClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), BuildRequest("Buy 10M EUR/USD", RequestOptions{
		Temperature: 0.1,
		MaxTokens:   2000,
	}))
	require.NoError(t, err)
	assert.Equal(t, `{"direction":"BUY"}`, resp.Content)
	assert.Equal(t, defaultOllamaModel, resp.Model)

	assert.Equal(t, defaultOllamaModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Contains(t, got.Messages[1].Content, "Buy 10M EUR/USD")
}

func TestOllamaClient_EmptyResponse(t *testing.T) {
	server := newOllamaServer(t, "", nil)
	defer server.Close()

	client, err := NewOllamaClient(HTTPConfig{BaseURL: server.URL, Model: "llama3"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), BuildRequest("Buy 10M EUR/USD", RequestOptions{}))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOllamaClient_UnreachableFallsBack(t *testing.T) {
	server := newOllamaServer(t, `{"direction":"BUY"}`, nil)
	url := server.URL
	server.Close()

	client, err := NewOllamaClient(HTTPConfig{BaseURL: url})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), BuildRequest("Buy 10M EUR/USD", RequestOptions{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama:")

	e, err := NewExtractor(client)
	require.NoError(t, err)
	p := rfq.NewParser(rfq.WithSemantic(e))
	require.Equal(t, rfq.ModeSemanticWithFallback, p.Mode())

	req := p.Parse(context.Background(), "Sell 5M USD/JPY")
	assert.Equal(t, rfq.DirectionSell, req.Direction)
	require.NotEmpty(t, req.ParsingNotes)
	var fellBack bool
	for _, note := range req.ParsingNotes {
		if strings.HasPrefix(note, "LLM parsing failed: ") && strings.HasSuffix(note, "Used regex fallback.") {
			fellBack = true
		}
	}
	assert.True(t, fellBack, "notes: %v", req.ParsingNotes)
}
