package semantic

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-5-sonnet-20241022"
	anthropicVersion        = "2023-06-01"
	defaultMaxTokens        = 2000
)

// AnthropicClient talks to Anthropic's messages API.
type AnthropicClient struct {
	model   string
	apiKey  string
	baseURL string
	transport
}

// NewAnthropicClient creates a client for the Anthropic messages API.
func NewAnthropicClient(cfg HTTPConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key required", ErrUnavailable)
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicClient{
		model:     model,
		apiKey:    cfg.APIKey,
		baseURL:   baseURLOr(cfg.BaseURL, defaultAnthropicBaseURL),
		transport: newTransport(cfg),
	}, nil
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Complete sends one messages request. The API has no JSON mode, so the
// system prompt alone constrains the output format.
func (a *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = a.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	system, turns := systemAndTurns(req.Messages)

	data, err := a.postJSON(ctx, a.baseURL+"/v1/messages", map[string]string{
		"X-API-Key":         a.apiKey,
		"Anthropic-Version": anthropicVersion,
	}, anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    turns,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("anthropic: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, fmt.Errorf("anthropic: failed to parse response: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return Response{Content: block.Text, Model: resp.Model}, nil
		}
	}
	return Response{}, fmt.Errorf("anthropic: %w", ErrEmptyResponse)
}

// Available reports whether the client has a credential.
func (a *AnthropicClient) Available() bool {
	return a.apiKey != ""
}

var _ Completer = (*AnthropicClient)(nil)
