package semantic

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	defaultMistralBaseURL = "https://api.mistral.ai"
	defaultOpenAIBaseURL  = "https://api.openai.com"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultMistralModel   = "mistral-large-latest"
)

// ChatClient talks to OpenAI-compatible chat completion APIs. Mistral and
// OpenAI share the request and response shape.
type ChatClient struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
	transport
}

// NewMistralClient creates a client for the Mistral chat API.
func NewMistralClient(cfg HTTPConfig) (*ChatClient, error) {
	if cfg.Model == "" {
		cfg.Model = defaultMistralModel
	}
	return newChatClient("mistral", baseURLOr(cfg.BaseURL, defaultMistralBaseURL), cfg)
}

// NewOpenAIClient creates a client for the OpenAI chat API.
func NewOpenAIClient(cfg HTTPConfig) (*ChatClient, error) {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	return newChatClient("openai", baseURLOr(cfg.BaseURL, defaultOpenAIBaseURL), cfg)
}

func newChatClient(provider, baseURL string, cfg HTTPConfig) (*ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s API key required", ErrUnavailable, provider)
	}
	return &ChatClient{
		provider:  provider,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		transport: newTransport(cfg),
	}, nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends one chat completion request.
func (c *ChatClient) Complete(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	body := chatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	data, err := c.postJSON(ctx, c.baseURL+"/v1/chat/completions", map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, body)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", c.provider, err)
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, fmt.Errorf("%s: failed to parse response: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, fmt.Errorf("%s: %w", c.provider, ErrEmptyResponse)
	}
	return Response{Content: resp.Choices[0].Message.Content, Model: resp.Model}, nil
}

// Available reports whether the client has a credential.
func (c *ChatClient) Available() bool {
	return c.apiKey != ""
}

var _ Completer = (*ChatClient)(nil)
