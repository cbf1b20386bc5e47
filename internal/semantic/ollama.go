package semantic

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "mistral"
)

// OllamaClient runs completions against a local Ollama server through
// langchaingo.
type OllamaClient struct {
	model string
	llm   llms.Model
}

// NewOllamaClient creates a client for an Ollama server. No credential is
// needed; an unreachable server surfaces as a per-call error. Output is not
// forced into JSON mode; DecodePayload rejects anything but one object.
func NewOllamaClient(cfg HTTPConfig) (*OllamaClient, error) {
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	opts := []ollama.Option{
		ollama.WithModel(model),
		ollama.WithServerURL(baseURLOr(cfg.BaseURL, defaultOllamaURL)),
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return &OllamaClient{model: model, llm: llm}, nil
}

// Complete sends one chat request to Ollama.
func (o *OllamaClient) Complete(ctx context.Context, req Request) (Response, error) {
	msgs := make([]llms.MessageContent, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := schema.ChatMessageTypeHuman
		if m.Role == RoleSystem {
			role = schema.ChatMessageTypeSystem
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}

	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	resp, err := o.llm.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return Response{}, fmt.Errorf("ollama: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return Response{}, fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}
	return Response{Content: resp.Choices[0].Content, Model: o.model}, nil
}

var _ Completer = (*OllamaClient)(nil)
