package semantic

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnavailable means the backend cannot be used at all, for example
	// because it is disabled or has no credential.
	ErrUnavailable = errors.New("semantic backend unavailable")

	// ErrMalformedPayload means the response was not a single JSON object
	// matching the payload schema.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrEmptyResponse means the backend answered without any content.
	ErrEmptyResponse = errors.New("empty response from API")
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral completion request.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider to constrain output to a JSON object.
	JSONMode bool
}

// Response is the text a backend produced.
type Response struct {
	Content string
	Model   string
}

// Completer performs a single chat completion.
//
// Implementations must be safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// httpStatusError reports a non-2xx backend response.
type httpStatusError struct {
	StatusCode int
	Message    string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from a backend error.
func StatusCode(err error) (int, bool) {
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// systemAndTurns splits the system prompt from the conversation turns for
// APIs that take it as a separate field.
func systemAndTurns(msgs []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
