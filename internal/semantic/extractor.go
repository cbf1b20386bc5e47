package semantic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/rfqd/internal/logging"
	"github.com/fyrsmithlabs/rfqd/internal/redact"
	"github.com/fyrsmithlabs/rfqd/internal/rfq"
)

// Scrubber removes credentials from text before it leaves the process.
type Scrubber interface {
	Scrub(content string) *redact.Result
}

// Extractor adapts a Completer to rfq.SemanticExtractor.
type Extractor struct {
	completer Completer
	opts      RequestOptions
	timeout   time.Duration
	scrubber  Scrubber
	logger    *logging.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithRequestOptions sets the model settings sent with each request.
func WithRequestOptions(opts RequestOptions) ExtractorOption {
	return func(e *Extractor) { e.opts = opts }
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) { e.timeout = d }
}

// WithScrubber redacts text before it is sent.
func WithScrubber(s Scrubber) ExtractorOption {
	return func(e *Extractor) { e.scrubber = s }
}

// WithLogger sets the extractor's logger.
func WithLogger(l *logging.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor wraps c. A nil completer is reported as ErrUnavailable.
func NewExtractor(c Completer, opts ...ExtractorOption) (*Extractor, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: completer is nil", ErrUnavailable)
	}
	e := &Extractor{
		completer: c,
		opts:      RequestOptions{Temperature: 0.1, MaxTokens: defaultMaxTokens},
		timeout:   defaultTimeout,
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract sends text to the backend and decodes the structured payload.
// Exactly one attempt is made.
func (e *Extractor) Extract(ctx context.Context, text string) (*rfq.Payload, error) {
	if e.scrubber != nil {
		result := e.scrubber.Scrub(text)
		if result.HasFindings() {
			e.logger.Info(ctx, "backend.redacted",
				zap.Int("findings", result.TotalFindings),
				zap.Strings("rules", result.RuleIDs()))
		}
		text = result.Scrubbed
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.completer.Complete(ctx, BuildRequest(text, e.opts))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("backend timed out after %s: %w", e.timeout, err)
		}
		return nil, err
	}
	e.logger.Debug(ctx, "backend.complete",
		zap.String("model", resp.Model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("content_length", len(resp.Content)))

	return DecodePayload(resp.Content)
}

// Available reports whether the wrapped backend can be used.
func (e *Extractor) Available() bool {
	if a, ok := e.completer.(interface{ Available() bool }); ok {
		return a.Available()
	}
	return true
}

var _ rfq.SemanticExtractor = (*Extractor)(nil)
