package rfq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/rfqd/internal/logging"
)

const instrumentationName = "github.com/fyrsmithlabs/rfqd/internal/rfq"

// DefaultBatchWorkers bounds ParseBatch parallelism when no worker count is set.
const DefaultBatchWorkers = 4

// Mode is the parser's steady state, fixed at construction.
type Mode int

const (
	ModePatternOnly Mode = iota
	ModeSemanticWithFallback
)

func (m Mode) String() string {
	if m == ModeSemanticWithFallback {
		return "semantic_with_fallback"
	}
	return "pattern_only"
}

// IDGenerator returns a new request identifier.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Availability is implemented by semantic extractors that can report, once,
// whether they are usable.
type Availability interface {
	Available() bool
}

var errEmptyPayload = errors.New("backend returned no payload")

// Option configures a Parser.
type Option func(*Parser)

// WithSemantic enables the semantic path. A nil extractor, or one reporting
// itself unavailable, leaves the parser in pattern-only mode.
func WithSemantic(s SemanticExtractor) Option {
	return func(p *Parser) { p.semantic = s }
}

// WithValidator post-checks every result.
func WithValidator(v Validator) Option {
	return func(p *Parser) { p.assembler.validator = v }
}

// WithIDGenerator replaces the uuid request ID source.
func WithIDGenerator(gen IDGenerator) Option {
	return func(p *Parser) {
		if gen != nil {
			p.newID = gen
		}
	}
}

// WithClock sets the timestamp source.
func WithClock(c Clock) Option {
	return func(p *Parser) {
		if c != nil {
			p.now = c
		}
	}
}

// WithLogger sets the parser logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTracer sets the tracer for parse spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Parser) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithWorkers bounds batch parallelism. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithMinConfidence notes results scoring below threshold.
func WithMinConfidence(threshold float64) Option {
	return func(p *Parser) { p.assembler.minConfidence = threshold }
}

// WithDefaultCurrency fills notional_currency when a notional arrives without one.
func WithDefaultCurrency(ccy string) Option {
	return func(p *Parser) { p.assembler.defaultCurrency = ccy }
}

// WithSideRecords selects which side records are taken from semantic payloads.
func WithSideRecords(contacts, company, lineItems bool) Option {
	return func(p *Parser) {
		p.assembler.extractContacts = contacts
		p.assembler.extractCompany = company
		p.assembler.extractLineItems = lineItems
	}
}

// Parser is the entry point for turning RFQ text into ParsedRequests.
// It is safe for concurrent use.
type Parser struct {
	mode      Mode
	patterns  *PatternExtractor
	semantic  SemanticExtractor
	assembler Assembler
	newID     IDGenerator
	now       Clock
	logger    *logging.Logger
	tracer    trace.Tracer
	workers   int
}

// NewParser resolves the parser mode once. A semantic extractor that is
// missing or unavailable downgrades the parser to pattern-only for its
// lifetime.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		patterns: NewPatternExtractor(),
		newID:    uuid.NewString,
		now:      time.Now,
		logger:   logging.Nop(),
		tracer:   otel.Tracer(instrumentationName),
		workers:  DefaultBatchWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.mode = ModePatternOnly
	if p.semantic != nil {
		if a, ok := p.semantic.(Availability); ok && !a.Available() {
			p.logger.Warn(context.Background(), "backend.unavailable",
				zap.String("mode", ModePatternOnly.String()))
			p.semantic = nil
		} else {
			p.mode = ModeSemanticWithFallback
		}
	}
	return p
}

// Mode reports the steady state chosen at construction.
func (p *Parser) Mode() Mode {
	return p.mode
}

// Parse never fails. Backend and validation problems are recorded in the
// result's parsing notes.
func (p *Parser) Parse(ctx context.Context, text string) *ParsedRequest {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "rfq.parse", trace.WithAttributes(
		attribute.Int("rfq.text_length", len(text)),
		attribute.String("rfq.mode", p.mode.String()),
	))
	defer span.End()

	req := newParsedRequest(text, p.newID(), p.now())
	n := Normalize(text)

	strategy := StrategyPattern
	if p.mode == ModeSemanticWithFallback && n.Trimmed != "" {
		payload, err := p.extractSemantic(ctx, text)
		if err == nil {
			p.assembler.FromSemantic(ctx, req, payload)
			strategy = StrategySemantic
		} else {
			p.assembler.FromPattern(ctx, req, p.patterns.Extract(n))
			req.AddNote(fmt.Sprintf("LLM parsing failed: %v. Used regex fallback.", err))
			strategy = StrategyFallback

			FallbacksTotal.Inc()
			span.RecordError(err)
			p.logger.Warn(ctx, "parser.fallback", zap.String("rfq.id", req.ID), zap.Error(err))
		}
	} else {
		p.assembler.FromPattern(ctx, req, p.patterns.Extract(n))
	}

	ParsesTotal.WithLabelValues(strategy).Inc()
	ParseDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("rfq.id", req.ID),
		attribute.String("rfq.strategy", strategy),
		attribute.Float64("rfq.confidence", req.ConfidenceScore),
	)
	p.logger.Debug(ctx, "parser.parsed",
		zap.String("rfq.id", req.ID),
		zap.String("strategy", strategy),
		zap.Float64("confidence", req.ConfidenceScore),
	)
	return req
}

// extractSemantic makes the single backend attempt for one call.
func (p *Parser) extractSemantic(ctx context.Context, text string) (payload *Payload, err error) {
	ctx, span := p.tracer.Start(ctx, "rfq.semantic_extract")
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	payload, err = p.semantic.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errEmptyPayload
	}
	return payload, nil
}

// ParseBatch parses texts with bounded parallelism. Results keep input
// order and each equals what Parse would return for that text alone.
func (p *Parser) ParseBatch(ctx context.Context, texts []string) []*ParsedRequest {
	ctx, span := p.tracer.Start(ctx, "rfq.parse_batch", trace.WithAttributes(
		attribute.Int("rfq.batch_size", len(texts)),
		attribute.Int("rfq.workers", p.workers),
	))
	defer span.End()

	results := make([]*ParsedRequest, len(texts))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, text := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.Parse(logging.WithBatchIndex(ctx, i), text)
		}()
	}
	wg.Wait()

	p.logger.Info(ctx, "parser.batch_complete", zap.Int("count", len(texts)))
	return results
}
