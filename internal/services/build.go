package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/rfqd/internal/config"
	"github.com/fyrsmithlabs/rfqd/internal/logging"
	"github.com/fyrsmithlabs/rfqd/internal/rfq"
	"github.com/fyrsmithlabs/rfqd/internal/semantic"
	"github.com/fyrsmithlabs/rfqd/internal/validation"
)

// BuildOptions carries the ambient dependencies shared by every component.
type BuildOptions struct {
	Logger *logging.Logger
	// Tracer defaults to the global provider.
	Tracer trace.Tracer
}

// Build creates the validator, the semantic extractor and the parser
// described by cfg.
//
// An unavailable backend (disabled provider, missing API key) is not an
// error: the parser starts pattern-only. Any other backend construction
// failure is returned.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	parserOpts := []rfq.Option{
		rfq.WithLogger(logger.Named("rfq")),
		rfq.WithWorkers(cfg.Parser.BatchWorkers),
		rfq.WithMinConfidence(cfg.Parser.MinConfidence),
		rfq.WithDefaultCurrency(cfg.Parser.DefaultCurrency),
		rfq.WithSideRecords(cfg.Parser.ExtractContacts, cfg.Parser.ExtractCompany, cfg.Parser.ExtractLineItems),
	}
	if opts.Tracer != nil {
		parserOpts = append(parserOpts, rfq.WithTracer(opts.Tracer))
	}

	var validator *validation.Validator
	if cfg.Validation.Enabled {
		v, err := validation.New(validation.Config{
			Strict:             cfg.Validation.Strict,
			MinNotional:        cfg.Validation.MinNotional,
			MaxNotional:        cfg.Validation.MaxNotional,
			CurrencyCodeLength: cfg.Validation.CurrencyCodeLength,
		})
		if err != nil {
			return nil, fmt.Errorf("creating validator: %w", err)
		}
		validator = v
		parserOpts = append(parserOpts, rfq.WithValidator(v))
	}

	var extractor *semantic.Extractor
	if cfg.Parser.SemanticEnabled() {
		ext, err := semantic.NewFromConfig(cfg, logger)
		switch {
		case errors.Is(err, semantic.ErrUnavailable):
			logger.Warn(ctx, "backend.unavailable",
				zap.String("provider", cfg.Backend.Provider),
				zap.Error(err))
		case err != nil:
			return nil, fmt.Errorf("creating semantic extractor: %w", err)
		default:
			extractor = ext
			parserOpts = append(parserOpts, rfq.WithSemantic(ext))
		}
	}

	parser := rfq.NewParser(parserOpts...)
	logger.Info(ctx, "parser.ready",
		zap.String("mode", parser.Mode().String()),
		zap.String("preset", string(cfg.Parser.Preset)),
		zap.Bool("validation", validator != nil))

	return NewRegistry(Options{
		Parser:    parser,
		Validator: validator,
		Extractor: extractor,
	}), nil
}
