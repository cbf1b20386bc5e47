package semantic

import (
	"fmt"

	"github.com/fyrsmithlabs/rfqd/internal/config"
	"github.com/fyrsmithlabs/rfqd/internal/logging"
	"github.com/fyrsmithlabs/rfqd/internal/redact"
)

// NewCompleter builds the Completer named by cfg.Provider. A disabled
// provider or a missing credential returns an error wrapping ErrUnavailable.
func NewCompleter(cfg config.BackendConfig) (Completer, error) {
	httpCfg := HTTPConfig{
		APIKey:    cfg.APIKey.Value(),
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		Timeout:   cfg.Timeout.Duration(),
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}

	var (
		c   Completer
		err error
	)
	switch cfg.Provider {
	case config.ProviderDisabled, "":
		return nil, fmt.Errorf("%w: provider disabled", ErrUnavailable)
	case config.ProviderMock:
		c = NewMockClient()
	case config.ProviderMistral:
		c, err = NewMistralClient(httpCfg)
	case config.ProviderOpenAI:
		c, err = NewOpenAIClient(httpCfg)
	case config.ProviderAnthropic:
		c, err = NewAnthropicClient(httpCfg)
	case config.ProviderOllama:
		c, err = NewOllamaClient(httpCfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		c = NewCachingCompleter(c, cfg.CacheTTL.Duration())
	}
	return c, nil
}

// NewFromConfig builds an Extractor with the backend, request settings and
// redaction described by cfg.
func NewFromConfig(cfg *config.Config, logger *logging.Logger) (*Extractor, error) {
	c, err := NewCompleter(cfg.Backend)
	if err != nil {
		return nil, err
	}

	opts := []ExtractorOption{
		WithRequestOptions(RequestOptions{
			Model:       cfg.Backend.Model,
			Temperature: cfg.Backend.Temperature,
			MaxTokens:   cfg.Backend.MaxTokens,
		}),
		WithTimeout(cfg.Backend.Timeout.Duration()),
		WithLogger(logger.Named("semantic")),
	}

	// The mock never leaves the process.
	if cfg.Redaction.Enabled && cfg.Backend.Provider != config.ProviderMock {
		allow, err := redact.LoadAllowlist(cfg.Redaction.AllowlistPath)
		if err != nil {
			return nil, fmt.Errorf("loading redaction allowlist: %w", err)
		}
		rc := redact.DefaultConfig()
		rc.Gitleaks = cfg.Redaction.Gitleaks
		rc.Allowlist = allow
		scrubber, err := redact.New(rc)
		if err != nil {
			return nil, fmt.Errorf("creating scrubber: %w", err)
		}
		opts = append(opts, WithScrubber(scrubber))
	}

	return NewExtractor(c, opts...)
}
