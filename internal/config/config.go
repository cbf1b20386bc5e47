// Package config provides configuration loading for rfqd.
//
// Configuration is layered: compiled defaults, then a parser preset, then an
// optional YAML file, then RFQD_-prefixed environment variables. The result
// is an immutable snapshot handed to every component at construction time.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Preset names a bundle of parser settings.
type Preset string

const (
	PresetDefault  Preset = "default"
	PresetFast     Preset = "fast"
	PresetAccurate Preset = "accurate"
)

// Backend provider names.
const (
	ProviderMistral   = "mistral"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderMock      = "mock"
	ProviderDisabled  = "disabled"
)

// DefaultModel is the semantic backend model used when none is configured.
const DefaultModel = "mistral-large-latest"

// Config holds the complete rfqd configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Parser     ParserConfig     `koanf:"parser"`
	Backend    BackendConfig    `koanf:"backend"`
	Validation ValidationConfig `koanf:"validation"`
	Redaction  RedactionConfig  `koanf:"redaction"`
	Logging    LoggingConfig    `koanf:"logging"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// ParserConfig controls strategy selection and result shaping.
type ParserConfig struct {
	Preset             Preset  `koanf:"preset"`
	UseSemantic        bool    `koanf:"use_semantic"`
	UsePatternFallback bool    `koanf:"use_pattern_fallback"`
	RegexOnly          bool    `koanf:"regex_only"`
	BatchWorkers       int     `koanf:"batch_workers"`
	MinConfidence      float64 `koanf:"min_confidence"`
	HighConfidence     float64 `koanf:"high_confidence"`
	ExtractContacts    bool    `koanf:"extract_contacts"`
	ExtractCompany     bool    `koanf:"extract_company"`
	ExtractLineItems   bool    `koanf:"extract_line_items"`
	DefaultCurrency    string  `koanf:"default_currency"`
}

// SemanticEnabled reports whether the parser should try the semantic backend.
func (p ParserConfig) SemanticEnabled() bool {
	return p.UseSemantic && !p.RegexOnly
}

// BackendConfig configures the semantic extraction backend.
type BackendConfig struct {
	Provider     string   `koanf:"provider"`
	Model        string   `koanf:"model"`
	APIKey       Secret   `koanf:"api_key"`
	BaseURL      string   `koanf:"base_url"`
	Temperature  float64  `koanf:"temperature"`
	MaxTokens    int      `koanf:"max_tokens"`
	Timeout      Duration `koanf:"timeout"`
	RateLimit    float64  `koanf:"rate_limit"` // requests per second
	Burst        int      `koanf:"burst"`
	CacheEnabled bool     `koanf:"cache_enabled"`
	CacheTTL     Duration `koanf:"cache_ttl"`
}

// ValidationConfig configures the rule-based validator run after assembly.
type ValidationConfig struct {
	Enabled            bool    `koanf:"enabled"`
	Strict             bool    `koanf:"strict"`
	MinNotional        float64 `koanf:"min_notional"`
	MaxNotional        float64 `koanf:"max_notional"`
	CurrencyCodeLength int     `koanf:"currency_code_length"`
}

// RedactionConfig controls secret scrubbing of text sent to remote backends.
type RedactionConfig struct {
	Enabled       bool   `koanf:"enabled"`
	Gitleaks      bool   `koanf:"gitleaks"`
	AllowlistPath string `koanf:"allowlist_path"`
}

// LoggingConfig is the subset of logging settings exposed to operators.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig is the subset of OpenTelemetry settings exposed to operators.
type TelemetryConfig struct {
	Enabled    bool    `koanf:"enabled"`
	Endpoint   string  `koanf:"endpoint"`
	Protocol   string  `koanf:"protocol"`
	Insecure   bool    `koanf:"insecure"`
	SampleRate float64 `koanf:"sample_rate"`
}

// Default returns the "default" preset configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9090,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Parser: ParserConfig{
			Preset:             PresetDefault,
			UseSemantic:        true,
			UsePatternFallback: true,
			BatchWorkers:       4,
			MinConfidence:      0,
			HighConfidence:     0.8,
			ExtractContacts:    true,
			ExtractCompany:     true,
			ExtractLineItems:   true,
			DefaultCurrency:    "USD",
		},
		Backend: BackendConfig{
			Provider:    ProviderMistral,
			Model:       DefaultModel,
			Temperature: 0.1,
			MaxTokens:   2000,
			Timeout:     Duration(30 * time.Second),
			RateLimit:   1,
			Burst:       5,
			CacheTTL:    Duration(15 * time.Minute),
		},
		Validation: ValidationConfig{
			Enabled:            true,
			MinNotional:        1000,
			MaxNotional:        1e12,
			CurrencyCodeLength: 3,
		},
		Redaction: RedactionConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Endpoint:   "localhost:4317",
			Protocol:   "grpc",
			Insecure:   true,
			SampleRate: 1.0,
		},
	}
}

// ForPreset returns the default configuration with the named preset applied.
func ForPreset(p Preset) (*Config, error) {
	cfg := Default()
	if err := cfg.ApplyPreset(p); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyPreset overwrites the parser and backend settings a preset controls.
func (c *Config) ApplyPreset(p Preset) error {
	switch p {
	case "", PresetDefault:
		c.Parser.Preset = PresetDefault
	case PresetFast:
		c.Parser.Preset = PresetFast
		c.Parser.UseSemantic = false
		c.Parser.RegexOnly = true
	case PresetAccurate:
		c.Parser.Preset = PresetAccurate
		c.Backend.Temperature = 0.05
		c.Parser.MinConfidence = 0.5
	default:
		return fmt.Errorf("unknown preset %q (expected default, fast, or accurate)", p)
	}
	return nil
}

// providerKeyEnv maps providers to the conventional env var holding their key.
var providerKeyEnv = map[string]string{
	ProviderMistral:   "MISTRAL_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// ApplyProviderKey fills Backend.APIKey from the provider's conventional
// environment variable when no key was configured explicitly.
func (c *Config) ApplyProviderKey() {
	if c.Backend.APIKey.IsSet() {
		return
	}
	if name, ok := providerKeyEnv[c.Backend.Provider]; ok {
		c.Backend.APIKey = Secret(os.Getenv(name))
	}
}

// Validate checks the configuration for values no component can run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Parser.BatchWorkers < 1 {
		errs = append(errs, fmt.Errorf("parser.batch_workers must be at least 1, got %d", c.Parser.BatchWorkers))
	}
	if c.Parser.MinConfidence < 0 || c.Parser.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("parser.min_confidence must be in [0,1], got %g", c.Parser.MinConfidence))
	}
	if c.Parser.HighConfidence < 0 || c.Parser.HighConfidence > 1 {
		errs = append(errs, fmt.Errorf("parser.high_confidence must be in [0,1], got %g", c.Parser.HighConfidence))
	}

	switch c.Backend.Provider {
	case ProviderMistral, ProviderOpenAI, ProviderAnthropic, ProviderOllama, ProviderMock, ProviderDisabled:
	default:
		errs = append(errs, fmt.Errorf("backend.provider %q is not supported", c.Backend.Provider))
	}
	if c.Backend.Temperature < 0 || c.Backend.Temperature > 2 {
		errs = append(errs, fmt.Errorf("backend.temperature must be in [0,2], got %g", c.Backend.Temperature))
	}
	if c.Backend.MaxTokens <= 0 {
		errs = append(errs, errors.New("backend.max_tokens must be positive"))
	}
	if c.Backend.Timeout.Duration() <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if c.Backend.RateLimit <= 0 {
		errs = append(errs, errors.New("backend.rate_limit must be positive"))
	}

	if c.Validation.MinNotional < 0 || c.Validation.MaxNotional <= c.Validation.MinNotional {
		errs = append(errs, fmt.Errorf("validation notional bounds invalid: min=%g max=%g",
			c.Validation.MinNotional, c.Validation.MaxNotional))
	}
	if c.Validation.CurrencyCodeLength <= 0 {
		errs = append(errs, errors.New("validation.currency_code_length must be positive"))
	}

	return errors.Join(errs...)
}
