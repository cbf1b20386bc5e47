package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temp dir and returns the rfqd config dir.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{"MISTRAL_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(name, "")
	}
	dir := filepath.Join(home, ".config", "rfqd")
	require.NoError(t, os.MkdirAll(dir, 0700))
	return dir
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, PresetDefault, cfg.Parser.Preset)
	assert.True(t, cfg.Parser.UseSemantic)
	assert.True(t, cfg.Parser.UsePatternFallback)
	assert.False(t, cfg.Parser.RegexOnly)
	assert.Equal(t, "USD", cfg.Parser.DefaultCurrency)
	assert.Equal(t, 0.8, cfg.Parser.HighConfidence)
	assert.Equal(t, ProviderMistral, cfg.Backend.Provider)
	assert.Equal(t, DefaultModel, cfg.Backend.Model)
	assert.Equal(t, 0.1, cfg.Backend.Temperature)
	assert.Equal(t, 2000, cfg.Backend.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout.Duration())
	assert.Equal(t, 1000.0, cfg.Validation.MinNotional)
	assert.Equal(t, 1e12, cfg.Validation.MaxNotional)
	assert.Equal(t, 3, cfg.Validation.CurrencyCodeLength)
	assert.NoError(t, cfg.Validate())
}

func TestForPreset(t *testing.T) {
	tests := []struct {
		preset        Preset
		semantic      bool
		temperature   float64
		minConfidence float64
	}{
		{PresetDefault, true, 0.1, 0},
		{PresetFast, false, 0.1, 0},
		{PresetAccurate, true, 0.05, 0.5},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			cfg, err := ForPreset(tt.preset)
			require.NoError(t, err)
			assert.Equal(t, tt.preset, cfg.Parser.Preset)
			assert.Equal(t, tt.semantic, cfg.Parser.SemanticEnabled())
			assert.Equal(t, tt.temperature, cfg.Backend.Temperature)
			assert.Equal(t, tt.minConfidence, cfg.Parser.MinConfidence)
			assert.Equal(t, 2000, cfg.Backend.MaxTokens)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := ForPreset("turbo")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown preset")
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"no workers", func(c *Config) { c.Parser.BatchWorkers = 0 }, "batch_workers"},
		{"min confidence", func(c *Config) { c.Parser.MinConfidence = 1.5 }, "min_confidence"},
		{"provider", func(c *Config) { c.Backend.Provider = "bard" }, "backend.provider"},
		{"temperature", func(c *Config) { c.Backend.Temperature = -1 }, "temperature"},
		{"max tokens", func(c *Config) { c.Backend.MaxTokens = 0 }, "max_tokens"},
		{"timeout", func(c *Config) { c.Backend.Timeout = 0 }, "timeout"},
		{"notional bounds", func(c *Config) { c.Validation.MaxNotional = 10 }, "notional bounds"},
		{"currency length", func(c *Config) { c.Validation.CurrencyCodeLength = 0 }, "currency_code_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	setupTestHome(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Parser, cfg.Parser)
	assert.False(t, cfg.Backend.APIKey.IsSet())
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `
server:
  port: 8088
parser:
  batch_workers: 8
backend:
  provider: ollama
  model: llama3
  timeout: 5s
validation:
  strict: true
`, 0600)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Parser.BatchWorkers)
	assert.Equal(t, ProviderOllama, cfg.Backend.Provider)
	assert.Equal(t, "llama3", cfg.Backend.Model)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout.Duration())
	assert.True(t, cfg.Validation.Strict)
	// Untouched fields keep their defaults.
	assert.Equal(t, 2000, cfg.Backend.MaxTokens)
}

func TestLoad_PresetFromFileThenOverride(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `
parser:
  preset: accurate
  min_confidence: 0.7
`, 0600)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, PresetAccurate, cfg.Parser.Preset)
	assert.Equal(t, 0.05, cfg.Backend.Temperature)
	assert.Equal(t, 0.7, cfg.Parser.MinConfidence)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "server:\n  port: 8088\n", 0600)

	t.Setenv("RFQD_SERVER_PORT", "7070")
	t.Setenv("RFQD_PARSER_PRESET", "fast")
	t.Setenv("RFQD_BACKEND_API_KEY", "sk-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Parser.RegexOnly)
	assert.False(t, cfg.Parser.SemanticEnabled())
	assert.Equal(t, "sk-from-env", cfg.Backend.APIKey.Value())
}

func TestLoad_ProviderKeyFallback(t *testing.T) {
	setupTestHome(t)
	t.Setenv("MISTRAL_API_KEY", "mistral-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mistral-key", cfg.Backend.APIKey.Value())
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "server: [unclosed", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoad_ValidationFailure(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "backend:\n  provider: bard\n", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoad_PathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)

	for _, path := range []string{
		"/tmp/rfqd.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "rfqd", "..", "..", "evil.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "rfqd-other", "config.yaml"),
	} {
		t.Run(path, func(t *testing.T) {
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "must be in ~/.config/rfqd/ or /etc/rfqd/")
		})
	}
}

func TestLoad_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission model differs on windows")
	}

	for _, perm := range []os.FileMode{0644, 0666, 0640} {
		t.Run(fmt.Sprintf("reject %o", perm), func(t *testing.T) {
			dir := setupTestHome(t)
			path := writeConfig(t, dir, "server:\n  port: 8088\n", perm)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "insecure config file permissions")
		})
	}

	for _, perm := range []os.FileMode{0600, 0400} {
		t.Run(fmt.Sprintf("accept %o", perm), func(t *testing.T) {
			dir := setupTestHome(t)
			path := writeConfig(t, dir, "server:\n  port: 8088\n", perm)
			_, err := Load(path)
			require.NoError(t, err)
		})
	}
}

func TestLoad_FileTooLarge(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "# "+strings.Repeat("x", maxConfigFileSize+1)+"\n", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file too large")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "backend.api_key", envKey("RFQD_BACKEND_API_KEY"))
	assert.Equal(t, "validation.min_notional", envKey("RFQD_VALIDATION_MIN_NOTIONAL"))
	assert.Equal(t, "server.port", envKey("RFQD_SERVER_PORT"))
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("sk-live-123")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-live-123", s.Value())

	data, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"[REDACTED]"}`, string(data))

	assert.Equal(t, "", Secret("").String())
	assert.False(t, Secret("").IsSet())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
