package logging

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fyrsmithlabs/rfqd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(NewDefaultConfig(), nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"
	_, err := NewLogger(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLogger_Levels(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tests := []struct {
		name  string
		log   func()
		level zapcore.Level
	}{
		{"trace", func() { tl.Trace(ctx, "trace message") }, TraceLevel},
		{"debug", func() { tl.Debug(ctx, "debug message") }, zapcore.DebugLevel},
		{"info", func() { tl.Info(ctx, "info message") }, zapcore.InfoLevel},
		{"warn", func() { tl.Warn(ctx, "warn message") }, zapcore.WarnLevel},
		{"error", func() { tl.Error(ctx, "error message") }, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl.Reset()
			tt.log()
			tl.AssertLogged(t, tt.level, tt.name+" message")
		})
	}
}

func TestLogger_ContextFields(t *testing.T) {
	tl := NewTestLogger()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithRequestID(ctx, "req-42")
	ctx = WithBatchIndex(ctx, 3)

	tl.Info(ctx, "parser.parse", zap.String("strategy", "pattern"))

	tl.AssertField(t, "parser.parse", "trace_id", traceID.String())
	tl.AssertField(t, "parser.parse", "span_id", spanID.String())
	tl.AssertField(t, "parser.parse", "request.id", "req-42")
	tl.AssertField(t, "parser.parse", "rfq.batch_index", int64(3))
	tl.AssertField(t, "parser.parse", "strategy", "pattern")
}

func TestWithRequestID_DropsInvalid(t *testing.T) {
	ctx := context.Background()

	for _, id := range []string{"", "has space", "<script>", string(make([]byte, maxIDLen+1))} {
		assert.Empty(t, RequestIDFromContext(WithRequestID(ctx, id)), "id %q", id)
	}
	assert.Equal(t, "abc-123_x.y:z", RequestIDFromContext(WithRequestID(ctx, "abc-123_x.y:z")))
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	tl := NewTestLogger()
	ctx := WithLogger(context.Background(), tl.Logger)
	FromContext(ctx).Info(ctx, "from context")
	assert.Equal(t, 1, tl.Count("from context"))
}

func TestLogger_WithAndNamed(t *testing.T) {
	tl := NewTestLogger()
	child := tl.With(zap.String("component", "parser")).Named("rfq")
	child.Info(context.Background(), "child")

	entries := tl.FilterMessage("child").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rfq", entries[0].LoggerName)
	assert.Equal(t, "parser", entries[0].ContextMap()["component"])
}

func TestLevelFromString(t *testing.T) {
	lvl, err := LevelFromString("trace")
	require.NoError(t, err)
	assert.Equal(t, TraceLevel, lvl)

	lvl, err = LevelFromString("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	_, err = LevelFromString("loud")
	assert.Error(t, err)
}

func TestFromSettings(t *testing.T) {
	cfg, err := FromSettings(config.LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level)
	assert.Equal(t, "console", cfg.Format)

	_, err = FromSettings(config.LoggingConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no outputs", func(c *Config) { c.Stdout = false }},
		{"zero tick", func(c *Config) { c.Sampling.Tick = 0 }},
		{"bad pattern", func(c *Config) { c.Redaction.Patterns = []string{"("} }},
		{"empty field key", func(c *Config) { c.Fields = map[string]string{"": "x"} }},
		{"empty field value", func(c *Config) { c.Fields = map[string]string{"k": ""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func newBufferedLogger(t *testing.T, redaction RedactionConfig) (*Logger, *bytes.Buffer) {
	t.Helper()
	enc, err := NewRedactingEncoder(newEncoder("json"), redaction)
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	core := zapcore.NewCore(enc, zapcore.AddSync(buf), zapcore.DebugLevel)
	return New(zap.New(core)), buf
}

func TestRedactingEncoder(t *testing.T) {
	logger, buf := newBufferedLogger(t, NewDefaultConfig().Redaction)
	ctx := context.Background()

	logger.Info(ctx, "backend.call",
		zap.String("api_key", "sk-abcdefghijklmnopqrstuvwxyz"),
		zap.String("Authorization", "Bearer abc.def"),
		zap.String("note", "Bearer xyz"),
		zap.String("pair", "EUR/USD"),
		Secret("key", config.Secret("hunter2")),
	)
	logger.With(zap.String("token", "t0k3n")).Info(ctx, "with")

	out := buf.String()
	assert.NotContains(t, out, "sk-abcdefghijklmnopqrstuvwxyz")
	assert.NotContains(t, out, "abc.def")
	assert.NotContains(t, out, "xyz")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "t0k3n")
	assert.Contains(t, out, `"pair":"EUR/USD"`)
	assert.Contains(t, out, `"key":"[REDACTED:7]"`)
	assert.Contains(t, out, "[REDACTED:pattern]")
}

func TestRedactingEncoder_Disabled(t *testing.T) {
	logger, buf := newBufferedLogger(t, RedactionConfig{})
	logger.Info(context.Background(), "plain", zap.String("api_key", "visible"))
	assert.Contains(t, buf.String(), "visible")
}

func TestNewRedactingEncoder_BadPattern(t *testing.T) {
	_, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{Enabled: true, Patterns: []string{"("}})
	assert.Error(t, err)
}

func TestSampledCore(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled: true,
		Tick:    time.Minute,
		Levels: map[zapcore.Level]LevelSampling{
			zapcore.InfoLevel: {Initial: 2, Thereafter: 0},
		},
	})
	logger := zap.New(sampled)

	for i := 0; i < 10; i++ {
		logger.Info("flood")
		logger.Warn("unsampled warn")
		logger.Error("never sampled")
	}

	assert.Equal(t, 2, observed.FilterMessage("flood").Len())
	assert.Equal(t, 10, observed.FilterMessage("unsampled warn").Len())
	assert.Equal(t, 10, observed.FilterMessage("never sampled").Len())
}

func TestSampledCore_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	assert.Equal(t, core, newSampledCore(core, SamplingConfig{}))
}
