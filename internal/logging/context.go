// internal/logging/context.go
package logging

import (
	"context"
	"regexp"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type requestCtxKey struct{}
type batchIndexCtxKey struct{}
type loggerCtxKey struct{}

const maxIDLen = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// ContextFields extracts correlation fields from ctx.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 4)

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	if idx, ok := BatchIndexFromContext(ctx); ok {
		fields = append(fields, zap.Int("rfq.batch_index", idx))
	}
	return fields
}

// WithRequestID attaches a request ID. IDs that are empty, too long, or
// contain characters outside [a-zA-Z0-9_.:-] are dropped so untrusted
// header values never reach the logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" || len(id) > maxIDLen || !idPattern.MatchString(id) {
		return ctx
	}
	return context.WithValue(ctx, requestCtxKey{}, id)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestCtxKey{}).(string)
	return id
}

// WithBatchIndex records the position of the item being parsed within a batch.
func WithBatchIndex(ctx context.Context, idx int) context.Context {
	return context.WithValue(ctx, batchIndexCtxKey{}, idx)
}

// BatchIndexFromContext returns the batch position, if any.
func BatchIndexFromContext(ctx context.Context) (int, bool) {
	idx, ok := ctx.Value(batchIndexCtxKey{}).(int)
	return idx, ok
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or a nop logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Nop()
}
