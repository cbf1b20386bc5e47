// Package logging provides structured logging for rfqd on top of Zap.
//
// # Overview
//
// The Logger wraps Zap with:
//   - a Trace level (-2, below Debug)
//   - stdout output, optionally teed into OpenTelemetry through the otelzap bridge
//   - correlation fields pulled from the context (trace_id, span_id, request.id, rfq.batch_index)
//   - field-name and value-pattern redaction in the encoder
//   - per-level sampling that never drops errors
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "req-42")
//	logger.Info(ctx, "parser.parse", zap.String("strategy", "pattern"))
//
// Event names are dotted (parser.fallback, backend.unavailable, http.request)
// so they can be filtered without parsing free text.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "parser.fallback", zap.Error(err))
//	tl.AssertLogged(t, zapcore.InfoLevel, "parser.fallback")
//
// Logger is safe for concurrent use. With and Named return independent children.
package logging
