// Package http provides the rfqd HTTP API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/rfqd/internal/logging"
	"github.com/fyrsmithlabs/rfqd/internal/rfq"
	"github.com/fyrsmithlabs/rfqd/internal/telemetry"
)

// Parser is the parsing facade the server exposes.
type Parser interface {
	Parse(ctx context.Context, text string) *rfq.ParsedRequest
	ParseBatch(ctx context.Context, texts []string) []*rfq.ParsedRequest
	Mode() rfq.Mode
}

// Server provides HTTP endpoints for rfqd.
type Server struct {
	echo      *echo.Echo
	parser    Parser
	logger    *logging.Logger
	config    *Config
	telemetry *telemetry.Telemetry
	started   time.Time
}

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	Version      string
	MaxBatchSize int
	// BodyLimit uses echo's size syntax, e.g. "1M".
	BodyLimit string
}

const (
	defaultMaxBatchSize = 100
	defaultBodyLimit    = "1M"
)

// Option configures a Server.
type Option func(*Server)

// WithTelemetry reports tel on the status endpoint and records HTTP metrics
// on its meter provider.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(s *Server) { s.telemetry = tel }
}

// NewServer creates a new HTTP server.
func NewServer(parser Parser, logger *logging.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if parser == nil {
		return nil, fmt.Errorf("parser cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 9090}
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaultMaxBatchSize
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = defaultBodyLimit
	}

	s := &Server{
		parser:  parser,
		logger:  logger,
		config:  cfg,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	var metrics *HTTPMetrics
	if s.telemetry != nil {
		metrics = NewHTTPMetrics(s.telemetry.Meter(httpInstrumentationName), logger)
	} else {
		metrics = NewHTTPMetrics(nil, logger)
	}

	e.Use(metrics.MetricsMiddleware())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(s.requestLogger)

	s.echo = e
	s.registerRoutes()
	return s, nil
}

// requestLogger attaches the request ID to the context and logs each request.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
		c.SetRequest(req.WithContext(ctx))

		if err := next(c); err != nil {
			c.Error(err)
		}

		s.logger.Info(ctx, "http.request",
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
	v1.POST("/parse", s.handleParse)
	v1.POST("/parse/batch", s.handleParseBatch)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(c echo.Context) error {
	mode := s.parser.Mode()
	backend := "available"
	if mode == rfq.ModePatternOnly {
		backend = "disabled"
	}

	resp := StatusResponse{
		Status:  "ok",
		Version: s.config.Version,
		Mode:    mode.String(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Services: map[string]string{
			"parser":  "ok",
			"backend": backend,
		},
	}
	if s.telemetry != nil {
		health := s.telemetry.Health()
		resp.Telemetry = &health
		if health.Degraded {
			resp.Status = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// handleParse parses one RFQ. Parsing itself never fails; only a malformed
// body is rejected. Blank text yields an UNKNOWN result with zero confidence.
func (s *Server) handleParse(c echo.Context) error {
	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid parse request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	return c.JSON(http.StatusOK, s.parser.Parse(c.Request().Context(), req.Text))
}

func (s *Server) handleParseBatch(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid batch request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	texts := req.Texts
	if len(texts) == 0 && req.Text != "" {
		texts = rfq.SplitLines(req.Text)
	}
	if len(texts) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "texts or text field is required")
	}
	if len(texts) > s.config.MaxBatchSize {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("batch of %d exceeds limit of %d", len(texts), s.config.MaxBatchSize))
	}

	results := s.parser.ParseBatch(c.Request().Context(), texts)
	return c.JSON(http.StatusOK, BatchResponse{Count: len(results), Results: results})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
