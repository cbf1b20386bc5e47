// Package mcp exposes the RFQ parser as Model Context Protocol tools.
//
// Tools:
//   - parse_rfq parses one free-text RFQ.
//   - parse_rfq_batch parses several, preserving input order.
//
// Results are returned as JSON text content in the same shape as the HTTP API.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/rfqd/internal/logging"
	"github.com/fyrsmithlabs/rfqd/internal/rfq"
)

// ErrInvalidInput marks tool arguments that cannot be parsed.
var ErrInvalidInput = errors.New("invalid input")

// Parser is the parsing facade the tools call.
type Parser interface {
	Parse(ctx context.Context, text string) *rfq.ParsedRequest
	ParseBatch(ctx context.Context, texts []string) []*rfq.ParsedRequest
}

// Server is an MCP server backed by the RFQ parser.
type Server struct {
	mcp     *mcp.Server
	parser  Parser
	metrics *Metrics
	logger  *logging.Logger
	config  *Config
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "rfqd")
	Name string

	// Version is the server version (default: "dev")
	Version string

	// MaxBatchSize caps parse_rfq_batch input (default: 100)
	MaxBatchSize int

	Logger  *logging.Logger
	Metrics *Metrics
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:         "rfqd",
		Version:      "dev",
		MaxBatchSize: 100,
		Logger:       logging.Nop(),
	}
}

// NewServer creates an MCP server and registers the parser tools.
func NewServer(cfg *Config, parser Parser) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if parser == nil {
		return nil, fmt.Errorf("parser is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultConfig().MaxBatchSize
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil, cfg.Logger)
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		parser:  parser,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		config:  cfg,
	}
	s.registerTools()
	return s, nil
}

// Run serves on the stdio transport until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// MCPServer returns the underlying SDK server, for custom transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}
