// Rfqd is the RFQ parsing daemon.
//
// It serves the HTTP API (parse, batch, status, health, metrics) or, with
// -mcp, the parse_rfq and parse_rfq_batch MCP tools over stdio.
//
// Configuration is loaded from ~/.config/rfqd/config.yaml and RFQD_*
// environment variables. A .env file in the working directory is loaded
// first when present. See internal/config for details.
//
// Usage:
//
//	# Start the HTTP server with defaults
//	rfqd
//
//	# Pattern-only on another port
//	RFQD_PARSER_PRESET=fast RFQD_SERVER_PORT=9191 rfqd
//
//	# Serve MCP tools on stdio
//	rfqd -mcp
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/rfqd/internal/config"
	rfqhttp "github.com/fyrsmithlabs/rfqd/internal/http"
	"github.com/fyrsmithlabs/rfqd/internal/logging"
	"github.com/fyrsmithlabs/rfqd/internal/mcp"
	"github.com/fyrsmithlabs/rfqd/internal/services"
	"github.com/fyrsmithlabs/rfqd/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// options are the command-line settings.
type options struct {
	configPath string
	mcp        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/rfqd/config.yaml)")
	flag.BoolVar(&opts.mcp, "mcp", false, "serve MCP tools on stdio instead of HTTP")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  rfqd [-config path] [-mcp]   Start the rfqd daemon\n")
			fmt.Fprintf(os.Stderr, "  rfqd version                 Show version information\n")
			os.Exit(1)
		}
	}

	// Missing .env is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printVersion() {
	fmt.Printf("rfqd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires every component and blocks until ctx is cancelled.
//
//  1. Loads and validates configuration
//  2. Initializes telemetry, then the logger (which may export through it)
//  3. Builds the validator, semantic backend and parser
//  4. Serves HTTP or MCP stdio
//  5. Shuts down gracefully on context cancellation
func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()

	logger, err := initLogger(cfg, tel, opts.mcp)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting rfqd",
		zap.String("version", version),
		zap.String("preset", string(cfg.Parser.Preset)),
		zap.String("provider", cfg.Backend.Provider),
		zap.Bool("telemetry", tel.IsEnabled()))

	reg, err := services.Build(ctx, cfg, services.BuildOptions{
		Logger: logger,
		Tracer: tel.Tracer("github.com/fyrsmithlabs/rfqd/internal/rfq"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if opts.mcp {
		return runMCP(ctx, reg, logger)
	}
	return runHTTP(ctx, cfg, reg, tel, logger)
}

// initLogger builds the zap-backed logger. In MCP mode stdout carries the
// protocol, so log output is routed to stderr.
func initLogger(cfg *config.Config, tel *telemetry.Telemetry, stdio bool) (*logging.Logger, error) {
	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logCfg.Stderr = stdio
	if tel.IsEnabled() {
		logCfg.OTEL = true
	}
	return logging.NewLogger(logCfg, tel.LoggerProvider())
}

func runHTTP(ctx context.Context, cfg *config.Config, reg services.Registry, tel *telemetry.Telemetry, logger *logging.Logger) error {
	srv, err := rfqhttp.NewServer(reg.Parser(), logger.Named("http"), &rfqhttp.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Version: version,
	}, rfqhttp.WithTelemetry(tel))
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info(ctx, "server listening",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.String("parse_endpoint", "/api/v1/parse"),
		zap.String("metrics_endpoint", "/metrics"))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down",
		zap.Duration("timeout", cfg.Server.ShutdownTimeout.Duration()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, reg services.Registry, logger *logging.Logger) error {
	cfg := mcp.DefaultConfig()
	cfg.Version = version
	cfg.Logger = logger.Named("mcp")

	srv, err := mcp.NewServer(cfg, reg.Parser())
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// stdout carries the protocol.
	fmt.Fprintf(os.Stderr, "rfqd MCP stdio mode started (%s)\n", reg.Parser().Mode())
	return srv.Run(ctx)
}
