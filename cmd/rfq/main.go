// Package main implements the rfq CLI: parse RFQ text locally and check a
// running rfqd server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/rfqd/internal/config"
	"github.com/fyrsmithlabs/rfqd/internal/logging"
	"github.com/fyrsmithlabs/rfqd/internal/rfq"
	"github.com/fyrsmithlabs/rfqd/internal/services"
)

var (
	// serverURL is the base URL for the rfqd HTTP server
	serverURL string
	// outputFormat is one of json, yaml or table
	outputFormat string
	// presetName overrides parser.preset
	presetName string
	// providerName overrides backend.provider
	providerName string
	// configPath overrides the default config file location
	configPath string
	verbose    bool

	version = "dev"
)

func main() {
	// Missing .env is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rfq",
	Short: "Parse free-text RFQs into structured requests",
	Long: `rfq parses trading request-for-quote messages such as
"Client wants to buy 10M EUR/USD 3M forward" into structured fields.

Parsing runs in-process with the same configuration as rfqd
(~/.config/rfqd/config.yaml and RFQD_* environment variables).`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&serverURL, "server", "http://localhost:9090", "rfqd server URL")
	pf.StringVarP(&outputFormat, "output", "o", formatTable, "output format: json, yaml or table")
	pf.StringVar(&presetName, "preset", "", "parser preset: default, fast or accurate")
	pf.StringVar(&providerName, "provider", "", "semantic backend: mistral, openai, anthropic, ollama, mock or disabled")
	pf.StringVar(&configPath, "config", "", "config file (default ~/.config/rfqd/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log parser decisions to stderr")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(healthCmd)
}

// loadConfig applies the command-line overrides on top of the loaded config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if presetName != "" {
		if err := cfg.ApplyPreset(config.Preset(presetName)); err != nil {
			return nil, err
		}
	}
	if providerName != "" {
		cfg.Backend.Provider = providerName
		cfg.ApplyProviderKey()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newParser builds the parser the same way rfqd does. Logs go to stderr so
// stdout stays machine-readable.
func newParser(ctx context.Context) (*rfq.Parser, *config.Config, error) {
	if err := checkFormat(outputFormat); err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logCfg := logging.NewDefaultConfig()
	logCfg.Format = "console"
	logCfg.Stderr = true
	logCfg.Caller = false
	logCfg.Level = zapcore.WarnLevel
	if verbose {
		logCfg.Level = zapcore.DebugLevel
	}
	logger, err := logging.NewLogger(logCfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	reg, err := services.Build(ctx, cfg, services.BuildOptions{Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	return reg.Parser(), cfg, nil
}
