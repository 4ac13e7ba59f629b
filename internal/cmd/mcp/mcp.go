// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpservice "github.com/louisbranch/diceroller/internal/mcp/service"
	platformcmd "github.com/louisbranch/diceroller/internal/platform/cmd"
	"github.com/louisbranch/diceroller/internal/platform/config"
	"github.com/louisbranch/diceroller/pkg/roller"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr  string `env:"DICEROLLER_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport string `env:"DICEROLLER_MCP_TRANSPORT" envDefault:"stdio"`
	LogLevel  string `env:"DICEROLLER_LOG_LEVEL"     envDefault:"info"`
	Roller    roller.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string, lookup config.LookupFunc) (Config, error) {
	var cfg Config
	if err := config.ParseEnvLookup(&cfg, lookup); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.IntVar(&cfg.Roller.IterationLimit, "iteration-limit", cfg.Roller.IterationLimit, "Maximum extra rolls per exploding or rerolled die")
	fs.BoolVar(&cfg.Roller.Strict, "strict", cfg.Roller.Strict, "Reject expressions with any grammar error")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	// stdout belongs to the stdio transport.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, func(ctx context.Context) error {
		return mcpservice.Run(ctx, mcpservice.Config{
			Transport: mcpservice.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
			Roller:    cfg.Roller,
			Logger:    logger,
		})
	})
}
