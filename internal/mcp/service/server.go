// Package service exposes the dice roller as an MCP server.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/diceroller/pkg/roller"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Dice Roller MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the listen address for TransportHTTP. Defaults to
	// localhost:8081.
	HTTPAddr string
	Roller   roller.Config
	Logger   *slog.Logger
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	roller    *roller.Roller
}

// New creates a configured MCP server.
func New(cfg Config) (*Server, error) {
	r, err := newRoller(cfg, nil)
	if err != nil {
		return nil, err
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	seeded := func(seed int64) (*roller.Roller, error) {
		return newRoller(cfg, &seed)
	}
	mcp.AddTool(mcpServer, RollExpressionTool(), RollExpressionHandler(r, seeded))
	mcp.AddTool(mcpServer, DiceProbabilitiesTool(), DiceProbabilitiesHandler(r))

	return &Server{mcpServer: mcpServer, roller: r}, nil
}

func newRoller(cfg Config, seed *int64) (*roller.Roller, error) {
	rc := cfg.Roller
	if seed != nil {
		rc.Seed = seed
	}
	r, err := roller.New(roller.WithConfig(rc), roller.WithLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("create roller: %w", err)
	}
	return r, nil
}

// Run creates and serves the MCP server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := New(cfg)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		addr := cfg.HTTPAddr
		if addr == "" {
			addr = defaultHTTPAddr
		}
		return server.serveHTTP(ctx, addr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
