// Package cmd holds startup helpers shared by the command packages.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/louisbranch/diceroller/internal/platform/config"
	"github.com/louisbranch/diceroller/internal/platform/otel"
)

const defaultOTelShutdownTimeout = 5 * time.Second

// Service names reported as the telemetry resource.
const (
	ServiceMCP  = "diceroller-mcp"
	ServiceRoll = "diceroller-roll"
)

// RunOptions controls telemetry setup around a command.
type RunOptions struct {
	// ShutdownTimeout bounds the final span flush. Defaults to five seconds.
	ShutdownTimeout time.Duration
}

// RunWithTelemetry installs the trace provider for service, calls run,
// and flushes spans once run returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	return RunWithTelemetryAndOptions(ctx, service, RunOptions{}, run)
}

// RunWithTelemetryAndOptions is RunWithTelemetry with explicit options.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("telemetry for %s: %w", service, err)
	}
	defer func() {
		timeout := options.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultOTelShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}

// Command describes a binary's main loop.
type Command struct {
	// Name prefixes the standard logger and fatal messages, e.g. "roll".
	Name string
	// Reported lists errors whose details the command already printed.
	// They exit with code 1 and no further message.
	Reported []error
	Run      func(context.Context) error
}

// Main runs c until it returns or the process is interrupted, then exits
// with a non-zero code on failure.
func Main(c Command) {
	log.SetPrefix("[" + strings.ToUpper(c.Name) + "] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := c.Run(ctx)
	stop()

	if code, msg := exitStatus(c, err); code != 0 {
		config.ExitCode(code, msg)
	}
}

func exitStatus(c Command, err error) (int, string) {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0, ""
	}
	for _, reported := range c.Reported {
		if errors.Is(err, reported) {
			return 1, ""
		}
	}
	return 1, fmt.Sprintf("%s: %v", c.Name, err)
}
