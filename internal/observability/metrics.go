// Package observability records dice roller metrics and trace spans with
// OpenTelemetry. Both use the global providers; configure them before
// creating a recorder or span manager.
package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records dice roller metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordParse records one decode of an input string.
	RecordParse(ctx context.Context, duration time.Duration, err error)

	// RecordRoll records one evaluation and the number of dice it resolved.
	RecordRoll(ctx context.Context, dice int, duration time.Duration, err error)
}

type otelMetrics struct {
	parses      metric.Int64Counter
	parseErrors metric.Int64Counter
	rolls       metric.Int64Counter
	rollDice    metric.Int64Histogram
	rollLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("diceroller")

	parses, err := meter.Int64Counter("diceroller.parse.count",
		metric.WithDescription("Number of expressions decoded"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter("diceroller.parse.errors",
		metric.WithDescription("Number of expressions that failed to decode"),
	)
	if err != nil {
		return nil, err
	}

	rolls, err := meter.Int64Counter("diceroller.roll.count",
		metric.WithDescription("Number of expressions rolled"),
	)
	if err != nil {
		return nil, err
	}

	rollDice, err := meter.Int64Histogram("diceroller.roll.dice",
		metric.WithDescription("Dice results produced per roll"),
		metric.WithUnit("{die}"),
	)
	if err != nil {
		return nil, err
	}

	rollLatency, err := meter.Float64Histogram("diceroller.roll.latency_ms",
		metric.WithDescription("Roll latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		parses:      parses,
		parseErrors: parseErrors,
		rolls:       rolls,
		rollDice:    rollDice,
		rollLatency: rollLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordParse(ctx context.Context, _ time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.parses.Add(ctx, 1, attrs)
	if err != nil {
		m.parseErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordRoll(ctx context.Context, dice int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.rolls.Add(ctx, 1, attrs)
	m.rollDice.Record(ctx, int64(dice), attrs)
	m.rollLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
