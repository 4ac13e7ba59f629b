package roller

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/diceroller/internal/observability"
)

// MetricsRecorder receives per-call measurements.
type MetricsRecorder interface {
	// RecordParse is called once per decoded input.
	RecordParse(ctx context.Context, duration time.Duration, err error)
	// RecordRoll is called once per evaluated expression with the number
	// of die results it produced.
	RecordRoll(ctx context.Context, dice int, duration time.Duration, err error)
}

// SpanManager opens and closes the spans around decoding and rolling.
type SpanManager interface {
	StartDecodeSpan(ctx context.Context, input string) (context.Context, trace.Span)
	StartRollSpan(ctx context.Context, rollID, input string) (context.Context, trace.Span)
	EndSpanWithError(span trace.Span, err error)
}

var (
	_ MetricsRecorder = observability.NoopMetrics{}
	_ SpanManager     = observability.NoopSpanManager{}
)
