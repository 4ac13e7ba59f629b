package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("diceroller")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartDecodeSpan starts a span covering tokenizing and parsing input.
	StartDecodeSpan(ctx context.Context, input string) (context.Context, trace.Span)

	// StartRollSpan starts a span covering the evaluation of one roll.
	StartRollSpan(ctx context.Context, rollID, input string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
func NewSpanManager() SpanManager {
	return otelSpanManager{}
}

func (otelSpanManager) StartDecodeSpan(ctx context.Context, input string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "diceroller.decode",
		trace.WithAttributes(attribute.String("dice.input", input)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (otelSpanManager) StartRollSpan(ctx context.Context, rollID, input string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "diceroller.roll",
		trace.WithAttributes(
			attribute.String("roll.id", rollID),
			attribute.String("dice.input", input),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
