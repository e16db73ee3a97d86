package observation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/buildwithgrove/sequencer-client"

// TracingObserver records one client span per call and one span event per attempt.
type TracingObserver struct {
	tracer trace.Tracer
}

var _ Observer = (*TracingObserver)(nil)

// NewTracingObserver uses the global tracer provider when tp is nil.
func NewTracingObserver(tp trace.TracerProvider) *TracingObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingObserver{tracer: tp.Tracer(instrumentationName)}
}

func (o *TracingObserver) CallStarted(ctx context.Context, endpoint string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "gateway."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("gateway.endpoint", endpoint)),
	)
	return ctx
}

func (o *TracingObserver) AttemptFinished(ctx context.Context, event AttemptEvent) {
	span := trace.SpanFromContext(ctx)
	attrs := []attribute.KeyValue{
		attribute.Int("gateway.attempt", event.Attempt),
		attribute.String("gateway.classification", event.ClassificationLabel()),
		attribute.String("gateway.kind", event.KindLabel()),
		attribute.Int64("gateway.latency_ms", event.Latency.Milliseconds()),
	}
	if event.StatusCode != 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", event.StatusCode))
	}
	if event.GatewayCode != "" {
		attrs = append(attrs, attribute.String("gateway.error_code", string(event.GatewayCode)))
	}
	if event.NextDelay > 0 {
		attrs = append(attrs, attribute.Int64("gateway.next_delay_ms", event.NextDelay.Milliseconds()))
	}
	span.AddEvent("gateway.attempt", trace.WithAttributes(attrs...))
}

func (o *TracingObserver) CallFinished(ctx context.Context, event CallEvent) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("gateway.outcome", string(event.Outcome)),
		attribute.Int("gateway.attempts", event.Attempts),
	)
	if event.Outcome != CallSucceeded {
		span.SetAttributes(attribute.String("gateway.kind", event.Kind.String()))
		if event.Err != nil {
			span.RecordError(event.Err)
		}
		span.SetStatus(codes.Error, event.Kind.String())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
