package observation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/buildwithgrove/sequencer-client/classify"
)

func transientAttempt(attempt int) AttemptEvent {
	return AttemptEvent{
		Endpoint:       "get_block",
		Attempt:        attempt,
		Classification: classify.Classification{Class: classify.ClassTransient, Kind: classify.KindTransport},
		StatusCode:     503,
		Latency:        5 * time.Millisecond,
		NextDelay:      10 * time.Millisecond,
		Err:            errors.New("HTTP 503"),
	}
}

func TestAttemptEventLabels(t *testing.T) {
	require.Equal(t, "success", AttemptEvent{Success: true}.ClassificationLabel())
	require.Equal(t, "none", AttemptEvent{Success: true}.KindLabel())
	require.Equal(t, "transient", transientAttempt(1).ClassificationLabel())
	require.Equal(t, "transport", transientAttempt(1).KindLabel())
}

func TestTracingObserver(t *testing.T) {
	c := require.New(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	observer := NewTracingObserver(tp)

	ctx := observer.CallStarted(context.Background(), "get_block")
	observer.AttemptFinished(ctx, transientAttempt(1))
	observer.AttemptFinished(ctx, AttemptEvent{Endpoint: "get_block", Attempt: 2, Success: true, StatusCode: 200})
	observer.CallFinished(ctx, CallEvent{Endpoint: "get_block", Outcome: CallSucceeded, Attempts: 2})

	spans := recorder.Ended()
	c.Len(spans, 1)
	span := spans[0]
	c.Equal("gateway.get_block", span.Name())
	c.Equal(codes.Ok, span.Status().Code)
	c.Len(span.Events(), 2)
	c.Contains(span.Events()[0].Attributes, attribute.String("gateway.classification", "transient"))
	c.Contains(span.Events()[0].Attributes, attribute.Int("http.response.status_code", 503))
	c.Contains(span.Events()[1].Attributes, attribute.String("gateway.classification", "success"))
	c.Contains(span.Attributes(), attribute.Int("gateway.attempts", 2))
}

func TestTracingObserver_FailedCall(t *testing.T) {
	c := require.New(t)
	recorder := tracetest.NewSpanRecorder()
	observer := NewTracingObserver(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	ctx := observer.CallStarted(context.Background(), "add_transaction")
	observer.CallFinished(ctx, CallEvent{
		Endpoint: "add_transaction",
		Outcome:  CallFailed,
		Kind:     classify.KindGatewayRejected,
		Attempts: 1,
		Err:      errors.New("INVALID_TRANSACTION_NONCE"),
	})

	spans := recorder.Ended()
	c.Len(spans, 1)
	c.Equal(codes.Error, spans[0].Status().Code)
	c.Equal("gateway_rejected", spans[0].Status().Description)
	c.Contains(spans[0].Attributes(), attribute.String("gateway.outcome", "failed"))
	// RecordError adds an "exception" event.
	c.Len(spans[0].Events(), 1)
}

func TestMulti(t *testing.T) {
	c := require.New(t)
	first, second := &Recorder{}, &Recorder{}

	observer := NewMulti(first, nil, NewMulti(second))
	ctx := observer.CallStarted(context.Background(), "get_block")
	observer.AttemptFinished(ctx, transientAttempt(1))
	observer.CallFinished(ctx, CallEvent{Endpoint: "get_block", Outcome: CallFailed, Attempts: 1})

	for _, r := range []*Recorder{first, second} {
		c.Len(r.Attempts(), 1)
		c.Len(r.Calls(), 1)
	}

	c.IsType(NoopObserver{}, NewMulti())
	c.Same(first, NewMulti(nil, first))
}

func TestRecorder(t *testing.T) {
	c := require.New(t)
	r := &Recorder{}

	_, ok := r.LastCall()
	c.False(ok)

	r.CallFinished(context.Background(), CallEvent{Endpoint: "get_block", Attempts: 1})
	r.CallFinished(context.Background(), CallEvent{Endpoint: "get_state_update", Attempts: 3})
	last, ok := r.LastCall()
	c.True(ok)
	c.Equal(3, last.Attempts)

	r.Reset()
	c.Empty(r.Calls())
}

func TestLoggingObserverDoesNotPanic(t *testing.T) {
	observer := NewLoggingObserver(polyzero.NewLogger())
	ctx := observer.CallStarted(context.Background(), "get_block")
	observer.AttemptFinished(ctx, transientAttempt(1))
	observer.AttemptFinished(ctx, AttemptEvent{Endpoint: "get_block", Attempt: 2, Success: true})
	observer.CallFinished(ctx, CallEvent{Endpoint: "get_block", Outcome: CallSucceeded, Attempts: 2})
	observer.CallFinished(ctx, CallEvent{Endpoint: "get_block", Outcome: CallCancelled, Kind: classify.KindCancelled})
	observer.CallFinished(ctx, CallEvent{Endpoint: "get_block", Outcome: CallFailed, Kind: classify.KindDecode, Err: errors.New("bad body")})
}
