// Package observation carries the per-attempt and per-call events emitted by the
// retry orchestrator to metrics, tracing and logging sinks.
package observation

import (
	"context"
	"time"

	"github.com/buildwithgrove/sequencer-client/classify"
	"github.com/buildwithgrove/sequencer-client/types"
)

// CallOutcome is the final state of one gateway call.
type CallOutcome string

const (
	CallSucceeded CallOutcome = "succeeded"
	CallFailed    CallOutcome = "failed"
	CallCancelled CallOutcome = "cancelled"
)

// AttemptEvent describes one finished attempt.
type AttemptEvent struct {
	Endpoint string
	// Attempt is 1-based.
	Attempt int
	// Success is true when the attempt produced the call's value.
	// Classification is only meaningful when Success is false.
	Success        bool
	Classification classify.Classification
	StatusCode     int
	GatewayCode    types.GatewayErrorCode
	Latency        time.Duration
	// NextDelay is the backoff before the next attempt, 0 if none follows.
	NextDelay time.Duration
	Err       error
}

// ClassificationLabel is a low-cardinality label for the attempt's result.
func (e AttemptEvent) ClassificationLabel() string {
	if e.Success {
		return "success"
	}
	return e.Classification.Class.String()
}

// KindLabel is the error kind, "none" for successful attempts.
func (e AttemptEvent) KindLabel() string {
	if e.Success {
		return "none"
	}
	return e.Classification.Kind.String()
}

// CallEvent describes one finished gateway call.
type CallEvent struct {
	Endpoint string
	Outcome  CallOutcome
	// Kind is set for failed and cancelled calls.
	Kind     classify.Kind
	Attempts int
	Duration time.Duration
	Err      error
}

// Observer receives gateway call events.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	// CallStarted is invoked before the first attempt. The returned context is
	// passed to the other methods for the same call.
	CallStarted(ctx context.Context, endpoint string) context.Context
	AttemptFinished(ctx context.Context, event AttemptEvent)
	CallFinished(ctx context.Context, event CallEvent)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) CallStarted(ctx context.Context, _ string) context.Context { return ctx }
func (NoopObserver) AttemptFinished(context.Context, AttemptEvent)              {}
func (NoopObserver) CallFinished(context.Context, CallEvent)                    {}

// Multi fans events out to several observers, in order.
type Multi []Observer

// NewMulti drops nil observers and flattens nested Multis.
func NewMulti(observers ...Observer) Observer {
	var flat Multi
	for _, o := range observers {
		switch o := o.(type) {
		case nil:
		case Multi:
			flat = append(flat, o...)
		default:
			flat = append(flat, o)
		}
	}
	switch len(flat) {
	case 0:
		return NoopObserver{}
	case 1:
		return flat[0]
	default:
		return flat
	}
}

func (m Multi) CallStarted(ctx context.Context, endpoint string) context.Context {
	for _, o := range m {
		ctx = o.CallStarted(ctx, endpoint)
	}
	return ctx
}

func (m Multi) AttemptFinished(ctx context.Context, event AttemptEvent) {
	for _, o := range m {
		o.AttemptFinished(ctx, event)
	}
}

func (m Multi) CallFinished(ctx context.Context, event CallEvent) {
	for _, o := range m {
		o.CallFinished(ctx, event)
	}
}
