package retry

import (
	"context"
	"errors"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/sequencer-client/classify"
	nethttp "github.com/buildwithgrove/sequencer-client/network/http"
	"github.com/buildwithgrove/sequencer-client/observation"
	"github.com/buildwithgrove/sequencer-client/request"
	"github.com/buildwithgrove/sequencer-client/response"
)

// Orchestrator runs the attempt loop shared by every gateway call:
//
//	Idle → Attempting → {Succeeded | Retrying → Attempting | Failed | Cancelled}
//
// An Orchestrator holds no per-call state and is safe for concurrent use.
type Orchestrator struct {
	Logger polylog.Logger

	transport nethttp.Transport
	policy    Policy
	observer  observation.Observer

	// attemptTimeout bounds each attempt on top of the caller's deadline, 0 for no bound.
	attemptTimeout time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// OrchestratorOption customizes an Orchestrator.
type OrchestratorOption func(*Orchestrator)

func WithPolicy(policy Policy) OrchestratorOption {
	return func(o *Orchestrator) { o.policy = policy }
}

func WithObserver(observer observation.Observer) OrchestratorOption {
	return func(o *Orchestrator) { o.observer = observer }
}

// WithAttemptTimeout bounds every attempt. A timed out attempt is transient.
func WithAttemptTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.attemptTimeout = timeout }
}

func NewOrchestrator(logger polylog.Logger, transport nethttp.Transport, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		Logger:    logger.With("component", "retry_orchestrator"),
		transport: transport,
		policy:    NewExponentialPolicy(0, 0, 0, DefaultJitter),
		observer:  observation.NoopObserver{},
		now:       time.Now,
		sleep:     sleepWithContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.policy == nil {
		o.policy = NoRetry
	}
	if o.observer == nil {
		o.observer = observation.NoopObserver{}
	}
	return o
}

// attemptRecord is the state of one call. It never leaves Do.
type attemptRecord struct {
	endpoint request.Endpoint
	start    time.Time
	attempts int
	lastErr  *classify.Error
}

// Do sends req until it yields a T or fails. The returned error is always a *classify.Error.
//
// ctx bounds the whole call: its cancellation is observed while waiting on the
// transport and during backoff, and no attempt is started that could not begin
// before its deadline.
func Do[T any](ctx context.Context, o *Orchestrator, req request.Request) (*T, error) {
	record := &attemptRecord{endpoint: req.Endpoint, start: o.now()}
	obsCtx := o.observer.CallStarted(ctx, req.Endpoint.Name)

	for {
		if err := ctx.Err(); err != nil {
			return nil, o.finish(obsCtx, record, o.stopError(ctx, record))
		}

		record.attempts++
		value, attemptErr := attempt[T](ctx, o, req, record.attempts)
		event := observation.AttemptEvent{
			Endpoint: req.Endpoint.Name,
			Attempt:  record.attempts,
			Latency:  attemptErr.latency,
		}

		if value != nil {
			// A success that raced a cancellation is discarded.
			if errors.Is(ctx.Err(), context.Canceled) {
				o.observer.AttemptFinished(obsCtx, event)
				return nil, o.finish(obsCtx, record, o.stopError(ctx, record))
			}
			event.Success = true
			event.StatusCode = attemptErr.statusCode
			o.observer.AttemptFinished(obsCtx, event)
			o.observer.CallFinished(obsCtx, observation.CallEvent{
				Endpoint: req.Endpoint.Name,
				Outcome:  observation.CallSucceeded,
				Attempts: record.attempts,
				Duration: o.now().Sub(record.start),
			})
			return value, nil
		}

		classification := attemptErr.classification
		event.Classification = classification
		event.StatusCode = attemptErr.err.StatusCode
		event.GatewayCode = attemptErr.err.GatewayCode
		event.Err = attemptErr.err

		if classification.Class == classify.ClassCancelled || errors.Is(ctx.Err(), context.Canceled) {
			o.observer.AttemptFinished(obsCtx, event)
			return nil, o.finish(obsCtx, record, o.stopError(ctx, record))
		}

		record.lastErr = attemptErr.err
		if classification.Class != classify.ClassTransient {
			o.observer.AttemptFinished(obsCtx, event)
			return nil, o.finish(obsCtx, record, record.lastErr)
		}

		delay, ok := o.nextDelay(ctx, record, classification)
		if !ok {
			o.observer.AttemptFinished(obsCtx, event)
			return nil, o.finish(obsCtx, record, record.lastErr)
		}
		event.NextDelay = delay
		o.observer.AttemptFinished(obsCtx, event)

		o.Logger.Debug().
			Str("endpoint", req.Endpoint.Name).
			Int("attempt", record.attempts).
			Dur("delay", delay).
			Msg("scheduling retry")

		if err := o.sleep(ctx, delay); err != nil {
			return nil, o.finish(obsCtx, record, o.stopError(ctx, record))
		}
	}
}

// nextDelay asks the policy for the backoff and refuses any retry that could
// not start before ctx's deadline.
func (o *Orchestrator) nextDelay(ctx context.Context, record *attemptRecord, c classify.Classification) (time.Duration, bool) {
	delay, ok := o.policy.NextDelay(record.attempts)
	if !ok {
		return 0, false
	}
	if c.RetryAfter > delay {
		delay = c.RetryAfter
	}
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline && !o.now().Add(delay).Before(deadline) {
		return 0, false
	}
	return delay, true
}

// stopError is returned when ctx ends the call. An expired deadline surfaces the
// last attempt's error when there is one, cancellation always surfaces Cancelled.
func (o *Orchestrator) stopError(ctx context.Context, record *attemptRecord) *classify.Error {
	cause := context.Cause(ctx)
	if cause == nil {
		cause = context.Canceled
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && record.lastErr != nil {
		return record.lastErr
	}
	return &classify.Error{
		Kind:     classify.KindCancelled,
		Endpoint: record.endpoint.Name,
		Attempts: record.attempts,
		Err:      cause,
	}
}

func (o *Orchestrator) finish(ctx context.Context, record *attemptRecord, err *classify.Error) error {
	err.Attempts = record.attempts
	outcome := observation.CallFailed
	if err.Kind == classify.KindCancelled {
		outcome = observation.CallCancelled
	}
	o.observer.CallFinished(ctx, observation.CallEvent{
		Endpoint: record.endpoint.Name,
		Outcome:  outcome,
		Kind:     err.Kind,
		Attempts: record.attempts,
		Duration: o.now().Sub(record.start),
		Err:      err,
	})
	return err
}

// attemptResult describes a failed attempt, or the status of a successful one.
type attemptResult struct {
	classification classify.Classification
	err            *classify.Error
	statusCode     int
	latency        time.Duration
}

// attempt performs one exchange and classifies it.
func attempt[T any](ctx context.Context, o *Orchestrator, req request.Request, number int) (*T, attemptResult) {
	attemptCtx := ctx
	if o.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, o.attemptTimeout)
		defer cancel()
	}

	start := o.now()
	resp, sendErr := o.transport.Send(attemptCtx, req)
	latency := o.now().Sub(start)

	failed := func(in classify.Input, gwMessage, preview string, cause error) (*T, attemptResult) {
		c := classify.Classify(in)
		return nil, attemptResult{
			classification: c,
			latency:        latency,
			err: &classify.Error{
				Kind:           c.Kind,
				Endpoint:       req.Endpoint.Name,
				Attempts:       number,
				StatusCode:     in.StatusCode,
				GatewayCode:    in.GatewayCode,
				GatewayMessage: gwMessage,
				BodyPreview:    preview,
				Err:            cause,
			},
		}
	}

	if sendErr != nil {
		return failed(classify.Input{Failure: classify.FailureFromTransport(sendErr)}, "", "", sendErr)
	}

	result := response.DecodeRaw[T](resp)
	in := classify.Input{
		StatusCode: resp.StatusCode,
		RetryAfter: classify.ParseRetryAfter(resp.Header.Get("Retry-After"), o.now()),
	}
	switch result.Kind {
	case response.ResultSuccess:
		return result.Value, attemptResult{statusCode: resp.StatusCode, latency: latency}
	case response.ResultGatewayError:
		in.GatewayCode = result.GatewayErrorCode()
		return failed(in, result.GatewayError.Message, result.BodyPreview, result.GatewayError)
	default:
		in.Failure = classify.FailureDecode
		return failed(in, "", result.BodyPreview, result.Err)
	}
}

// sleepWithContext waits for d or until ctx is done, whichever comes first.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
