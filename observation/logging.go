package observation

import (
	"context"

	"github.com/pokt-network/poktroll/pkg/polylog"
)

// LoggingObserver logs attempts and calls: Debug for each attempt, Warn when
// an attempt will be retried, Error when a call fails.
type LoggingObserver struct {
	Logger polylog.Logger
}

var _ Observer = (*LoggingObserver)(nil)

func NewLoggingObserver(logger polylog.Logger) *LoggingObserver {
	return &LoggingObserver{Logger: logger.With("component", "gateway_client")}
}

func (o *LoggingObserver) CallStarted(ctx context.Context, _ string) context.Context {
	return ctx
}

func (o *LoggingObserver) AttemptFinished(_ context.Context, event AttemptEvent) {
	logger := o.Logger.With(
		"endpoint", event.Endpoint,
		"attempt", event.Attempt,
		"status_code", event.StatusCode,
		"classification", event.ClassificationLabel(),
	)

	switch {
	case event.Success:
		logger.Debug().Dur("latency", event.Latency).Msg("gateway attempt succeeded")
	case event.NextDelay > 0:
		logger.Warn().
			Err(event.Err).
			Str("kind", event.KindLabel()).
			Str("gateway_code", string(event.GatewayCode)).
			Dur("latency", event.Latency).
			Dur("next_delay", event.NextDelay).
			Msg("gateway attempt failed, retrying")
	default:
		logger.Debug().
			Err(event.Err).
			Str("kind", event.KindLabel()).
			Str("gateway_code", string(event.GatewayCode)).
			Dur("latency", event.Latency).
			Msg("gateway attempt failed")
	}
}

func (o *LoggingObserver) CallFinished(_ context.Context, event CallEvent) {
	logger := o.Logger.With(
		"endpoint", event.Endpoint,
		"outcome", string(event.Outcome),
		"attempts", event.Attempts,
	)

	switch event.Outcome {
	case CallSucceeded:
		logger.Debug().Dur("duration", event.Duration).Msg("gateway call succeeded")
	case CallCancelled:
		logger.Info().Err(event.Err).Dur("duration", event.Duration).Msg("gateway call cancelled")
	default:
		logger.Error().
			Err(event.Err).
			Str("kind", event.Kind.String()).
			Dur("duration", event.Duration).
			Msg("gateway call failed")
	}
}
