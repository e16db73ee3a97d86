// Package metrics exports gateway client activity to Prometheus.
package metrics

import (
	"context"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/buildwithgrove/sequencer-client/observation"
)

// See the metrics initialization below for details.
const (
	clientSubsystem = "gateway_client"

	attemptsTotal         = "attempts_total"
	callsTotal            = "calls_total"
	attemptLatencySeconds = "attempt_latency_seconds"
	callAttempts          = "call_attempts"
	inFlightRequests      = "in_flight_requests"
)

// PrometheusReporter implements observation.Observer by updating Prometheus collectors.
type PrometheusReporter struct {
	Logger polylog.Logger

	// gatewayDomain labels every series with the gateway's eTLD+1.
	gatewayDomain string

	// attemptsTotal counts attempts with labels:
	//   - endpoint: gateway operation, e.g. get_block
	//   - classification: success, transient, terminal or cancelled
	//   - kind: error kind, "none" for successful attempts
	//   - gateway_domain: eTLD+1 of the gateway
	//
	// Usage:
	// - Retry rate per endpoint.
	// - Spot gateway outages (transient/transport) vs client bugs (terminal/decode).
	attemptsTotal *prometheus.CounterVec

	// callsTotal counts finished calls by endpoint, outcome and gateway_domain.
	callsTotal *prometheus.CounterVec

	// attemptLatency measures single attempt latency.
	// Buckets from 50ms to 30s: feeder gateway reads are usually sub-second,
	// large state updates and class definitions take several seconds.
	attemptLatency *prometheus.HistogramVec

	// callAttempts observes how many attempts a call needed.
	callAttempts *prometheus.HistogramVec

	// inFlight tracks requests currently holding a transport slot.
	inFlight prometheus.Gauge
}

var _ observation.Observer = (*PrometheusReporter)(nil)

// NewPrometheusReporter registers the client collectors with reg,
// prometheus.DefaultRegisterer if reg is nil.
func NewPrometheusReporter(logger polylog.Logger, gatewayURL string, reg prometheus.Registerer) (*PrometheusReporter, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &PrometheusReporter{
		Logger:        logger.With("component", "prometheus_reporter"),
		gatewayDomain: GatewayDomainLabel(gatewayURL),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: clientSubsystem,
				Name:      attemptsTotal,
				Help:      "Total number of gateway attempts, labeled by endpoint and classification.",
			},
			[]string{"endpoint", "classification", "kind", "gateway_domain"},
		),
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: clientSubsystem,
				Name:      callsTotal,
				Help:      "Total number of gateway calls, labeled by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome", "gateway_domain"},
		),
		attemptLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: clientSubsystem,
				Name:      attemptLatencySeconds,
				Help:      "Histogram of single attempt latency in seconds.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		callAttempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: clientSubsystem,
				Name:      callAttempts,
				Help:      "Histogram of the number of attempts per call.",
				Buckets:   []float64{1, 2, 3, 5, 8, 13},
			},
			[]string{"endpoint"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Subsystem: clientSubsystem,
				Name:      inFlightRequests,
				Help:      "Number of gateway requests currently in flight.",
			},
		),
	}

	for _, collector := range []prometheus.Collector{
		r.attemptsTotal,
		r.callsTotal,
		r.attemptLatency,
		r.callAttempts,
		r.inFlight,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusReporter) CallStarted(ctx context.Context, _ string) context.Context {
	return ctx
}

func (r *PrometheusReporter) AttemptFinished(_ context.Context, event observation.AttemptEvent) {
	r.attemptsTotal.With(prometheus.Labels{
		"endpoint":       event.Endpoint,
		"classification": event.ClassificationLabel(),
		"kind":           event.KindLabel(),
		"gateway_domain": r.gatewayDomain,
	}).Inc()
	r.attemptLatency.WithLabelValues(event.Endpoint).Observe(event.Latency.Seconds())
}

func (r *PrometheusReporter) CallFinished(_ context.Context, event observation.CallEvent) {
	r.callsTotal.With(prometheus.Labels{
		"endpoint":       event.Endpoint,
		"outcome":        string(event.Outcome),
		"gateway_domain": r.gatewayDomain,
	}).Inc()
	r.callAttempts.WithLabelValues(event.Endpoint).Observe(float64(event.Attempts))
}

// SetInFlight matches the concurrency.Limiter change hook.
func (r *PrometheusReporter) SetInFlight(active int64) {
	r.inFlight.Set(float64(active))
}
