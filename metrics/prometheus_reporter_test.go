package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/sequencer-client/classify"
	"github.com/buildwithgrove/sequencer-client/observation"
)

func newTestReporter(t *testing.T) (*PrometheusReporter, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	r, err := NewPrometheusReporter(polyzero.NewLogger(), "https://alpha-mainnet.starknet.io", reg)
	require.NoError(t, err)
	return r, reg
}

func Test_PrometheusReporter_Attempts(t *testing.T) {
	r, _ := newTestReporter(t)
	ctx := context.Background()

	r.AttemptFinished(ctx, observation.AttemptEvent{
		Endpoint: "get_block",
		Attempt:  1,
		Classification: classify.Classification{
			Class: classify.ClassTransient,
			Kind:  classify.KindTransport,
		},
		StatusCode: 503,
		Latency:    120 * time.Millisecond,
		Err:        errors.New("service unavailable"),
	})
	r.AttemptFinished(ctx, observation.AttemptEvent{
		Endpoint:   "get_block",
		Attempt:    2,
		Success:    true,
		StatusCode: 200,
		Latency:    80 * time.Millisecond,
	})

	require.Equal(t, 1.0, testutil.ToFloat64(r.attemptsTotal.WithLabelValues("get_block", "transient", "transport", "starknet.io")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.attemptsTotal.WithLabelValues("get_block", "success", "none", "starknet.io")))
	require.Equal(t, 1, testutil.CollectAndCount(r.attemptLatency))
}

func Test_PrometheusReporter_Calls(t *testing.T) {
	r, _ := newTestReporter(t)
	ctx := context.Background()

	r.CallFinished(ctx, observation.CallEvent{Endpoint: "add_transaction", Outcome: observation.CallFailed, Attempts: 1})
	r.CallFinished(ctx, observation.CallEvent{Endpoint: "get_block", Outcome: observation.CallSucceeded, Attempts: 3})
	r.CallFinished(ctx, observation.CallEvent{Endpoint: "get_block", Outcome: observation.CallSucceeded, Attempts: 1})

	require.Equal(t, 1.0, testutil.ToFloat64(r.callsTotal.WithLabelValues("add_transaction", "failed", "starknet.io")))
	require.Equal(t, 2.0, testutil.ToFloat64(r.callsTotal.WithLabelValues("get_block", "succeeded", "starknet.io")))

	expected := `
# HELP gateway_client_call_attempts Histogram of the number of attempts per call.
# TYPE gateway_client_call_attempts histogram
gateway_client_call_attempts_bucket{endpoint="get_block",le="1"} 1
gateway_client_call_attempts_bucket{endpoint="get_block",le="2"} 1
gateway_client_call_attempts_bucket{endpoint="get_block",le="3"} 2
gateway_client_call_attempts_bucket{endpoint="get_block",le="5"} 2
gateway_client_call_attempts_bucket{endpoint="get_block",le="8"} 2
gateway_client_call_attempts_bucket{endpoint="get_block",le="13"} 2
gateway_client_call_attempts_bucket{endpoint="get_block",le="+Inf"} 2
gateway_client_call_attempts_sum{endpoint="get_block"} 4
gateway_client_call_attempts_count{endpoint="get_block"} 2
`
	require.NoError(t, testutil.CollectAndCompare(r.callAttempts, strings.NewReader(expected), "gateway_client_call_attempts"))
}

func Test_PrometheusReporter_InFlight(t *testing.T) {
	r, _ := newTestReporter(t)

	r.SetInFlight(3)
	require.Equal(t, 3.0, testutil.ToFloat64(r.inFlight))
	r.SetInFlight(0)
	require.Equal(t, 0.0, testutil.ToFloat64(r.inFlight))
}

func Test_NewPrometheusReporter_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusReporter(polyzero.NewLogger(), "http://localhost:8080", reg)
	require.NoError(t, err)

	_, err = NewPrometheusReporter(polyzero.NewLogger(), "http://localhost:8080", reg)
	require.Error(t, err)
}

func Test_Handler(t *testing.T) {
	r, reg := newTestReporter(t)
	r.CallFinished(context.Background(), observation.CallEvent{Endpoint: "get_block", Outcome: observation.CallSucceeded, Attempts: 1})

	mux := http.NewServeMux()
	Register(mux, reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `gateway_client_calls_total{endpoint="get_block",gateway_domain="starknet.io",outcome="succeeded"} 1`)
}
