package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	endpointMetrics = "/metrics"

	shutdownTimeout = 5 * time.Second
)

// Handler serves the collectors of gatherer, prometheus.DefaultGatherer if nil.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Register mounts the metrics endpoint on mux.
func Register(mux *http.ServeMux, gatherer prometheus.Gatherer) {
	mux.Handle(endpointMetrics, Handler(gatherer))
}

// ServeMetrics serves /metrics on addr until ctx is done.
func ServeMetrics(ctx context.Context, logger polylog.Logger, addr string, gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	Register(mux, gatherer)
	serve(ctx, logger.With("server", "metrics"), addr, mux)
}

// serve runs an HTTP server in the background and shuts it down with ctx.
func serve(ctx context.Context, logger polylog.Logger, addr string, handler http.Handler) {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("endpoint_addr", addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("endpoint_addr", addr).Msg("server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info().Str("endpoint_addr", addr).Msg("stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
