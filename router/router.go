// Package router serves the operational endpoints of a long-running client:
// readiness, Prometheus metrics and optionally pprof.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/buildwithgrove/sequencer-client/config"
	"github.com/buildwithgrove/sequencer-client/health"
	"github.com/buildwithgrove/sequencer-client/metrics"
)

const shutdownTimeout = 5 * time.Second

type router struct {
	mux    *http.ServeMux
	config config.RouterConfig
	logger polylog.Logger
}

type RouterParams struct {
	Config  config.RouterConfig
	Checker *health.Checker
	// Gatherer is exposed on /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// EnablePprof mounts /debug/pprof/ on the router.
	EnablePprof bool
	Logger      polylog.Logger
}

/* --------------------------------- Init -------------------------------- */

// NewRouter creates a new router instance
func NewRouter(params RouterParams) *router {
	r := &router{
		mux:    http.NewServeMux(),
		config: params.Config,
		logger: params.Logger.With("package", "router"),
	}
	r.handleRoutes(params)
	return r
}

func (r *router) handleRoutes(params RouterParams) {
	// GET /healthz - ready when every registered component is alive
	r.mux.HandleFunc("/healthz", methodCheckMiddleware(params.Checker.HealthzHandler))

	// GET /metrics - Prometheus exposition
	r.mux.Handle("/metrics", methodCheckMiddleware(metrics.Handler(params.Gatherer).ServeHTTP))

	if params.EnablePprof {
		metrics.RegisterPprof(r.mux)
	}
}

// Start serves on the configured port until ctx is done.
func (r *router) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", r.config.Port),
		Handler:        r.mux,
		ReadTimeout:    r.config.ReadTimeout,
		WriteTimeout:   r.config.WriteTimeout,
		IdleTimeout:    r.config.IdleTimeout,
		MaxHeaderBytes: r.config.MaxRequestHeaderBytes,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn().Err(err).Msg("router shutdown did not complete")
		}
	}()

	r.logger.Info().Msgf("router running on port %d", r.config.Port)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

/* --------------------------------- Middleware -------------------------------- */

// methodCheckMiddleware ensures that only GET requests are allowed for the wrapped handler
func methodCheckMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed: only GET requests are allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}
