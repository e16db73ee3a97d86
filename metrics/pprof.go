package metrics

import (
	"context"
	"net/http"
	"net/http/pprof"

	"github.com/pokt-network/poktroll/pkg/polylog"
)

// RegisterPprof mounts the pprof handlers under /debug/pprof/ on mux.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

// ServePprof serves pprof on addr until ctx is done.
func ServePprof(ctx context.Context, logger polylog.Logger, addr string) {
	mux := http.NewServeMux()
	RegisterPprof(mux)
	serve(ctx, logger.With("server", "pprof"), addr, mux)
}
