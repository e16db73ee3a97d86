package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/buildwithgrove/sequencer-client/client"
	"github.com/buildwithgrove/sequencer-client/health"
	"github.com/buildwithgrove/sequencer-client/metrics"
	"github.com/buildwithgrove/sequencer-client/observation"
	"github.com/buildwithgrove/sequencer-client/router"
	"github.com/buildwithgrove/sequencer-client/types"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var enablePprof bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the latest block and serve /healthz and /metrics until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			logger := cfg.Logger.NewLogger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			reporter, err := metrics.NewPrometheusReporter(logger, cfg.GatewayURL, registry)
			if err != nil {
				return err
			}

			c, err := newClient(logger, cfg, clientDeps{
				observers:  []observation.Observer{reporter},
				onInFlight: reporter.SetInFlight,
			})
			if err != nil {
				return err
			}
			defer c.Close()

			var lastNumber uint64
			poller := client.NewPoller(logger, c, cfg.Router.PollInterval, func(block *types.Block) {
				if block.Number == nil || *block.Number == lastNumber {
					return
				}
				lastNumber = *block.Number
				logger.Info().
					Int64("block_number", int64(lastNumber)).
					Str("block_hash", block.Hash.String()).
					Int("transactions", len(block.Transactions)).
					Msg("new block")
			})
			go poller.Run(ctx)

			if cfg.Metrics.Addr != "" {
				metrics.ServeMetrics(ctx, logger, cfg.Metrics.Addr, registry)
			}
			if cfg.Metrics.PprofAddr != "" {
				metrics.ServePprof(ctx, logger, cfg.Metrics.PprofAddr)
			}

			r := router.NewRouter(router.RouterParams{
				Config: cfg.Router,
				Checker: &health.Checker{
					Logger:     logger,
					Components: []health.Check{poller},
					GatewayURL: c.BaseURL(),
				},
				Gatherer:    registry,
				EnablePprof: enablePprof,
				Logger:      logger,
			})
			if err := r.Start(ctx); err != nil {
				return err
			}

			logger.Info().Msg("watch stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&enablePprof, "pprof", false, "serve /debug/pprof/ on the router")
	return cmd
}
