// Package cmd implements seqctl, a command-line client for the sequencer gateway.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pokt-network/poktroll/pkg/polylog"
	"github.com/spf13/cobra"

	"github.com/buildwithgrove/sequencer-client/classify"
	"github.com/buildwithgrove/sequencer-client/client"
	"github.com/buildwithgrove/sequencer-client/config"
	"github.com/buildwithgrove/sequencer-client/network/concurrency"
	"github.com/buildwithgrove/sequencer-client/observation"
)

const defaultGatewayURL = "https://alpha-mainnet.starknet.io"

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	gatewayURL string
	apiKey     string
	logLevel   string
}

// NewRootCmd returns the seqctl command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "seqctl",
		Short: color.GreenString("seqctl - sequencer gateway client"),
		Long: `seqctl queries the feeder gateway and submits transactions to the sequencer gateway.

Reads print the decoded gateway response as indented JSON on stdout.
Failed calls print the error kind, the attempts made and any gateway error code on stderr.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flags.gatewayURL, "gateway-url", "", "gateway base URL, overrides the config file (default "+defaultGatewayURL+")")
	rootCmd.PersistentFlags().StringVar(&flags.apiKey, "api-key", "", "throttling bypass key, overrides the config file")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newReadCmds(flags)...)
	rootCmd.AddCommand(
		newAddTransactionCmd(flags),
		newBlocksCmd(flags),
		newWatchCmd(flags),
	)
	return rootCmd
}

// Execute runs seqctl and exits with a non-zero status on failure.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies the flag overrides.
func (f *rootFlags) loadConfig() (config.ClientConfig, error) {
	var (
		cfg config.ClientConfig
		err error
	)
	switch {
	case f.configPath != "":
		cfg, err = config.LoadClientConfigFromYAML(f.configPath)
	case f.gatewayURL != "":
		cfg, err = config.NewClientConfig(f.gatewayURL)
	default:
		cfg, err = config.NewClientConfig(defaultGatewayURL)
	}
	if err != nil {
		return config.ClientConfig{}, fmt.Errorf("failed to load config: %w", err)
	}

	if f.gatewayURL != "" {
		cfg.GatewayURL = f.gatewayURL
	}
	if f.apiKey != "" {
		cfg.APIKey = f.apiKey
	}
	if f.logLevel != "" {
		cfg.Logger.Level = f.logLevel
		if err := cfg.Logger.Validate(); err != nil {
			return config.ClientConfig{}, err
		}
	}
	return cfg, nil
}

// clientDeps are the optional hooks a subcommand can attach to the client.
type clientDeps struct {
	observers []observation.Observer
	onInFlight func(active int64)
}

// newClient builds a gateway client from cfg. Every call is logged and traced
// through the global OpenTelemetry tracer provider.
func newClient(logger polylog.Logger, cfg config.ClientConfig, deps clientDeps) (*client.Client, error) {
	observers := append([]observation.Observer{
		observation.NewLoggingObserver(logger),
		observation.NewTracingObserver(nil),
	}, deps.observers...)

	return client.NewClient(logger, cfg.GatewayURL,
		client.WithAPIKey(cfg.APIKey),
		client.WithRequestTimeout(cfg.RequestTimeout),
		client.WithAttemptTimeout(cfg.AttemptTimeout),
		client.WithRetryPolicy(cfg.Retry.Policy()),
		client.WithMaxBodySize(cfg.MaxResponseBodySize),
		client.WithLimiter(concurrency.NewLimiter(cfg.MaxConcurrentRequests, deps.onInFlight)),
		client.WithObserver(observation.NewMulti(observers...)),
	)
}

// setup loads the config and returns a client for a one-shot command.
// The caller closes the client.
func (f *rootFlags) setup() (*client.Client, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger.NewLogger()
	c, err := newClient(logger, cfg, clientDeps{})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// printError writes err in red, followed by the gateway failure details when there are any.
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(w, "Error: %v\n", err)

	var gwErr *classify.Error
	if !errors.As(err, &gwErr) {
		return
	}
	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintf(w, "  kind:     %s\n", gwErr.Kind)
	_, _ = yellow.Fprintf(w, "  attempts: %d\n", gwErr.Attempts)
	if gwErr.StatusCode != 0 {
		_, _ = yellow.Fprintf(w, "  status:   %d\n", gwErr.StatusCode)
	}
	if gwErr.GatewayCode != "" {
		_, _ = yellow.Fprintf(w, "  code:     %s\n", gwErr.GatewayCode)
	}
}
