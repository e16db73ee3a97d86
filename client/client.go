// Package client is the caller-facing sequencer gateway client.
//
// Every method validates its arguments locally, bounds the call with the
// default request timeout when ctx carries no deadline, and returns either the
// decoded value or a *classify.Error. Retries are internal and only visible
// through the configured observation.Observer.
package client

import (
	"context"
	"net/http"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/sequencer-client/network/concurrency"
	nethttp "github.com/buildwithgrove/sequencer-client/network/http"
	"github.com/buildwithgrove/sequencer-client/observation"
	"github.com/buildwithgrove/sequencer-client/request"
	"github.com/buildwithgrove/sequencer-client/retry"
	"github.com/buildwithgrove/sequencer-client/types"
)

const (
	// DefaultRequestTimeout bounds a call whose context has no deadline.
	DefaultRequestTimeout = 30 * time.Second

	// HeaderThrottlingBypass carries the optional API key lifting the gateway rate limit.
	HeaderThrottlingBypass = "X-Throttling-Bypass"
)

// Client is safe for concurrent use. Calls share the transport and nothing else.
type Client struct {
	Logger polylog.Logger

	builder      *request.Builder
	orchestrator *retry.Orchestrator

	requestTimeout time.Duration

	// httpClient is set when the Client owns its transport.
	httpClient *nethttp.HTTPClient
}

type options struct {
	transport      nethttp.Transport
	httpClient     *http.Client
	limiter        *concurrency.Limiter
	maxBodySize    int64
	apiKey         string
	policy         retry.Policy
	observer       observation.Observer
	requestTimeout time.Duration
	attemptTimeout time.Duration
}

// Option customizes a Client.
type Option func(*options)

// WithTransport replaces the default HTTP transport. WithAPIKey, WithHTTPClient,
// WithLimiter and WithMaxBodySize only apply to the default transport.
func WithTransport(transport nethttp.Transport) Option {
	return func(o *options) { o.transport = transport }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// WithLimiter bounds the number of requests in flight across all calls.
func WithLimiter(limiter *concurrency.Limiter) Option {
	return func(o *options) { o.limiter = limiter }
}

func WithMaxBodySize(maxBodySize int64) Option {
	return func(o *options) { o.maxBodySize = maxBodySize }
}

// WithAPIKey sends key in the X-Throttling-Bypass header of every request.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

func WithRetryPolicy(policy retry.Policy) Option {
	return func(o *options) { o.policy = policy }
}

func WithObserver(observer observation.Observer) Option {
	return func(o *options) { o.observer = observer }
}

// WithRequestTimeout sets the deadline applied to calls whose context has none.
// A zero timeout leaves such calls unbounded.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *options) { o.requestTimeout = timeout }
}

func WithAttemptTimeout(timeout time.Duration) Option {
	return func(o *options) { o.attemptTimeout = timeout }
}

// NewClient returns a Client for the gateway rooted at baseURL,
// e.g. https://alpha-mainnet.starknet.io.
func NewClient(logger polylog.Logger, baseURL string, opts ...Option) (*Client, error) {
	builder, err := request.NewBuilder(baseURL)
	if err != nil {
		return nil, err
	}

	o := options{
		policy:         retry.NewExponentialPolicy(0, 0, 0, retry.DefaultJitter),
		observer:       observation.NoopObserver{},
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger = logger.With("gateway_url", builder.BaseURL())
	c := &Client{
		Logger:         logger.With("component", "gateway_client"),
		builder:        builder,
		requestTimeout: o.requestTimeout,
	}

	transport := o.transport
	if transport == nil {
		httpOpts := []nethttp.HTTPClientOption{
			nethttp.WithBufferPool(concurrency.NewBufferPool(o.maxBodySize)),
		}
		if o.httpClient != nil {
			httpOpts = append(httpOpts, nethttp.WithHTTPClient(o.httpClient))
		}
		if o.limiter != nil {
			httpOpts = append(httpOpts, nethttp.WithLimiter(o.limiter))
		}
		if o.apiKey != "" {
			httpOpts = append(httpOpts, nethttp.WithHeader(HeaderThrottlingBypass, o.apiKey))
		}
		c.httpClient = nethttp.NewHTTPClient(logger, httpOpts...)
		transport = c.httpClient
	}

	c.orchestrator = retry.NewOrchestrator(logger, transport,
		retry.WithPolicy(o.policy),
		retry.WithObserver(o.observer),
		retry.WithAttemptTimeout(o.attemptTimeout),
	)
	return c, nil
}

// BaseURL returns the normalized gateway URL.
func (c *Client) BaseURL() string {
	return c.builder.BaseURL()
}

// Stats reports the default transport's counters, zero with a custom transport.
func (c *Client) Stats() nethttp.Stats {
	if c.httpClient == nil {
		return nethttp.Stats{}
	}
	return c.httpClient.Stats()
}

// Close releases idle connections of the default transport.
func (c *Client) Close() {
	if c.httpClient != nil {
		c.httpClient.Close()
	}
}

func (c *Client) GetBlock(ctx context.Context, id request.BlockID) (*types.Block, error) {
	return call[types.Block](ctx, c, func() (request.Request, error) {
		return c.builder.GetBlock(id)
	})
}

func (c *Client) GetStateUpdate(ctx context.Context, id request.BlockID) (*types.StateUpdate, error) {
	return call[types.StateUpdate](ctx, c, func() (request.Request, error) {
		return c.builder.GetStateUpdate(id)
	})
}

// GetStateUpdateWithBlock fetches a state update together with its block in one request.
func (c *Client) GetStateUpdateWithBlock(ctx context.Context, id request.BlockID) (*types.StateUpdateWithBlock, error) {
	return call[types.StateUpdateWithBlock](ctx, c, func() (request.Request, error) {
		return c.builder.GetStateUpdateWithBlock(id)
	})
}

func (c *Client) GetClassByHash(ctx context.Context, classHash *felt.Felt) (*types.ClassDefinition, error) {
	return call[types.ClassDefinition](ctx, c, func() (request.Request, error) {
		return c.builder.GetClassByHash(classHash)
	})
}

func (c *Client) GetCompiledClassByHash(ctx context.Context, classHash *felt.Felt) (*types.ClassDefinition, error) {
	return call[types.ClassDefinition](ctx, c, func() (request.Request, error) {
		return c.builder.GetCompiledClassByHash(classHash)
	})
}

func (c *Client) GetContractAddresses(ctx context.Context) (*types.ContractAddresses, error) {
	return call[types.ContractAddresses](ctx, c, c.builder.GetContractAddresses)
}

func (c *Client) GetTransaction(ctx context.Context, txHash *felt.Felt) (*types.TransactionWithStatus, error) {
	return call[types.TransactionWithStatus](ctx, c, func() (request.Request, error) {
		return c.builder.GetTransaction(txHash)
	})
}

func (c *Client) GetTransactionStatus(ctx context.Context, txHash *felt.Felt) (*types.TransactionStatus, error) {
	return call[types.TransactionStatus](ctx, c, func() (request.Request, error) {
		return c.builder.GetTransactionStatus(txHash)
	})
}

// GetSignature fetches the sequencer signature of a closed block.
func (c *Client) GetSignature(ctx context.Context, id request.BlockID) (*types.BlockSignature, error) {
	return call[types.BlockSignature](ctx, c, func() (request.Request, error) {
		return c.builder.GetSignature(id)
	})
}

func (c *Client) GetPublicKey(ctx context.Context) (*felt.Felt, error) {
	key, err := call[types.PublicKey](ctx, c, c.builder.GetPublicKey)
	if err != nil {
		return nil, err
	}
	return key.Key, nil
}

// AddTransaction submits tx. Rejections such as a stale nonce are never retried.
func (c *Client) AddTransaction(ctx context.Context, tx *types.BroadcastedTransaction) (*types.AddTransactionResponse, error) {
	return call[types.AddTransactionResponse](ctx, c, func() (request.Request, error) {
		return c.builder.AddTransaction(tx)
	})
}

// call builds the request before any I/O, so invalid arguments never reach the orchestrator.
func call[T any](ctx context.Context, c *Client, build func() (request.Request, error)) (*T, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withDefaultDeadline(ctx)
	defer cancel()

	return retry.Do[T](ctx, c.orchestrator, req)
}

func (c *Client) withDefaultDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || c.requestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}
