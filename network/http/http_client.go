package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/sequencer-client/network/concurrency"
	"github.com/buildwithgrove/sequencer-client/request"
)

const defaultUserAgent = "sequencer-client/1"

// HTTPClient is the net/http backed Transport.
//
// It keeps one pooled http.Client for all calls, reads bodies through a shared
// BufferPool and, when configured, waits on a Limiter before every request.
type HTTPClient struct {
	logger     polylog.Logger
	httpClient *http.Client
	bufferPool *concurrency.BufferPool
	limiter    *concurrency.Limiter
	headers    map[string]string

	// Counters for monitoring
	activeRequests atomic.Int64
	totalRequests  atomic.Int64
	timeoutErrors  atomic.Int64
	networkErrors  atomic.Int64
}

var _ Transport = (*HTTPClient)(nil)

// HTTPClientOption customizes an HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient replaces the default pooled http.Client.
func WithHTTPClient(c *http.Client) HTTPClientOption {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithHeader sets a header on every request, e.g. the throttling-bypass key.
func WithHeader(key, value string) HTTPClientOption {
	return func(h *HTTPClient) { h.headers[key] = value }
}

// WithBufferPool sets the pool, and so the size limit, used to read bodies.
func WithBufferPool(pool *concurrency.BufferPool) HTTPClientOption {
	return func(h *HTTPClient) { h.bufferPool = pool }
}

// WithLimiter bounds the number of in-flight requests.
func WithLimiter(limiter *concurrency.Limiter) HTTPClientOption {
	return func(h *HTTPClient) { h.limiter = limiter }
}

// NewHTTPClient returns a Transport with transport settings tuned for a single
// gateway host. Request deadlines come from the context passed to Send.
func NewHTTPClient(logger polylog.Logger, opts ...HTTPClientOption) *HTTPClient {
	h := &HTTPClient{
		logger:     logger.With("component", "http_transport"),
		httpClient: newDefaultHTTPClient(),
		bufferPool: concurrency.NewBufferPool(concurrency.DefaultMaxBodySize),
		headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": defaultUserAgent,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// TODO_IMPROVE: expose MaxIdleConnsPerHost and the dial timeouts through ClientConfig.
func newDefaultHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		// All requests go to one host.
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ForceAttemptHTTP2:     true,

		// gzip responses are decompressed transparently.
		DisableCompression: false,
	}

	// No client-level Timeout: every request carries a context deadline.
	return &http.Client{Transport: transport}
}

// Send performs one HTTP exchange. Any status code is a successful Send;
// only a missing or incomplete response yields an error, always a *TransportError.
func (h *HTTPClient) Send(ctx context.Context, req request.Request) (RawResponse, error) {
	tracedCtx, recordRequest := h.setupRequestTracing(ctx, req)

	var (
		resp       RawResponse
		requestErr error
	)
	defer func() {
		recordRequest(resp.StatusCode, requestErr)
	}()

	if err := h.limiter.Acquire(ctx); err != nil {
		requestErr = h.categorizeError(ctx, fmt.Errorf("waiting for a request slot: %w", err))
		return RawResponse{}, requestErr
	}
	defer h.limiter.Release()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(tracedCtx, req.Endpoint.Method, req.URL, body)
	if err != nil {
		requestErr = &TransportError{Kind: TransportNetwork, Err: fmt.Errorf("SHOULD NEVER HAPPEN: building HTTP request: %w", err)}
		return RawResponse{}, requestErr
	}
	for key, value := range h.headers {
		httpReq.Header.Set(key, value)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := h.httpClient.Do(httpReq)
	if err != nil {
		requestErr = h.categorizeError(ctx, err)
		return RawResponse{}, requestErr
	}
	defer httpResp.Body.Close()

	respBody, err := h.bufferPool.ReadAll(httpResp.Body)
	if err != nil {
		requestErr = h.categorizeError(ctx, fmt.Errorf("reading response body (status %d): %w", httpResp.StatusCode, err))
		return RawResponse{}, requestErr
	}

	resp = RawResponse{
		StatusCode: httpResp.StatusCode,
		Header:     make(http.Header, len(keptHeaders)),
		Body:       respBody,
	}
	for _, key := range keptHeaders {
		if value := httpResp.Header.Get(key); value != "" {
			resp.Header.Set(key, value)
		}
	}
	return resp, nil
}

func (h *HTTPClient) categorizeError(ctx context.Context, err error) *TransportError {
	transportErr := categorizeError(ctx, err)
	switch transportErr.Kind {
	case TransportTimeout:
		h.timeoutErrors.Add(1)
	case TransportNetwork:
		h.networkErrors.Add(1)
	}
	return transportErr
}

// Stats is a snapshot of the transport counters.
type Stats struct {
	ActiveRequests int64
	TotalRequests  int64
	TimeoutErrors  int64
	NetworkErrors  int64
}

func (h *HTTPClient) Stats() Stats {
	return Stats{
		ActiveRequests: h.activeRequests.Load(),
		TotalRequests:  h.totalRequests.Load(),
		TimeoutErrors:  h.timeoutErrors.Load(),
		NetworkErrors:  h.networkErrors.Load(),
	}
}

// Close releases idle connections and logs the final counters.
func (h *HTTPClient) Close() {
	stats := h.Stats()
	h.logger.Info().
		Int64("active_requests", stats.ActiveRequests).
		Int64("total_requests", stats.TotalRequests).
		Int64("timeout_errors", stats.TimeoutErrors).
		Int64("network_errors", stats.NetworkErrors).
		Msg("HTTP transport shutting down")
	h.httpClient.CloseIdleConnections()
}

/* -------------------- Request tracing -------------------- */

// requestTiming holds the phase timings of a single HTTP exchange.
type requestTiming struct {
	startTime      time.Time
	dnsLookupTime  time.Duration
	connectTime    time.Duration
	tlsTime        time.Duration
	firstByteTime  time.Duration
	contextTimeout time.Duration
	reusedConn     bool
}

// setupRequestTracing attaches an httptrace.ClientTrace to ctx and returns the
// function that records the outcome once the exchange is over.
func (h *HTTPClient) setupRequestTracing(
	ctx context.Context,
	req request.Request,
) (context.Context, func(statusCode int, err error)) {
	h.activeRequests.Add(1)
	h.totalRequests.Add(1)

	timing := &requestTiming{startTime: time.Now()}
	if deadline, ok := ctx.Deadline(); ok {
		timing.contextTimeout = time.Until(deadline)
	}
	tracedCtx := httptrace.WithClientTrace(ctx, createHTTPTrace(timing))

	return tracedCtx, func(statusCode int, err error) {
		h.activeRequests.Add(-1)
		total := time.Since(timing.startTime)

		// Successful exchanges are logged by the caller, once per attempt.
		if err == nil {
			return
		}
		h.logger.With(
			"endpoint", req.Endpoint.Name,
			"dns_lookup_ms", timing.dnsLookupTime.Milliseconds(),
			"connect_ms", timing.connectTime.Milliseconds(),
			"tls_ms", timing.tlsTime.Milliseconds(),
			"first_byte_ms", timing.firstByteTime.Milliseconds(),
			"total_ms", total.Milliseconds(),
			"timeout_ms", timing.contextTimeout.Milliseconds(),
			"reused_conn", timing.reusedConn,
			"status_code", statusCode,
		).Debug().Err(err).Msg("HTTP exchange failed - timing breakdown")
	}
}

// createHTTPTrace captures timing for each phase of the exchange.
func createHTTPTrace(timing *requestTiming) *httptrace.ClientTrace {
	var dnsStart, connectStart, tlsStart time.Time

	return &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			timing.reusedConn = info.Reused
		},
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			if !dnsStart.IsZero() {
				timing.dnsLookupTime = time.Since(dnsStart)
			}
		},
		ConnectStart: func(network, addr string) {
			connectStart = time.Now()
		},
		ConnectDone: func(network, addr string, err error) {
			if !connectStart.IsZero() {
				timing.connectTime = time.Since(connectStart)
			}
		},
		TLSHandshakeStart: func() {
			tlsStart = time.Now()
		},
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			if !tlsStart.IsZero() {
				timing.tlsTime = time.Since(tlsStart)
			}
		},
		GotFirstResponseByte: func() {
			timing.firstByteTime = time.Since(timing.startTime)
		},
	}
}
