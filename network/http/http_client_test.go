package http

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/sequencer-client/network/concurrency"
	"github.com/buildwithgrove/sequencer-client/request"
)

func TestEnsureHTTPSuccess(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		expectError bool
	}{
		{name: "200 OK", statusCode: http.StatusOK},
		{name: "204 No Content", statusCode: http.StatusNoContent},
		{name: "299 Last 2xx", statusCode: 299},
		{name: "100 Continue", statusCode: http.StatusContinue, expectError: true},
		{name: "301 Moved Permanently", statusCode: http.StatusMovedPermanently, expectError: true},
		{name: "400 Bad Request", statusCode: http.StatusBadRequest, expectError: true},
		{name: "429 Too Many Requests", statusCode: http.StatusTooManyRequests, expectError: true},
		{name: "500 Internal Server Error", statusCode: http.StatusInternalServerError, expectError: true},
		{name: "503 Service Unavailable", statusCode: http.StatusServiceUnavailable, expectError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := EnsureHTTPSuccess(tc.statusCode)
			if tc.expectError {
				require.ErrorIs(t, err, ErrUnexpectedStatus)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func newGetRequest(t *testing.T, baseURL string) request.Request {
	t.Helper()
	builder, err := request.NewBuilder(baseURL)
	require.NoError(t, err)
	req, err := builder.GetBlock(request.BlockNumber(100))
	require.NoError(t, err)
	return req
}

func TestHTTPClient_Send(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{name: "successful response", statusCode: http.StatusOK, body: `{"block_number":100}`},
		{name: "gateway error is a response, not a transport error", statusCode: http.StatusBadRequest, body: `{"code":"StarknetErrorCode.BLOCK_NOT_FOUND"}`},
		{name: "server error is a response, not a transport error", statusCode: http.StatusServiceUnavailable, body: "<html>503</html>"},
		{name: "empty body", statusCode: http.StatusNoContent, body: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := require.New(t)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.Header().Set("X-Ignored", "yes")
				w.WriteHeader(tc.statusCode)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer server.Close()

			client := NewHTTPClient(polyzero.NewLogger())
			resp, err := client.Send(context.Background(), newGetRequest(t, server.URL))
			c.NoError(err)
			c.Equal(tc.statusCode, resp.StatusCode)
			c.Equal(tc.body, string(resp.Body))
			c.Equal("1", resp.Header.Get("Retry-After"))
			c.Empty(resp.Header.Get("X-Ignored"))
			c.Equal(int64(0), client.Stats().ActiveRequests)
			c.Equal(int64(1), client.Stats().TotalRequests)
		})
	}
}

func TestHTTPClient_SendsRequestAsBuilt(t *testing.T) {
	c := require.New(t)

	var got *http.Request
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer server.Close()

	req := request.Request{
		Endpoint: request.EndpointAddTransaction,
		URL:      server.URL + "/gateway/add_transaction",
		Body:     []byte(`{"type":"INVOKE_FUNCTION"}`),
	}
	client := NewHTTPClient(polyzero.NewLogger(), WithHeader("X-Throttling-Bypass", "secret"))
	_, err := client.Send(context.Background(), req)
	c.NoError(err)

	c.Equal(http.MethodPost, got.Method)
	c.Equal("/gateway/add_transaction", got.URL.Path)
	c.Equal("application/json", got.Header.Get("Content-Type"))
	c.Equal("application/json", got.Header.Get("Accept"))
	c.Equal("secret", got.Header.Get("X-Throttling-Bypass"))
	c.Equal(defaultUserAgent, got.Header.Get("User-Agent"))
	c.Equal(string(req.Body), string(gotBody))
}

func TestHTTPClient_GzipIsTransparent(t *testing.T) {
	c := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = io.WriteString(gz, `{"block_number":100}`)
		_ = gz.Close()
	}))
	defer server.Close()

	resp, err := NewHTTPClient(polyzero.NewLogger()).Send(context.Background(), newGetRequest(t, server.URL))
	c.NoError(err)
	c.Equal(`{"block_number":100}`, string(resp.Body))
}

func TestHTTPClient_TransportErrors(t *testing.T) {
	t.Run("attempt deadline is a timeout", func(t *testing.T) {
		c := require.New(t)
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		client := NewHTTPClient(polyzero.NewLogger())
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Send(ctx, newGetRequest(t, server.URL))
		var transportErr *TransportError
		c.ErrorAs(err, &transportErr)
		c.Equal(TransportTimeout, transportErr.Kind)
		c.Equal(int64(1), client.Stats().TimeoutErrors)
	})

	t.Run("caller cancellation is cancelled", func(t *testing.T) {
		c := require.New(t)
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)

		start := time.Now()
		_, err := NewHTTPClient(polyzero.NewLogger()).Send(ctx, newGetRequest(t, server.URL))
		var transportErr *TransportError
		c.ErrorAs(err, &transportErr)
		c.Equal(TransportCancelled, transportErr.Kind)
		c.Less(time.Since(start), time.Second)
	})

	t.Run("refused connection is a network error", func(t *testing.T) {
		c := require.New(t)
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		c.NoError(err)
		addr := listener.Addr().String()
		c.NoError(listener.Close())

		client := NewHTTPClient(polyzero.NewLogger())
		_, err = client.Send(context.Background(), newGetRequest(t, "http://"+addr))
		var transportErr *TransportError
		c.ErrorAs(err, &transportErr)
		c.Equal(TransportNetwork, transportErr.Kind)
		c.Equal(int64(1), client.Stats().NetworkErrors)
	})

	t.Run("oversized body is a network error", func(t *testing.T) {
		c := require.New(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"block_number":100,"padding":"xxxxxxxxxxxxxxxx"}`)
		}))
		defer server.Close()

		client := NewHTTPClient(polyzero.NewLogger(), WithBufferPool(concurrency.NewBufferPool(16)))
		_, err := client.Send(context.Background(), newGetRequest(t, server.URL))
		var transportErr *TransportError
		c.ErrorAs(err, &transportErr)
		c.Equal(TransportNetwork, transportErr.Kind)
		c.ErrorIs(err, concurrency.ErrBodyTooLarge)
	})

	t.Run("full limiter honours the deadline", func(t *testing.T) {
		c := require.New(t)
		limiter := concurrency.NewLimiter(1, nil)
		c.NoError(limiter.Acquire(context.Background()))
		defer limiter.Release()

		client := NewHTTPClient(polyzero.NewLogger(), WithLimiter(limiter))
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Send(ctx, newGetRequest(t, "http://127.0.0.1:1"))
		var transportErr *TransportError
		c.ErrorAs(err, &transportErr)
		c.Equal(TransportTimeout, transportErr.Kind)
	})
}

func TestCategorizeError(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want TransportErrorKind
	}{
		{name: "context cancelled wins", ctx: cancelled, err: errors.New("connection reset"), want: TransportCancelled},
		{name: "context deadline wins", ctx: expired, err: errors.New("connection reset"), want: TransportTimeout},
		{name: "wrapped deadline", ctx: context.Background(), err: context.DeadlineExceeded, want: TransportTimeout},
		{name: "net timeout", ctx: context.Background(), err: &net.DNSError{Err: "timeout", IsTimeout: true}, want: TransportTimeout},
		{name: "dns failure", ctx: context.Background(), err: &net.DNSError{Err: "no such host", IsNotFound: true}, want: TransportNetwork},
		{name: "plain error", ctx: context.Background(), err: io.ErrUnexpectedEOF, want: TransportNetwork},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := categorizeError(tc.ctx, tc.err)
			require.Equal(t, tc.want, got.Kind)
			require.ErrorIs(t, got, tc.err)
		})
	}
}
