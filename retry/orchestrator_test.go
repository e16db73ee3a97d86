package retry

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/buildwithgrove/sequencer-client/classify"
	nethttp "github.com/buildwithgrove/sequencer-client/network/http"
	"github.com/buildwithgrove/sequencer-client/observation"
	"github.com/buildwithgrove/sequencer-client/request"
	"github.com/buildwithgrove/sequencer-client/testutil/fixtures"
	"github.com/buildwithgrove/sequencer-client/testutil/gateway/mocks"
	"github.com/buildwithgrove/sequencer-client/types"
)

func newBlockRequest(t *testing.T) request.Request {
	t.Helper()
	builder, err := request.NewBuilder("https://alpha-mainnet.starknet.io")
	require.NoError(t, err)
	req, err := builder.GetBlock(request.BlockNumber(100))
	require.NoError(t, err)
	return req
}

func raw(status int, body []byte) nethttp.RawResponse {
	return nethttp.RawResponse{StatusCode: status, Body: body}
}

func newTestOrchestrator(transport nethttp.Transport, opts ...OrchestratorOption) (*Orchestrator, *observation.Recorder) {
	recorder := &observation.Recorder{}
	opts = append([]OrchestratorOption{WithObserver(recorder)}, opts...)
	return NewOrchestrator(polyzero.NewLogger(), transport, opts...), recorder
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	req := newBlockRequest(t)

	transport.EXPECT().Send(gomock.Any(), req).Return(raw(http.StatusOK, fixtures.Load(fixtures.Block100)), nil).Times(1)

	o, recorder := newTestOrchestrator(transport, WithPolicy(ConstantPolicy{MaxAttempts: 3}))
	block, err := Do[types.Block](context.Background(), o, req)
	c.NoError(err)
	c.Equal(uint64(100), *block.Number)

	call, ok := recorder.LastCall()
	c.True(ok)
	c.Equal(observation.CallSucceeded, call.Outcome)
	c.Equal(1, call.Attempts)
	c.Len(recorder.Attempts(), 1)
	c.True(recorder.Attempts()[0].Success)
}

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	req := newBlockRequest(t)

	gomock.InOrder(
		transport.EXPECT().Send(gomock.Any(), req).Return(raw(http.StatusServiceUnavailable, []byte("<html>503</html>")), nil),
		transport.EXPECT().Send(gomock.Any(), req).Return(nethttp.RawResponse{}, &nethttp.TransportError{Kind: nethttp.TransportNetwork, Err: errors.New("connection reset")}),
		transport.EXPECT().Send(gomock.Any(), req).Return(raw(http.StatusOK, fixtures.Load(fixtures.Block100)), nil),
	)

	o, recorder := newTestOrchestrator(transport, WithPolicy(ConstantPolicy{MaxAttempts: 5, Delay: time.Millisecond}))
	block, err := Do[types.Block](context.Background(), o, req)
	c.NoError(err)
	c.NotNil(block)

	attempts := recorder.Attempts()
	c.Len(attempts, 3)
	c.Equal(classify.KindTransport, attempts[0].Classification.Kind)
	c.Equal(http.StatusServiceUnavailable, attempts[0].StatusCode)
	c.Equal(time.Millisecond, attempts[0].NextDelay)
	c.Equal(classify.KindTransport, attempts[1].Classification.Kind)
	c.True(attempts[2].Success)
	c.Equal(3, recorder.Calls()[0].Attempts)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	req := newBlockRequest(t)

	const maxAttempts = 4
	const delay = 20 * time.Millisecond
	transport.EXPECT().Send(gomock.Any(), req).Return(raw(http.StatusBadGateway, nil), nil).Times(maxAttempts)

	o, recorder := newTestOrchestrator(transport, WithPolicy(ConstantPolicy{MaxAttempts: maxAttempts, Delay: delay}))
	start := time.Now()
	block, err := Do[types.Block](context.Background(), o, req)
	elapsed := time.Since(start)

	c.Nil(block)
	c.ErrorIs(err, classify.ErrTransport)
	var classified *classify.Error
	c.ErrorAs(err, &classified)
	c.Equal(maxAttempts, classified.Attempts)
	c.Equal(http.StatusBadGateway, classified.StatusCode)
	c.GreaterOrEqual(elapsed, (maxAttempts-1)*delay)

	call, _ := recorder.LastCall()
	c.Equal(observation.CallFailed, call.Outcome)
	c.Equal(maxAttempts, call.Attempts)
	c.Zero(recorder.Attempts()[maxAttempts-1].NextDelay)
}

func TestDo_TerminalFailsImmediately(t *testing.T) {
	tests := []struct {
		name     string
		resp     nethttp.RawResponse
		wantErr  error
		wantCode types.GatewayErrorCode
	}{
		{
			name:     "gateway rejects the request",
			resp:     raw(http.StatusBadRequest, fixtures.Load(fixtures.ErrorInvalidNonce)),
			wantErr:  classify.ErrGatewayRejected,
			wantCode: types.ErrCodeInvalidTransactionNonce,
		},
		{
			name:    "success status with a malformed body",
			resp:    raw(http.StatusOK, []byte(`{"block_number":"oops"}`)),
			wantErr: classify.ErrDecode,
		},
		{
			name:    "404 without body",
			resp:    raw(http.StatusNotFound, nil),
			wantErr: classify.ErrGatewayRejected,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := require.New(t)
			ctrl := gomock.NewController(t)
			transport := mocks.NewMockTransport(ctrl)
			transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(test.resp, nil).Times(1)

			o, recorder := newTestOrchestrator(transport, WithPolicy(ConstantPolicy{MaxAttempts: 5, Delay: time.Millisecond}))
			_, err := Do[types.Block](context.Background(), o, newBlockRequest(t))
			c.ErrorIs(err, test.wantErr)

			var classified *classify.Error
			c.ErrorAs(err, &classified)
			c.Equal(1, classified.Attempts)
			c.Equal(test.wantCode, classified.GatewayCode)
			c.Len(recorder.Attempts(), 1)
		})
	}
}

func TestDo_CancelDuringBackoff(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(raw(http.StatusServiceUnavailable, nil), nil).Times(1)

	o, recorder := newTestOrchestrator(transport, WithPolicy(ConstantPolicy{MaxAttempts: 10, Delay: 10 * time.Second}))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	block, err := Do[types.Block](ctx, o, newBlockRequest(t))
	c.Nil(block)
	c.ErrorIs(err, classify.ErrCancelled)
	c.ErrorIs(err, context.Canceled)
	c.Less(time.Since(start), 2*time.Second)

	call, _ := recorder.LastCall()
	c.Equal(observation.CallCancelled, call.Outcome)
	c.Equal(1, call.Attempts)
}

func TestDo_CancelDuringAttemptDiscardsResult(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, request.Request) (nethttp.RawResponse, error) {
			// The response arrives, but the caller has already given up.
			cancel()
			return raw(http.StatusOK, fixtures.Load(fixtures.Block100)), nil
		},
	)

	o, _ := newTestOrchestrator(transport)
	block, err := Do[types.Block](ctx, o, newBlockRequest(t))
	c.Nil(block)
	c.ErrorIs(err, classify.ErrCancelled)
}

func TestDo_AlreadyCancelled(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o, recorder := newTestOrchestrator(transport)
	_, err := Do[types.Block](ctx, o, newBlockRequest(t))
	c.ErrorIs(err, classify.ErrCancelled)

	var classified *classify.Error
	c.ErrorAs(err, &classified)
	c.Zero(classified.Attempts)
	c.Empty(recorder.Attempts())
}

func TestDo_NeverRetriesPastDeadline(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(raw(http.StatusServiceUnavailable, nil), nil).Times(1)

	o, _ := newTestOrchestrator(transport, WithPolicy(ConstantPolicy{MaxAttempts: 10, Delay: time.Second}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Do[types.Block](ctx, o, newBlockRequest(t))
	// The last transient error is surfaced without waiting for the deadline.
	c.ErrorIs(err, classify.ErrTransport)
	c.Less(time.Since(start), 150*time.Millisecond)
}

func TestDo_AttemptTimeoutIsTransient(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)

	gomock.InOrder(
		transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ request.Request) (nethttp.RawResponse, error) {
				<-ctx.Done()
				return nethttp.RawResponse{}, &nethttp.TransportError{Kind: nethttp.TransportTimeout, Err: ctx.Err()}
			},
		),
		transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(raw(http.StatusOK, fixtures.Load(fixtures.Block100)), nil),
	)

	o, recorder := newTestOrchestrator(transport,
		WithPolicy(ConstantPolicy{MaxAttempts: 2, Delay: time.Millisecond}),
		WithAttemptTimeout(20*time.Millisecond),
	)
	block, err := Do[types.Block](context.Background(), o, newBlockRequest(t))
	c.NoError(err)
	c.NotNil(block)
	c.Equal(classify.KindTimeout, recorder.Attempts()[0].Classification.Kind)
}

func TestDo_HonoursRetryAfter(t *testing.T) {
	c := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)

	gomock.InOrder(
		transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nethttp.RawResponse{
			StatusCode: http.StatusTooManyRequests,
			Header:     http.Header{"Retry-After": []string{"3"}},
		}, nil),
		transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(raw(http.StatusOK, fixtures.Load(fixtures.Block100)), nil),
	)

	o, _ := newTestOrchestrator(transport, WithPolicy(ConstantPolicy{MaxAttempts: 2, Delay: time.Millisecond}))
	var slept []time.Duration
	o.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	_, err := Do[types.Block](context.Background(), o, newBlockRequest(t))
	c.NoError(err)
	c.Equal([]time.Duration{3 * time.Second}, slept)
}

func TestDo_ConcurrentCallsAreIndependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(raw(http.StatusOK, fixtures.Load(fixtures.Block100)), nil).Times(20)

	o, recorder := newTestOrchestrator(transport)
	req := newBlockRequest(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Do[types.Block](context.Background(), o, req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	for _, call := range recorder.Calls() {
		require.Equal(t, 1, call.Attempts)
	}
}
