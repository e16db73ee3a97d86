package client

import (
	"context"
	"sync"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/sequencer-client/request"
	"github.com/buildwithgrove/sequencer-client/types"
)

const (
	DefaultPollInterval = 10 * time.Second

	// staleAfterIntervals is the number of missed polls after which the gateway is reported down.
	staleAfterIntervals = 3

	pollerName = "sequencer_gateway"
)

// Poller fetches the latest block periodically and reports the gateway as
// alive while polls keep succeeding. It implements health.Check.
type Poller struct {
	Logger polylog.Logger

	client   *Client
	interval time.Duration
	onBlock  func(*types.Block)
	now      func() time.Time

	mu          sync.RWMutex
	lastSuccess time.Time
	latest      *types.Block
}

// NewPoller returns a Poller calling onBlock, if not nil, after every successful poll.
func NewPoller(logger polylog.Logger, client *Client, interval time.Duration, onBlock func(*types.Block)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		Logger:   logger.With("component", "gateway_poller"),
		client:   client,
		interval: interval,
		onBlock:  onBlock,
		now:      time.Now,
	}
}

// Run polls until ctx is done. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.poll(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	block, err := p.client.GetBlock(pollCtx, request.Latest())
	if err != nil {
		if ctx.Err() == nil {
			p.Logger.Warn().Err(err).Msg("failed to poll latest block")
		}
		return
	}

	p.mu.Lock()
	p.lastSuccess = p.now()
	p.latest = block
	p.mu.Unlock()

	logEvent := p.Logger.Debug().Int("transactions", len(block.Transactions))
	if block.Number != nil {
		logEvent = logEvent.Int64("block_number", int64(*block.Number))
	}
	logEvent.Msg("polled latest block")

	if p.onBlock != nil {
		p.onBlock(block)
	}
}

// Latest returns the last block polled, nil before the first successful poll.
func (p *Poller) Latest() *types.Block {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

func (p *Poller) Name() string {
	return pollerName
}

// IsAlive returns true if a poll succeeded within the last three intervals.
func (p *Poller) IsAlive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.lastSuccess.IsZero() {
		return false
	}
	return p.now().Sub(p.lastSuccess) <= staleAfterIntervals*p.interval
}
