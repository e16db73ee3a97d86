package concurrency

import (
	"context"
	"sync"
)

// Limiter bounds the number of gateway requests in flight across all calls
// sharing it. A nil *Limiter imposes no bound.
type Limiter struct {
	semaphore     chan struct{}
	maxConcurrent int

	mu     sync.Mutex
	active int64

	// onChange, if set, is called with the in-flight count after every change.
	onChange func(active int64)
}

// NewLimiter returns a limiter admitting at most maxConcurrent requests.
// A non-positive maxConcurrent returns nil, i.e. no limit.
func NewLimiter(maxConcurrent int, onChange func(active int64)) *Limiter {
	if maxConcurrent <= 0 {
		return nil
	}
	return &Limiter{
		semaphore:     make(chan struct{}, maxConcurrent),
		maxConcurrent: maxConcurrent,
		onChange:      onChange,
	}
}

// Acquire blocks until a slot is free or ctx is done, in which case ctx.Err() is returned.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	select {
	case l.semaphore <- struct{}{}:
		l.adjust(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by a successful Acquire.
func (l *Limiter) Release() {
	if l == nil {
		return
	}
	select {
	case <-l.semaphore:
		l.adjust(-1)
	default:
		// Release without a matching Acquire: nothing to free.
	}
}

// Active returns the number of requests currently holding a slot.
func (l *Limiter) Active() int64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Max returns the configured bound, 0 meaning unbounded.
func (l *Limiter) Max() int {
	if l == nil {
		return 0
	}
	return l.maxConcurrent
}

func (l *Limiter) adjust(delta int64) {
	l.mu.Lock()
	l.active += delta
	active := l.active
	if l.onChange != nil {
		l.onChange(active)
	}
	l.mu.Unlock()
}
