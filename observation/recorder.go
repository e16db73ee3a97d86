package observation

import (
	"context"
	"sync"
)

// Recorder keeps every event in memory. It backs tests and the CLI's
// per-command attempt summary.
type Recorder struct {
	mu       sync.Mutex
	attempts []AttemptEvent
	calls    []CallEvent
}

var _ Observer = (*Recorder)(nil)

func (r *Recorder) CallStarted(ctx context.Context, _ string) context.Context {
	return ctx
}

func (r *Recorder) AttemptFinished(_ context.Context, event AttemptEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, event)
}

func (r *Recorder) CallFinished(_ context.Context, event CallEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, event)
}

// Attempts returns a copy of the recorded attempt events.
func (r *Recorder) Attempts() []AttemptEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AttemptEvent(nil), r.attempts...)
}

// Calls returns a copy of the recorded call events.
func (r *Recorder) Calls() []CallEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CallEvent(nil), r.calls...)
}

// LastCall returns the most recent call event, if any.
func (r *Recorder) LastCall() (CallEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return CallEvent{}, false
	}
	return r.calls[len(r.calls)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = nil
	r.calls = nil
}
