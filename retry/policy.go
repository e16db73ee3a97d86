// Package retry drives gateway calls through repeated attempts until they
// succeed, fail terminally, run out of retries or run out of time.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Policy decides whether, and after how long, a failed attempt is retried.
//
// NextDelay is called with the number of attempts made so far (1 after the first
// attempt) and returns ok=false once no further attempt is allowed.
type Policy interface {
	NextDelay(attempts int) (delay time.Duration, ok bool)
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(attempts int) (time.Duration, bool)

func (f PolicyFunc) NextDelay(attempts int) (time.Duration, bool) {
	return f(attempts)
}

// NoRetry allows exactly one attempt.
var NoRetry Policy = PolicyFunc(func(int) (time.Duration, bool) { return 0, false })

// ConstantPolicy waits the same delay between at most MaxAttempts attempts.
type ConstantPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

func (p ConstantPolicy) NextDelay(attempts int) (time.Duration, bool) {
	if attempts >= p.MaxAttempts {
		return 0, false
	}
	return p.Delay, true
}

// Defaults for ExponentialPolicy fields left at their zero value.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
	DefaultMultiplier  = 2.0
	DefaultJitter      = 0.2
)

// ExponentialPolicy grows the delay by Multiplier after every attempt, starting
// at BaseDelay and capped at MaxDelay. Jitter in [0, 1] randomizes each delay
// by up to that fraction, downwards only, so a delay never exceeds the schedule.
//
// The policy is stateless: NextDelay depends only on its argument, so one value
// can be shared by any number of concurrent calls.
type ExponentialPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64

	// random returns a value in [0, 1); overridden in tests.
	random func() float64
}

// NewExponentialPolicy fills zero fields with the package defaults.
func NewExponentialPolicy(maxAttempts int, baseDelay, maxDelay time.Duration, jitter float64) ExponentialPolicy {
	p := ExponentialPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		Multiplier:  DefaultMultiplier,
		Jitter:      jitter,
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.Jitter < 0 || p.Jitter > 1 {
		p.Jitter = DefaultJitter
	}
	return p
}

func (p ExponentialPolicy) NextDelay(attempts int) (time.Duration, bool) {
	if attempts < 1 || attempts >= p.MaxAttempts {
		return 0, false
	}

	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	delay := float64(p.BaseDelay) * math.Pow(multiplier, float64(attempts-1))
	if delay > float64(maxDelay) || math.IsInf(delay, 1) || math.IsNaN(delay) {
		delay = float64(maxDelay)
	}

	if p.Jitter > 0 {
		random := p.random
		if random == nil {
			random = rand.Float64
		}
		delay -= delay * p.Jitter * random()
	}
	return time.Duration(delay), true
}
