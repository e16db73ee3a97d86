package config

import (
	"fmt"
	"time"

	"github.com/buildwithgrove/sequencer-client/retry"
)

/* --------------------------------- Retry Config Struct -------------------------------- */

// RetryConfig configures the exponential backoff between attempts of a call.
type RetryConfig struct {
	// MaxAttempts includes the first attempt. 1 disables retries.
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	// Jitter is the fraction, in [0, 1], by which each delay may be shortened at random.
	Jitter *float64 `yaml:"jitter"`
}

// Policy returns the backoff policy described by the config.
func (c RetryConfig) Policy() retry.Policy {
	if c.MaxAttempts == 1 {
		return retry.NoRetry
	}
	jitter := retry.DefaultJitter
	if c.Jitter != nil {
		jitter = *c.Jitter
	}
	return retry.NewExponentialPolicy(c.MaxAttempts, c.BaseDelay, c.MaxDelay, jitter)
}

/* --------------------------------- Retry Config Private Helpers -------------------------------- */

func (c *RetryConfig) hydrateRetryDefaults() {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = retry.DefaultMaxAttempts
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = retry.DefaultBaseDelay
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = retry.DefaultMaxDelay
	}
	if c.Jitter == nil {
		jitter := retry.DefaultJitter
		c.Jitter = &jitter
	}
}

func (c RetryConfig) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1, got %d", errInvalidConfig, c.MaxAttempts)
	}
	if c.BaseDelay < 0 || c.MaxDelay < 0 {
		return fmt.Errorf("%w: retry delays must not be negative", errInvalidConfig)
	}
	if c.MaxDelay < c.BaseDelay {
		return fmt.Errorf("%w: retry.max_delay %v is below retry.base_delay %v", errInvalidConfig, c.MaxDelay, c.BaseDelay)
	}
	if c.Jitter != nil && (*c.Jitter < 0 || *c.Jitter > 1) {
		return fmt.Errorf("%w: retry.jitter must be in [0, 1], got %v", errInvalidConfig, *c.Jitter)
	}
	return nil
}
