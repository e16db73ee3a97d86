package config

import (
	"time"
)

const (
	// defaultRequestTimeout bounds a whole call, retries and backoff included.
	defaultRequestTimeout = 30_000 * time.Millisecond

	// defaultAttemptTimeout bounds a single gateway exchange.
	// Large class definitions take several seconds to download.
	defaultAttemptTimeout = 10_000 * time.Millisecond

	defaultMaxConcurrentRequests = 64

	defaultMaxResponseBodySize = 64 << 20 // 64 MiB
)
