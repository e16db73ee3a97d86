package classify

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	nethttp "github.com/buildwithgrove/sequencer-client/network/http"
)

// FailureFromTransport maps a Transport error to a Failure.
// Errors that are not a *nethttp.TransportError count as network failures.
func FailureFromTransport(err error) Failure {
	if err == nil {
		return FailureNone
	}
	var transportErr *nethttp.TransportError
	if !errors.As(err, &transportErr) {
		return FailureNetwork
	}
	switch transportErr.Kind {
	case nethttp.TransportTimeout:
		return FailureTimeout
	case nethttp.TransportCancelled:
		return FailureCancelled
	default:
		return FailureNetwork
	}
}

// maxRetryAfter bounds the server hint so a bogus header cannot park a call.
const maxRetryAfter = 5 * time.Minute

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
// It returns 0 when the header is absent or unusable.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	var d time.Duration
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds > int(maxRetryAfter/time.Second) {
			return maxRetryAfter
		}
		d = time.Duration(seconds) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = at.Sub(now)
	}

	switch {
	case d <= 0:
		return 0
	case d > maxRetryAfter:
		return maxRetryAfter
	default:
		return d
	}
}
