package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrUnexpectedStatus is returned by EnsureHTTPSuccess for non-2xx status codes.
var ErrUnexpectedStatus = errors.New("gateway returned non 2xx HTTP status code")

// EnsureHTTPSuccess returns an error if the status code is not a 2xx successful status code.
// Otherwise returns nil.
func EnsureHTTPSuccess(statusCode int) error {
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, statusCode)
	}
	return nil
}

// TransportErrorKind tells why no HTTP response was obtained.
type TransportErrorKind int

const (
	// TransportNetwork covers DNS failures, refused or reset connections, TLS errors
	// and bodies that could not be read in full.
	TransportNetwork TransportErrorKind = iota + 1
	// TransportTimeout means the attempt deadline expired before a full response arrived.
	TransportTimeout
	// TransportCancelled means the caller cancelled the request.
	TransportCancelled
)

func (k TransportErrorKind) String() string {
	switch k {
	case TransportNetwork:
		return "network"
	case TransportTimeout:
		return "timeout"
	case TransportCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TransportError is returned by a Transport when no complete response was received.
type TransportError struct {
	Kind TransportErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s error: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// categorizeError maps an error from the HTTP round trip to a TransportError.
// The context is consulted first: once it is done, its reason wins over
// whatever the dialer or reader happened to report.
func categorizeError(ctx context.Context, err error) *TransportError {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return &TransportError{Kind: TransportCancelled, Err: err}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &TransportError{Kind: TransportTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &TransportError{Kind: TransportCancelled, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &TransportError{Kind: TransportTimeout, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	return &TransportError{Kind: TransportNetwork, Err: err}
}
