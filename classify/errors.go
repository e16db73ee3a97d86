package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/buildwithgrove/sequencer-client/types"
)

// Sentinels matched with errors.Is against a returned *Error.
var (
	ErrTransport       = errors.New("gateway transport failure")
	ErrTimeout         = errors.New("gateway request timed out")
	ErrRateLimited     = errors.New("gateway rate limited the request")
	ErrGatewayRejected = errors.New("gateway rejected the request")
	ErrDecode          = errors.New("gateway response could not be decoded")
	ErrCancelled       = errors.New("gateway call cancelled")
)

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindTimeout:
		return ErrTimeout
	case KindRateLimited:
		return ErrRateLimited
	case KindGatewayRejected:
		return ErrGatewayRejected
	case KindDecode:
		return ErrDecode
	case KindCancelled:
		return ErrCancelled
	default:
		return nil
	}
}

// Error is the single failure value returned by a gateway call.
// It describes the last attempt; earlier attempts are only visible to observers.
type Error struct {
	Kind     Kind
	Endpoint string
	// Attempts is the number of attempts made, 0 if the call was cancelled before the first one.
	Attempts int

	// StatusCode is 0 when no response was received.
	StatusCode int
	// GatewayCode and GatewayMessage are set when the gateway reported an error body.
	GatewayCode    types.GatewayErrorCode
	GatewayMessage string
	// BodyPreview is a bounded prefix of an unexpected body.
	BodyPreview string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s", e.Endpoint, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (HTTP %d)", e.StatusCode)
	}
	if e.GatewayCode != "" {
		fmt.Fprintf(&sb, ": %s", e.GatewayCode)
		if e.GatewayMessage != "" {
			fmt.Fprintf(&sb, ": %s", e.GatewayMessage)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if e.Attempts > 1 {
		fmt.Fprintf(&sb, " after %d attempts", e.Attempts)
	}
	return sb.String()
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind of a gateway call error, KindUnknown if err is not one.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}
