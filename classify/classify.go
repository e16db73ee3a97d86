// Package classify maps the outcome of one gateway attempt to a retry decision
// and to the error kind surfaced to callers.
//
// Classify is a pure function: the same Input always yields the same Classification.
package classify

import (
	"fmt"
	"net/http"
	"time"

	"github.com/buildwithgrove/sequencer-client/types"
)

// Class is the retry decision for an attempt.
type Class int

const (
	ClassUnknown Class = iota
	// ClassTransient failures may succeed if the same request is sent again.
	ClassTransient
	// ClassTerminal failures will not change on retry.
	ClassTerminal
	// ClassCancelled means the caller gave up before the attempt could be classified.
	ClassCancelled
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassTerminal:
		return "terminal"
	case ClassCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Kind is the error taxonomy surfaced to callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindTimeout
	KindRateLimited
	KindGatewayRejected
	KindDecode
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindRateLimited:
		return "rate_limited"
	case KindGatewayRejected:
		return "gateway_rejected"
	case KindDecode:
		return "decode"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Failure tells what went wrong below the HTTP status, if anything.
type Failure int

const (
	// FailureNone means a response was received and decoded (as a value or a gateway error).
	FailureNone Failure = iota
	// FailureNetwork means no complete response was received.
	FailureNetwork
	// FailureTimeout means the attempt deadline expired.
	FailureTimeout
	// FailureCancelled means the caller cancelled.
	FailureCancelled
	// FailureDecode means a response was received but matched no known shape.
	FailureDecode
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureNetwork:
		return "network"
	case FailureTimeout:
		return "timeout"
	case FailureCancelled:
		return "cancelled"
	case FailureDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Input is everything the classifier looks at.
type Input struct {
	// StatusCode is 0 when no response was received.
	StatusCode int
	// GatewayCode is the normalized gateway error code, if the body was a gateway error.
	GatewayCode types.GatewayErrorCode
	Failure     Failure
	// RetryAfter is the server's Retry-After hint, 0 if absent.
	RetryAfter time.Duration
}

// Classification is the classifier's verdict on one attempt.
type Classification struct {
	Class  Class
	Kind   Kind
	Reason string
	// RetryAfter, when set, is the minimum wait before the next attempt.
	RetryAfter time.Duration
}

// Retryable reports whether another attempt may succeed.
func (c Classification) Retryable() bool {
	return c.Class == ClassTransient
}

// Classify applies the rules below, first match wins:
//
//  1. cancelled, timed out or network failures
//  2. HTTP 429
//  3. gateway error codes, looked up in the retry-safe and terminal tables
//  4. HTTP 5xx
//  5. undecodable 2xx bodies
//  6. remaining 4xx
//  7. anything else, e.g. 1xx or 3xx, which the gateway never sends
func Classify(in Input) Classification {
	switch in.Failure {
	case FailureCancelled:
		return Classification{Class: ClassCancelled, Kind: KindCancelled, Reason: "cancelled by caller"}
	case FailureTimeout:
		return Classification{Class: ClassTransient, Kind: KindTimeout, Reason: "attempt timed out"}
	case FailureNetwork:
		return Classification{Class: ClassTransient, Kind: KindTransport, Reason: "no response received"}
	}

	if in.StatusCode == http.StatusTooManyRequests {
		return Classification{
			Class:      ClassTransient,
			Kind:       KindRateLimited,
			Reason:     "HTTP 429",
			RetryAfter: in.RetryAfter,
		}
	}

	isServerError := in.StatusCode >= http.StatusInternalServerError && in.StatusCode <= 599

	if in.GatewayCode != "" {
		reason := fmt.Sprintf("gateway code %s (HTTP %d)", in.GatewayCode, in.StatusCode)
		switch {
		case IsRetrySafe(in.GatewayCode):
			return Classification{Class: ClassTransient, Kind: KindRateLimited, Reason: reason, RetryAfter: in.RetryAfter}
		case IsTerminal(in.GatewayCode):
			return Classification{Class: ClassTerminal, Kind: KindGatewayRejected, Reason: reason}
		case isServerError:
			// An unrecognised code from a failing server is more likely an outage
			// than a verdict on the request.
			return Classification{Class: ClassTransient, Kind: KindTransport, Reason: reason}
		default:
			return Classification{Class: ClassTerminal, Kind: KindGatewayRejected, Reason: reason}
		}
	}

	if isServerError {
		return Classification{
			Class:      ClassTransient,
			Kind:       KindTransport,
			Reason:     fmt.Sprintf("HTTP %d", in.StatusCode),
			RetryAfter: in.RetryAfter,
		}
	}

	if in.StatusCode >= http.StatusOK && in.StatusCode < http.StatusMultipleChoices {
		if in.Failure == FailureDecode {
			return Classification{Class: ClassTerminal, Kind: KindDecode, Reason: fmt.Sprintf("HTTP %d with an unexpected body", in.StatusCode)}
		}
		return Classification{Class: ClassTerminal, Kind: KindDecode, Reason: fmt.Sprintf("HTTP %d without a failure signal", in.StatusCode)}
	}

	if in.StatusCode >= http.StatusBadRequest && in.StatusCode < http.StatusInternalServerError {
		return Classification{Class: ClassTerminal, Kind: KindGatewayRejected, Reason: fmt.Sprintf("HTTP %d", in.StatusCode)}
	}

	return Classification{Class: ClassTerminal, Kind: KindDecode, Reason: fmt.Sprintf("unexpected HTTP status %d", in.StatusCode)}
}
