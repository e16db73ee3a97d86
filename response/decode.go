// Package response turns raw gateway responses into typed results.
//
// Decoding is two-pass. A 2xx body is first decoded as the expected payload;
// any body that is not a valid payload is then tried as a gateway error object.
// Whatever matches neither is reported as undecodable, with its status and a
// bounded preview of the body for diagnostics.
package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buildwithgrove/sequencer-client/log"
	nethttp "github.com/buildwithgrove/sequencer-client/network/http"
	"github.com/buildwithgrove/sequencer-client/types"
)

var (
	// ErrUndecodable is wrapped by Result.Err when a body matched neither the
	// expected payload nor the gateway error shape.
	ErrUndecodable = errors.New("undecodable gateway response")

	// ErrEmptyBody is wrapped by Result.Err when the body was empty.
	ErrEmptyBody = errors.New("empty response body")
)

// ResultKind tags the variant held by a Result.
type ResultKind int

const (
	ResultSuccess ResultKind = iota + 1
	ResultGatewayError
	ResultUndecodable
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultGatewayError:
		return "gateway_error"
	case ResultUndecodable:
		return "undecodable"
	default:
		return "unknown"
	}
}

// Result is the outcome of decoding one response.
// Exactly one of Value, GatewayError and Err is set, as told by Kind.
type Result[T any] struct {
	Kind       ResultKind
	StatusCode int

	// Value is set for ResultSuccess.
	Value *T
	// GatewayError is set for ResultGatewayError.
	GatewayError *types.GatewayError
	// Err wraps ErrUndecodable for ResultUndecodable.
	Err error
	// BodyPreview is a bounded, log-safe prefix of the body, set unless the result is a success.
	BodyPreview string
}

// GatewayErrorCode returns the normalized gateway code, or "" if the result is not a gateway error.
func (r Result[T]) GatewayErrorCode() types.GatewayErrorCode {
	if r.GatewayError == nil {
		return ""
	}
	return r.GatewayError.NormalizedCode()
}

// DecodeRaw decodes a RawResponse, see Decode.
func DecodeRaw[T any](resp nethttp.RawResponse) Result[T] {
	return Decode[T](resp.StatusCode, resp.Body)
}

// Decode interprets status and body as a T, a gateway error or neither.
//
// A payload missing a required field is never returned as a success: if *T
// implements types.Validator, Validate must pass.
func Decode[T any](statusCode int, body []byte) Result[T] {
	body = bytes.TrimSpace(body)

	var successErr error
	if nethttp.EnsureHTTPSuccess(statusCode) == nil {
		value, err := decodeValue[T](body)
		if err == nil {
			return Result[T]{
				Kind:       ResultSuccess,
				StatusCode: statusCode,
				Value:      value,
			}
		}
		successErr = err
	}

	if gwErr, ok := decodeGatewayError(body); ok {
		return Result[T]{
			Kind:         ResultGatewayError,
			StatusCode:   statusCode,
			GatewayError: gwErr,
			BodyPreview:  log.PreviewBytes(body),
		}
	}

	err := fmt.Errorf("%w: HTTP status %d", ErrUndecodable, statusCode)
	if successErr != nil {
		err = fmt.Errorf("%w: HTTP status %d: %w", ErrUndecodable, statusCode, successErr)
	}
	return Result[T]{
		Kind:        ResultUndecodable,
		StatusCode:  statusCode,
		Err:         err,
		BodyPreview: log.PreviewBytes(body),
	}
}

func decodeValue[T any](body []byte) (*T, error) {
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}
	value := new(T)
	if err := json.Unmarshal(body, value); err != nil {
		return nil, err
	}
	if validator, ok := any(value).(types.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, err
		}
	}
	return value, nil
}

func decodeGatewayError(body []byte) (*types.GatewayError, bool) {
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}
	var gwErr types.GatewayError
	if err := json.Unmarshal(body, &gwErr); err != nil {
		return nil, false
	}
	if gwErr.Validate() != nil {
		return nil, false
	}
	// An acknowledgement that failed validation is a broken success, not a rejection.
	if gwErr.NormalizedCode() == types.TransactionReceivedCode {
		return nil, false
	}
	return &gwErr, true
}
