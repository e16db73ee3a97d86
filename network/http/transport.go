// Package http is the transport layer of the gateway client: it performs exactly one
// HTTP exchange per Send and reports either the raw response or a TransportError.
//
// It never interprets status codes or bodies; that is left to the response decoder
// and the error classifier.
package http

import (
	"context"
	"net/http"

	"github.com/buildwithgrove/sequencer-client/request"
)

// RawResponse is a complete HTTP response as received from the gateway.
type RawResponse struct {
	StatusCode int
	// Header holds only the headers the client acts on, see keptHeaders.
	Header http.Header
	Body   []byte
}

//go:generate mockgen -source=transport.go -destination=../../testutil/gateway/mocks/transport_mock.go -package=mocks

// Transport performs a single HTTP exchange.
// Implementations must be safe for concurrent use and must honour ctx.
type Transport interface {
	Send(ctx context.Context, req request.Request) (RawResponse, error)
}

// Headers copied from the HTTP response into RawResponse.Header.
var keptHeaders = []string{
	"Content-Type",
	"Retry-After",
}
