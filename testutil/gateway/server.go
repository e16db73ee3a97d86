// Package gateway provides an in-process sequencer gateway for tests.
//
// A Server replies to requests from a script of Steps, in order, and keeps
// every request it received so tests can assert on attempt counts and URLs.
package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// Step is one scripted reply.
type Step struct {
	Status int
	Body   []byte
	Header map[string]string
	// Delay holds the reply back; a request cancelled meanwhile gets no reply.
	Delay time.Duration
}

// Reply returns a Step answering with status and body.
func Reply(status int, body []byte) Step {
	return Step{Status: status, Body: body}
}

// ReceivedRequest is a request as seen by the Server.
type ReceivedRequest struct {
	Method string
	// URI is the path and query string.
	URI    string
	Header http.Header
	Body   []byte
}

// Server is a scripted gateway. Requests past the end of the script repeat the last Step.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	steps    []Step
	received []ReceivedRequest
}

// NewServer starts a Server closed at the end of the test.
func NewServer(t testing.TB, steps ...Step) *Server {
	t.Helper()
	if len(steps) == 0 {
		t.Fatal("gateway.NewServer: at least one step is required")
	}
	s := &Server{steps: steps}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	step := s.steps[min(len(s.received), len(s.steps)-1)]
	s.received = append(s.received, ReceivedRequest{
		Method: r.Method,
		URI:    r.URL.RequestURI(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	if step.Delay > 0 {
		timer := time.NewTimer(step.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range step.Header {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(step.Status)
	_, _ = w.Write(step.Body)
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []ReceivedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ReceivedRequest(nil), s.received...)
}

// RequestCount returns the number of requests received so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}
