// Package testutil provides a recording fake of the identity provider API for
// client and command tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// RecordedRequest is one request the fake received, body included.
type RecordedRequest struct {
	Method string
	// Path is the escaped request path.
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeIdP is an httptest server routed with chi that records every request,
// matched or not. Unrouted paths answer 404.
type FakeIdP struct {
	Server *httptest.Server
	Router chi.Router

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeIdP starts a fake and closes it when the test ends. Requests are
// recorded before any option middleware runs, so rejected calls show up too.
func NewFakeIdP(t *testing.T, opts ...Option) *FakeIdP {
	t.Helper()

	f := &FakeIdP{Router: chi.NewRouter()}
	f.Router.Use(f.record)
	for _, opt := range opts {
		opt(f)
	}
	f.Server = httptest.NewServer(f.Router)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to hand to the client under test.
func (f *FakeIdP) URL() string {
	return f.Server.URL
}

// Respond routes method+pattern to a fixed JSON reply. A nil body writes no
// content.
func (f *FakeIdP) Respond(method, pattern string, status int, body any) {
	f.Router.MethodFunc(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// HandleFunc routes method+pattern to a custom handler.
func (f *FakeIdP) HandleFunc(method, pattern string, h http.HandlerFunc) {
	f.Router.MethodFunc(method, pattern, h)
}

// Requests returns a copy of everything received so far, in arrival order.
func (f *FakeIdP) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo filters Requests by method and escaped path.
func (f *FakeIdP) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeIdP) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes v as a JSON response. A nil v writes only the status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON unmarshals a recorded body into T, failing the test on error.
func DecodeJSON[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out), "failed to unmarshal body %s", string(body))
	return out
}
