// Package requestcontext provides accessors for request-scoped values that a
// caller threads through outbound calls to the identity provider.
//
// Usage in callers (set values):
//
//	ctx = requestcontext.WithRequestID(ctx, "req-123")
//
// Usage in the transport (read or mint values):
//
//	ctx, requestID := requestcontext.EnsureRequestID(ctx)
package requestcontext

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// ContextKeyRequestID is exported for tests that need context.WithValue directly.
var ContextKeyRequestID = requestIDKey{}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// EnsureRequestID returns the context's request ID, minting a random one when
// none is set. The returned context always carries the ID.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if reqID := RequestID(ctx); reqID != "" {
		return ctx, reqID
	}
	reqID := uuid.NewString()
	return WithRequestID(ctx, reqID), reqID
}
