// Package requestcontext carries request-scoped values that services need
// without importing net/http: the request ID for log correlation and the
// instant against which birth dates and ages are judged.
//
// Middleware stamps both values once per request; tests inject them
// directly:
//
//	ctx = requestcontext.WithTime(ctx, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// RequestID returns the request ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the time stamped on the request. Without one (CLI runs,
// background reloads) it falls back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the validation instant. Every item of a batch is judged
// against the same value.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
