// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getter/setter functions live here for values that are
// typically set by middleware but consumed by services. Keeping this package
// free of net/http dependencies lets services import only what they need.
//
// Usage in services (read values):
//
//	principal := requestcontext.Principal(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithPrincipal(ctx, principal)
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthPrincipal is the externally-verified identity every call carries. The
// core trusts this value without re-verifying credentials itself.
type AuthPrincipal struct {
	UserID uuid.UUID
	Role   string
}

// Context key types (unexported for encapsulation).
type (
	principalKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyPrincipal   = principalKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Principal retrieves the authenticated principal from the context.
// Returns the zero value if not set.
func Principal(ctx context.Context) AuthPrincipal {
	if p, ok := ctx.Value(ContextKeyPrincipal).(AuthPrincipal); ok {
		return p
	}
	return AuthPrincipal{}
}

// WithPrincipal injects an authenticated principal into the context.
func WithPrincipal(ctx context.Context, p AuthPrincipal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// UserID retrieves the authenticated user ID from the context.
// Returns the nil UUID if not set.
func UserID(ctx context.Context) uuid.UUID {
	return Principal(ctx).UserID
}

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

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
