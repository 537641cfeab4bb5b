package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/piipapoy/pedulikucing-app-sub000/pkg/requestcontext"
)

// TokenValidator is the boundary to the external identity collaborator. The
// core trusts the principal it returns without re-verifying credentials.
type TokenValidator interface {
	ValidateToken(tokenString string) (requestcontext.AuthPrincipal, error)
}

// RequireAuth validates the bearer token and stashes the verified principal
// in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			principal, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}

// OptionalAuth attaches a principal when a valid bearer token is present and
// lets the request through anonymously otherwise. Used where guests are
// first-class, like stray reports.
func OptionalAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := validator.ValidateToken(token)
			if err != nil {
				// A presented-but-invalid token is rejected rather than
				// silently downgraded to guest.
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
