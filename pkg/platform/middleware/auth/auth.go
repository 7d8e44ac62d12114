// Package auth provides the request-authorization middleware: session
// validation plus role/module gating in front of every business handler.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"hrcore/internal/authz"
	"hrcore/internal/session"
	"hrcore/pkg/requestcontext"
)

// SessionValidator defines the interface for validating session tokens.
type SessionValidator interface {
	Validate(tokenString string) (session.Session, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// Middleware validates the bearer session token and places actor identity and
// role on the request context.
func Middleware(validator SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			sess, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
				return
			}

			ctx = requestcontext.WithActor(ctx, sess.Email, string(sess.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireModule gates a route group on module access for the session role.
// Denials are generic: the response never names the missing permission.
func RequireModule(moduleID string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := authz.Normalize(requestcontext.Role(ctx))

			if !authz.CanAccessModule(role, moduleID) {
				logger.WarnContext(ctx, "module access denied",
					"module", moduleID,
					"role", string(role),
					"actor", requestcontext.Actor(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission gates a single route on an exact permission grant.
func RequirePermission(permission string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			role := authz.Normalize(requestcontext.Role(ctx))

			if !authz.HasPermission(role, permission) {
				logger.WarnContext(ctx, "permission denied",
					"role", string(role),
					"actor", requestcontext.Actor(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "access denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
