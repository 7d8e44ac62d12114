// Package middleware enforces rate limits on HTTP routes.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"hrcore/internal/platform/privacy"
	"hrcore/internal/ratelimit/models"
	"hrcore/internal/ratelimit/service"
	"hrcore/pkg/platform/middleware/metadata"
)

// IdentifierFunc derives the rate limit identifier from a request. Returning
// "" falls back to the client's source IP.
type IdentifierFunc func(r *http.Request) string

// Middleware applies per-route fixed-window limits.
type Middleware struct {
	limiter *service.Limiter
	logger  *slog.Logger
}

func New(limiter *service.Limiter, logger *slog.Logger) *Middleware {
	return &Middleware{limiter: limiter, logger: logger}
}

// Enforce limits a route by scope. The identifier is taken from identifierFn
// when provided and non-empty, otherwise from the request's source IP (first
// X-Forwarded-For entry, then alternate proxy headers, else "unknown").
func (m *Middleware) Enforce(scope string, limit int, window time.Duration, identifierFn IdentifierFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := ""
			if identifierFn != nil {
				identifier = identifierFn(r)
			}
			if identifier == "" {
				identifier = metadata.ClientIP(r)
			}

			result := m.limiter.Consume(scope, identifier, limit, window)
			addHeaders(w, result)

			if !result.Allowed {
				m.logger.Warn("rate limit exceeded",
					"scope", scope,
					"identifier_ip", privacy.AnonymizeIP(identifier),
					"retry_after", result.RetryAfter,
				)
				writeExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addHeaders(w http.ResponseWriter, result models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeExceeded(w http.ResponseWriter, result models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","message":"Too many requests. Please try again later.","retry_after":` +
		strconv.Itoa(result.RetryAfter) + `}`))
}
