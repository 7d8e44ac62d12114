package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrcore/internal/platform/logger"
	"hrcore/internal/ratelimit/models"
	"hrcore/internal/ratelimit/service"
	"hrcore/internal/ratelimit/store/bucket"
)

func newMiddleware() *Middleware {
	store := bucket.NewInMemoryStore()
	return New(service.New(store, logger.New()), logger.New())
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestEnforce_ByIP(t *testing.T) {
	m := newMiddleware()
	h := m.Enforce(models.ScopeAPI, 2, time.Minute, nil)(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/employees", nil)
		r.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7").Code)
	assert.Equal(t, http.StatusOK, send("203.0.113.7").Code)

	denied := send("203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, denied.Code)

	t.Run("denial carries retry headers", func(t *testing.T) {
		retryAfter, err := strconv.Atoi(denied.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, retryAfter, 1)
		assert.LessOrEqual(t, retryAfter, 60)

		assert.Equal(t, "2", denied.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", denied.Header().Get("X-RateLimit-Remaining"))

		reset, err := strconv.ParseInt(denied.Header().Get("X-RateLimit-Reset"), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, reset, time.Now().Unix()-1)
	})

	t.Run("other ip unaffected", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("198.51.100.3").Code)
	})
}

func TestEnforce_ExplicitIdentifier(t *testing.T) {
	m := newMiddleware()
	byUser := func(r *http.Request) string { return r.Header.Get("X-Test-User") }
	h := m.Enforce(models.ScopeLogin, 1, time.Minute, byUser)(okHandler())

	send := func(user string) int {
		r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		r.Header.Set("X-Test-User", user)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("a@x.com"))
	assert.Equal(t, http.StatusTooManyRequests, send("a@x.com"))
	assert.Equal(t, http.StatusOK, send("b@x.com"))
}

func TestEnforce_HeadersOnAllowedResponses(t *testing.T) {
	m := newMiddleware()
	h := m.Enforce(models.ScopeAPI, 5, time.Minute, nil)(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/employees", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}
