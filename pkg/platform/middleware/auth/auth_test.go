package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrcore/internal/authz"
	"hrcore/internal/platform/logger"
	"hrcore/internal/session"
	"hrcore/pkg/requestcontext"
)

func okHandler(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = requestcontext.Actor(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware(t *testing.T) {
	svc := session.NewService("test-key", time.Hour)
	log := logger.New()

	t.Run("valid token passes and sets actor", func(t *testing.T) {
		token, _, err := svc.Issue("grc@corp.example", authz.RoleGRC, 1)
		require.NoError(t, err)

		var actor string
		h := Middleware(svc, log)(okHandler(&actor))

		r := httptest.NewRequest(http.MethodGet, "/audit/events", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "grc@corp.example", actor)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		h := Middleware(svc, log)(okHandler(nil))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		h := Middleware(svc, log)(okHandler(nil))
		r := httptest.NewRequest(http.MethodGet, "/audit/events", nil)
		r.Header.Set("Authorization", "Bearer bogus")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireModule(t *testing.T) {
	log := logger.New()

	serve := func(role authz.Role, moduleID string) *httptest.ResponseRecorder {
		h := RequireModule(moduleID, log)(okHandler(nil))
		r := httptest.NewRequest(http.MethodGet, "/"+moduleID, nil)
		r = r.WithContext(requestcontext.WithActor(r.Context(), "someone@corp.example", string(role)))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	t.Run("grc may open audit", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(authz.RoleGRC, "audit").Code)
	})

	t.Run("employee denied audit with generic body", func(t *testing.T) {
		w := serve(authz.RoleEmployeeL1, "audit")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotContains(t, w.Body.String(), "audit:read")
	})
}

func TestRequirePermission(t *testing.T) {
	log := logger.New()
	h := RequirePermission("security:manage", log)(okHandler(nil))

	r := httptest.NewRequest(http.MethodPost, "/security/incidents", nil)
	r = r.WithContext(requestcontext.WithActor(r.Context(), "hr@corp.example", string(authz.RoleHR)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
