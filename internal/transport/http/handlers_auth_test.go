package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrcore/internal/audit"
	auditmemory "hrcore/internal/audit/store/memory"
	"hrcore/internal/detection"
	detectionmemory "hrcore/internal/detection/store/memory"
	"hrcore/internal/directory"
	"hrcore/internal/platform/logger"
	ratelimitmw "hrcore/internal/ratelimit/middleware"
	ratelimitsvc "hrcore/internal/ratelimit/service"
	"hrcore/internal/ratelimit/store/bucket"
	"hrcore/internal/session"
	dErrors "hrcore/pkg/domain-errors"
)

// stubOTP scripts the OTP flow for handler tests.
type stubOTP struct {
	sendErr   error
	verifyErr error
	sent      []string
}

func (s *stubOTP) Send(_ context.Context, email string) error {
	s.sent = append(s.sent, email)
	return s.sendErr
}

func (s *stubOTP) Verify(context.Context, string, string) error {
	return s.verifyErr
}

type testPortal struct {
	router    http.Handler
	store     *auditmemory.Store
	incidents *detectionmemory.Store
	otp       *stubOTP
	sessions  *session.Service
}

func newTestPortal(t *testing.T) *testPortal {
	t.Helper()
	log := logger.New()
	store := auditmemory.New()
	recorder := audit.New(store, log)
	reader := audit.NewReader(nil, store, log, 200)
	incidents := detectionmemory.New()
	sessions := session.NewService("test-signing-key", time.Hour)
	otpSvc := &stubOTP{}

	h := NewHandler(sessions, directory.Default(), otpSvc, recorder, reader, incidents, log)
	limiter := ratelimitmw.New(ratelimitsvc.New(bucket.NewInMemoryStore(), log), log)

	return &testPortal{
		router:    NewRouter(h, limiter, log),
		store:     store,
		incidents: incidents,
		otp:       otpSvc,
		sessions:  sessions,
	}
}

func (p *testPortal) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin(t *testing.T) {
	t.Run("known identity gets a session", func(t *testing.T) {
		p := newTestPortal(t)

		rec := p.do(t, http.MethodPost, "/auth/login", `{"email":"GRC@corp.example"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp loginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "GRC", resp.Role)

		events, err := p.store.List(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Logged in", events[0].ActivityName)
		assert.Equal(t, "grc@corp.example", events[0].PerformedBy)
	})

	t.Run("unknown identity denied and audited", func(t *testing.T) {
		p := newTestPortal(t)

		rec := p.do(t, http.MethodPost, "/auth/login", `{"email":"intruder@corp.example"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		events, err := p.store.List(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.StatusFailed, events[0].Status)
	})

	t.Run("missing email rejected", func(t *testing.T) {
		p := newTestPortal(t)

		rec := p.do(t, http.MethodPost, "/auth/login", `{}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rate limited after repeated attempts", func(t *testing.T) {
		p := newTestPortal(t)

		var rec *httptest.ResponseRecorder
		for i := 0; i < 6; i++ {
			rec = p.do(t, http.MethodPost, "/auth/login", `{"email":"grc@corp.example"}`, "")
		}
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	})
}

func TestHandleOTP(t *testing.T) {
	t.Run("send accepted", func(t *testing.T) {
		p := newTestPortal(t)

		rec := p.do(t, http.MethodPost, "/auth/otp/send", `{"email":"alice@corp.example"}`, "")
		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, []string{"alice@corp.example"}, p.otp.sent)
	})

	t.Run("unknown identity indistinguishable from success", func(t *testing.T) {
		p := newTestPortal(t)
		p.otp.sendErr = dErrors.New(dErrors.CodeNotFound, "no phone number registered for identity")

		rec := p.do(t, http.MethodPost, "/auth/otp/send", `{"email":"intruder@corp.example"}`, "")
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("verify failure surfaces unauthorized", func(t *testing.T) {
		p := newTestPortal(t)
		p.otp.verifyErr = dErrors.New(dErrors.CodeUnauthorized, "invalid passcode")

		rec := p.do(t, http.MethodPost, "/auth/otp/verify", `{"email":"alice@corp.example","code":"000000"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("verify success", func(t *testing.T) {
		p := newTestPortal(t)

		rec := p.do(t, http.MethodPost, "/auth/otp/verify", `{"email":"alice@corp.example","code":"123456"}`, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("send and verify budgets are independent", func(t *testing.T) {
		p := newTestPortal(t)

		// Exhaust the issuance budget.
		var rec *httptest.ResponseRecorder
		for i := 0; i < 4; i++ {
			rec = p.do(t, http.MethodPost, "/auth/otp/send", `{"email":"alice@corp.example"}`, "")
		}
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))

		// Verification still has its own, larger budget from the same IP.
		rec = p.do(t, http.MethodPost, "/auth/otp/verify", `{"email":"alice@corp.example","code":"123456"}`, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	})
}

func TestHealthz(t *testing.T) {
	p := newTestPortal(t)

	rec := p.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

var _ detection.Store = (*detectionmemory.Store)(nil)
