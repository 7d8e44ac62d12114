// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services without embedding business logic so transport concerns remain
// isolated.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrcore/internal/audit"
	"hrcore/internal/detection"
	"hrcore/internal/directory"
	"hrcore/internal/platform/middleware"
	ratelimitmw "hrcore/internal/ratelimit/middleware"
	"hrcore/internal/ratelimit/models"
	"hrcore/internal/session"
	"hrcore/pkg/platform/middleware/auth"
	"hrcore/pkg/platform/middleware/metadata"
)

// OTPService is the one-time-passcode flow consumed by the auth handlers.
type OTPService interface {
	Send(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

// EventRecorder is the audit write path.
type EventRecorder interface {
	Record(ctx context.Context, entry audit.Entry) (audit.Event, error)
}

// EventReader is the audit read path.
type EventReader interface {
	List(ctx context.Context, limit int) ([]audit.DisplayEvent, error)
}

// Handler holds the domain services behind the HTTP surface.
type Handler struct {
	sessions  *session.Service
	directory *directory.Directory
	otp       OTPService
	recorder  EventRecorder
	reader    EventReader
	incidents detection.Store
	logger    *slog.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(
	sessions *session.Service,
	dir *directory.Directory,
	otpService OTPService,
	recorder EventRecorder,
	reader EventReader,
	incidents detection.Store,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sessions:  sessions,
		directory: dir,
		otp:       otpService,
		recorder:  recorder,
		reader:    reader,
		incidents: incidents,
		logger:    logger,
	}
}

// NewRouter wires all endpoints with the middleware stack.
func NewRouter(h *Handler, limiter *ratelimitmw.Middleware, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metadata.Handler)

	// Unauthenticated, rate-limited auth flows. Login and OTP issuance are
	// throttled per source IP; verification per IP as well so a stolen
	// email cannot widen the attacker's budget.
	r.Group(func(r chi.Router) {
		r.With(limiter.Enforce(models.ScopeLogin, 5, time.Minute, nil)).
			Post("/auth/login", h.handleLogin)
		r.With(limiter.Enforce(models.ScopeOTPSend, 3, time.Minute, nil)).
			Post("/auth/otp/send", h.handleOTPSend)
		r.With(limiter.Enforce(models.ScopeOTPVerify, 10, time.Minute, nil)).
			Post("/auth/otp/verify", h.handleOTPVerify)
	})

	// Authenticated, module-gated reads.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.sessions, logger))
		r.With(auth.RequireModule("audit", logger)).
			Get("/audit/events", h.handleAuditEvents)
		r.With(auth.RequireModule("security", logger)).
			Get("/security/incidents", h.handleSecurityIncidents)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// recordAudit writes one audit event for a request, logging rather than
// failing the request when the write path errors.
func (h *Handler) recordAudit(r *http.Request, entry audit.Entry) {
	if h.recorder == nil {
		return
	}
	if _, err := h.recorder.Record(r.Context(), entry); err != nil {
		h.logger.Error("audit write failed", "activity", entry.ActivityName, "error", err)
	}
}
