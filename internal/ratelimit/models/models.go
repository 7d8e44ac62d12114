package models

import "time"

// Well-known rate limit scopes. Scopes namespace identifiers so a login
// counter can never collide with an export counter for the same user.
const (
	ScopeLogin = "login"

	// OTP issuance and verification get separate budgets. Sending
	// triggers an SMS per request so its limit is tighter; sharing one
	// bucket would let verification attempts drain the send budget and
	// vice versa.
	ScopeOTPSend   = "otp_send"
	ScopeOTPVerify = "otp_verify"

	ScopeExport = "export"
	ScopeAPI    = "api"
)

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	Count      int       `json:"count"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only meaningful when not allowed
}
