// Package session mints and validates the portal's session tokens.
//
// A session is immutable once issued: identity, role and session version are
// fixed at login. Role changes mint a new session rather than mutating an
// existing one.
package session

import (
	"time"

	"hrcore/internal/authz"
)

// Session is the authenticated state carried by a token.
type Session struct {
	Email          string
	Role           authz.Role
	SessionVersion int
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
