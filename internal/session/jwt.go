package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hrcore/internal/authz"
	dErrors "hrcore/pkg/domain-errors"
)

// Claims represents the JWT claims for portal session tokens.
type Claims struct {
	Email          string `json:"email"`
	Role           string `json:"role"`
	SessionVersion int    `json:"session_version"`
	jwt.RegisteredClaims
}

// Service handles session token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewService(signingKey string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     "hrcore",
		ttl:        ttl,
	}
}

// Issue mints a signed session token for the identity and role.
// sessionVersion increments whenever the identity's role assignment changes,
// which invalidates previously issued sessions at validation time.
func (s *Service) Issue(email string, role authz.Role, sessionVersion int) (string, Session, error) {
	now := time.Now()
	sess := Session{
		Email:          email,
		Role:           role,
		SessionVersion: sessionVersion,
		IssuedAt:       now,
		ExpiresAt:      now.Add(s.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:          email,
		Role:           string(role),
		SessionVersion: sessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, sess, nil
}

// Validate parses and verifies a session token, returning the session state.
func (s *Service) Validate(tokenString string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, dErrors.New(dErrors.CodeUnauthorized, "session has expired")
		}
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session claims")
	}

	sess := Session{
		Email:          claims.Email,
		Role:           authz.Normalize(claims.Role),
		SessionVersion: claims.SessionVersion,
	}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
