// Package secrets covers the portal's small credential needs: random webhook
// signing secrets and bcrypt storage for one-time passcodes.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/bcrypt"

	dErrors "hrcore/pkg/domain-errors"
)

// entropyBytes is the raw length of a generated secret before encoding.
const entropyBytes = 32

// Generate returns a fresh random secret, base64url encoded without padding.
func Generate() (string, error) {
	buf := make([]byte, entropyBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash bcrypt-hashes a secret for storage. Only the hash is ever persisted;
// the plaintext passcode lives just long enough to be delivered.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	switch {
	case err == nil:
		return string(hashed), nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
	default:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash secret")
	}
}

// Verify compares a plaintext secret against a stored bcrypt hash.
// A mismatch comes back as CodeUnauthorized so callers can map it to a
// failed-verification response without inspecting bcrypt errors.
func Verify(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return dErrors.New(dErrors.CodeUnauthorized, "invalid secret")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify secret")
	}
}
