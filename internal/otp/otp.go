// Package otp implements one-time-passcode issuance and verification for
// step-up authentication. Codes are delivered over SMS and hashed at rest;
// failed verifications feed the security detection rules through the audit
// trail.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"hrcore/internal/alert"
	"hrcore/internal/audit"
	dErrors "hrcore/pkg/domain-errors"
	"hrcore/pkg/secrets"
)

const (
	codeDigits      = 6
	defaultTTL      = 5 * time.Minute
	defaultAttempts = 5
)

// SMSSender is the direct SMS entry point of the alert dispatcher.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, body string) alert.DeliveryResult
}

// Recorder is the audit write path.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) (audit.Event, error)
}

// IdentityResolver maps an email to its registered phone number.
type IdentityResolver interface {
	Phone(email string) (string, bool)
}

// pending is one issued, not-yet-verified code.
type pending struct {
	hash      string
	expiresAt time.Time
	attempts  int
}

// Service issues and verifies one-time passcodes.
type Service struct {
	sender      SMSSender
	recorder    Recorder
	identities  IdentityResolver
	logger      *slog.Logger
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time

	mu    sync.Mutex
	codes map[string]*pending
}

// Option configures the Service.
type Option func(*Service)

// WithTTL sets the code lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithMaxAttempts caps verification attempts per issued code.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		s.maxAttempts = n
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates the Service.
func New(sender SMSSender, recorder Recorder, identities IdentityResolver, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sender:      sender,
		recorder:    recorder,
		identities:  identities,
		logger:      logger,
		ttl:         defaultTTL,
		maxAttempts: defaultAttempts,
		now:         time.Now,
		codes:       make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send issues a fresh code for the identity and delivers it over SMS.
// Delivery is required: if the SMS send does not report success the issued
// code is revoked, so a code that was never delivered can never verify.
func (s *Service) Send(ctx context.Context, email string) error {
	phone, ok := s.identities.Phone(email)
	if !ok || phone == "" {
		return dErrors.New(dErrors.CodeNotFound, "no phone number registered for identity")
	}

	code, err := generateCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not generate passcode")
	}
	hash, err := secrets.Hash(code)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not hash passcode")
	}

	s.mu.Lock()
	s.codes[email] = &pending{hash: hash, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	result := s.sender.SendSMS(ctx, phone, fmt.Sprintf("Your HR portal verification code is %s", code))
	if result.Status != alert.StatusSent {
		// Delivery required: revoke the code the recipient never saw.
		s.mu.Lock()
		delete(s.codes, email)
		s.mu.Unlock()
		s.logger.Warn("passcode delivery failed, code revoked",
			"provider", result.Provider,
			"status", result.Status,
			"reason", result.Reason,
		)
		return dErrors.New(dErrors.CodeDependencyUnavailable, "passcode delivery failed")
	}

	s.audit(ctx, audit.Entry{
		ActivityName: "One-time passcode sent",
		Status:       audit.StatusCompleted,
		Module:       "auth",
		PerformedBy:  email,
	})
	return nil
}

// Verify checks a submitted code. Every failure is indistinguishable to the
// caller (unauthorized) and audited so the detection engine can count
// bursts per actor.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	if err := s.check(email, code); err != nil {
		s.audit(ctx, audit.Entry{
			ActivityName: "One-time passcode verification failed",
			Status:       audit.StatusFailed,
			Module:       "auth",
			PerformedBy:  email,
		})
		return err
	}

	s.audit(ctx, audit.Entry{
		ActivityName: "One-time passcode verified",
		Status:       audit.StatusCompleted,
		Module:       "auth",
		PerformedBy:  email,
	})
	return nil
}

func (s *Service) check(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	issued, ok := s.codes[email]
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid passcode")
	}
	if s.now().After(issued.expiresAt) {
		delete(s.codes, email)
		return dErrors.New(dErrors.CodeUnauthorized, "invalid passcode")
	}
	if issued.attempts >= s.maxAttempts {
		delete(s.codes, email)
		return dErrors.New(dErrors.CodeUnauthorized, "invalid passcode")
	}

	if err := secrets.Verify(code, issued.hash); err != nil {
		issued.attempts++
		return dErrors.New(dErrors.CodeUnauthorized, "invalid passcode")
	}

	delete(s.codes, email)
	return nil
}

func (s *Service) audit(ctx context.Context, entry audit.Entry) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Error("otp audit write failed", "activity", entry.ActivityName, "error", err)
	}
}

func generateCode() (string, error) {
	bound := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		bound.Mul(bound, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
