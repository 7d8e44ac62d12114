package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	dErrors "hrcore/pkg/domain-errors"
)

// Environment names recognized in HR_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Audit write modes.
const (
	AuditWriteSync  = "sync"
	AuditWriteAsync = "async"
)

// Alert provider names. "console" prints to stdout and is development-only.
const (
	ProviderNone    = "none"
	ProviderConsole = "console"
	ProviderResend  = "resend"
	ProviderTwilio  = "twilio"
)

// Server captures process-level configuration for the HR portal core.
type Server struct {
	Addr        string
	Environment string

	JWTSigningKey string
	SessionTTL    time.Duration

	// Audit
	AuditWriteMode string
	AuditFilePath  string
	AuditMaxList   int

	// Alerting
	EmailProvider string
	EmailFrom     string
	ResendAPIKey  string
	SMSProvider   string
	TwilioSID     string
	TwilioToken   string
	TwilioFrom    string

	WebhookURLs          []string
	SIEMWebhookURL       string
	EDRWebhookURL        string
	WebhookSigningSecret string
	WebhookTimeout       time.Duration

	// Detection
	DedupWindow time.Duration

	// Rate limiting
	RateLimitBucketCap int
}

const defaultJWTKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:                 envOr("HR_ADDR", ":8080"),
		Environment:          envOr("HR_ENV", EnvDevelopment),
		JWTSigningKey:        envOr("HR_JWT_SIGNING_KEY", defaultJWTKey),
		SessionTTL:           envDurationOr("HR_SESSION_TTL", 12*time.Hour),
		AuditWriteMode:       envOr("HR_AUDIT_WRITE_MODE", AuditWriteSync),
		AuditFilePath:        envOr("HR_AUDIT_FILE_PATH", "audit-events.jsonl"),
		AuditMaxList:         envIntOr("HR_AUDIT_MAX_LIST", 200),
		EmailProvider:        envOr("HR_EMAIL_PROVIDER", ProviderNone),
		EmailFrom:            envOr("HR_EMAIL_FROM", "alerts@hrcore.local"),
		ResendAPIKey:         os.Getenv("HR_RESEND_API_KEY"),
		SMSProvider:          envOr("HR_SMS_PROVIDER", ProviderNone),
		TwilioSID:            os.Getenv("HR_TWILIO_ACCOUNT_SID"),
		TwilioToken:          os.Getenv("HR_TWILIO_AUTH_TOKEN"),
		TwilioFrom:           os.Getenv("HR_TWILIO_FROM"),
		SIEMWebhookURL:       os.Getenv("HR_SIEM_WEBHOOK_URL"),
		EDRWebhookURL:        os.Getenv("HR_EDR_WEBHOOK_URL"),
		WebhookSigningSecret: os.Getenv("HR_WEBHOOK_SIGNING_SECRET"),
		WebhookTimeout:       envDurationOr("HR_WEBHOOK_TIMEOUT", 5*time.Second),
		DedupWindow:          envDurationOr("HR_INCIDENT_DEDUP_WINDOW", 30*time.Minute),
		RateLimitBucketCap:   envIntOr("HR_RATELIMIT_BUCKET_CAP", 10000),
	}

	if urls := os.Getenv("HR_ALERT_WEBHOOK_URLS"); urls != "" {
		for _, u := range strings.Split(urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.WebhookURLs = append(cfg.WebhookURLs, u)
			}
		}
	}

	return cfg
}

// IsProduction reports whether the process runs with production guarantees.
func (c Server) IsProduction() bool {
	return c.Environment == EnvProduction
}

// HasWebhookTargets reports whether any webhook destination is configured.
func (c Server) HasWebhookTargets() bool {
	return len(c.WebhookURLs) > 0 || c.SIEMWebhookURL != "" || c.EDRWebhookURL != ""
}

// Validate enforces startup safety. Unsafe production configuration fails the
// process at boot, never at request time.
func (c Server) Validate() error {
	if c.AuditWriteMode != AuditWriteSync && c.AuditWriteMode != AuditWriteAsync {
		return dErrors.New(dErrors.CodeConfiguration,
			fmt.Sprintf("HR_AUDIT_WRITE_MODE must be %q or %q", AuditWriteSync, AuditWriteAsync))
	}

	if !c.IsProduction() {
		return nil
	}

	if c.JWTSigningKey == defaultJWTKey || c.JWTSigningKey == "" {
		return dErrors.New(dErrors.CodeConfiguration, "production requires HR_JWT_SIGNING_KEY")
	}
	if c.EmailProvider == ProviderConsole {
		return dErrors.New(dErrors.CodeConfiguration, "console email provider is not allowed in production")
	}
	if c.SMSProvider == ProviderConsole {
		return dErrors.New(dErrors.CodeConfiguration, "console sms provider is not allowed in production")
	}
	if c.EmailProvider == ProviderResend && c.ResendAPIKey == "" {
		return dErrors.New(dErrors.CodeConfiguration, "resend provider requires HR_RESEND_API_KEY")
	}
	if c.SMSProvider == ProviderTwilio && (c.TwilioSID == "" || c.TwilioToken == "" || c.TwilioFrom == "") {
		return dErrors.New(dErrors.CodeConfiguration, "twilio provider requires account sid, auth token and sender")
	}
	if c.HasWebhookTargets() && c.WebhookSigningSecret == "" {
		return dErrors.New(dErrors.CodeConfiguration, "webhook targets require HR_WEBHOOK_SIGNING_SECRET in production")
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
