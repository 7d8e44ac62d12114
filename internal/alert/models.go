package alert

// Channel identifies an alert delivery channel.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelWebhook Channel = "webhook"
)

// Provider names. Console is development-only and rejected by startup
// validation in production.
const (
	ProviderNone    = "none"
	ProviderConsole = "console"
	ProviderResend  = "resend"
	ProviderTwilio  = "twilio"
	ProviderHTTP    = "http"
)

// Delivery statuses.
const (
	StatusSent    = "sent"
	StatusPartial = "partial"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Skip/failure reasons.
const (
	ReasonProviderDisabled = "provider_disabled"
	ReasonNoRecipients     = "no_recipients"
	ReasonNoTargets        = "no_targets"
	ReasonProviderError    = "provider_error"
)

// Notification is the channel-independent payload for one alert.
type Notification struct {
	Subject  string
	Body     string
	Severity string

	// Payload is posted verbatim to webhook targets.
	Payload map[string]any

	// Explicit recipients, merged with role-derived directory lists.
	EmailRecipients []string
	PhoneRecipients []string

	// Per-alert provider overrides. Empty means use the configured default.
	EmailProviderOverride string
	SMSProviderOverride   string
}

// DeliveryResult reports the outcome of one channel's dispatch.
type DeliveryResult struct {
	Channel    Channel `json:"channel"`
	Provider   string  `json:"provider"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
	Recipients int     `json:"recipients"`
	Delivered  int     `json:"delivered"`
}
