package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const resendEndpoint = "https://api.resend.com/emails"

// sendEmail dispatches the notification over the resolved email provider and
// returns the channel result. Provider errors become a failed result, never
// an error return.
func (d *Dispatcher) sendEmail(ctx context.Context, n Notification) DeliveryResult {
	provider, rule := ResolveProvider(n.EmailProviderOverride, d.cfg.EmailProvider)
	result := DeliveryResult{Channel: ChannelEmail, Provider: provider}

	if provider == ProviderNone {
		result.Status = StatusSkipped
		result.Reason = ReasonProviderDisabled
		return result
	}

	recipients := resolveEmailRecipients(d.directory, n.EmailRecipients)
	result.Recipients = len(recipients)
	if len(recipients) == 0 {
		result.Status = StatusSkipped
		result.Reason = ReasonNoRecipients
		return result
	}

	switch provider {
	case ProviderConsole:
		d.logger.Info("console email alert",
			"subject", n.Subject,
			"recipients", recipients,
			"severity", n.Severity,
		)
		result.Status = StatusSent
		result.Delivered = len(recipients)
	case ProviderResend:
		if err := d.sendResend(ctx, n, recipients); err != nil {
			d.logger.Warn("email alert delivery failed",
				"provider", provider,
				"rule", rule,
				"error", err,
			)
			result.Status = StatusFailed
			result.Reason = ReasonProviderError
			return result
		}
		result.Status = StatusSent
		result.Delivered = len(recipients)
	default:
		result.Status = StatusFailed
		result.Reason = fmt.Sprintf("unknown provider %q", provider)
	}
	return result
}

func (d *Dispatcher) sendResend(ctx context.Context, n Notification, recipients []string) error {
	body, err := json.Marshal(map[string]any{
		"from":    d.cfg.EmailFrom,
		"to":      recipients,
		"subject": n.Subject,
		"text":    n.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.cfg.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	return nil
}
