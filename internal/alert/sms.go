package alert

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const twilioEndpoint = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

// sendSMS dispatches the notification over the resolved SMS provider to the
// merged explicit plus role-derived recipient list.
func (d *Dispatcher) sendSMS(ctx context.Context, n Notification) DeliveryResult {
	provider, _ := ResolveProvider(n.SMSProviderOverride, d.cfg.SMSProvider)
	recipients := resolvePhoneRecipients(d.directory, n.PhoneRecipients)
	return d.deliverSMS(ctx, provider, recipients, n.Body)
}

// SendSMS delivers one message to one phone number outside the incident
// pipeline. One-time-passcode delivery uses this entry point; the directory
// distribution list is deliberately not consulted. A disabled provider is
// reported as a skipped result, not an error; the caller decides whether
// delivery was required.
func (d *Dispatcher) SendSMS(ctx context.Context, phone, body string) DeliveryResult {
	provider, _ := ResolveProvider("", d.cfg.SMSProvider)
	return d.deliverSMS(ctx, provider, []string{phone}, body)
}

func (d *Dispatcher) deliverSMS(ctx context.Context, provider string, recipients []string, body string) DeliveryResult {
	result := DeliveryResult{Channel: ChannelSMS, Provider: provider}

	if provider == ProviderNone {
		result.Status = StatusSkipped
		result.Reason = ReasonProviderDisabled
		return result
	}

	result.Recipients = len(recipients)
	if len(recipients) == 0 {
		result.Status = StatusSkipped
		result.Reason = ReasonNoRecipients
		return result
	}

	switch provider {
	case ProviderConsole:
		d.logger.Info("console sms alert", "body", body, "recipients", recipients)
		result.Status = StatusSent
		result.Delivered = len(recipients)
	case ProviderTwilio:
		delivered := 0
		for _, phone := range recipients {
			if err := d.sendTwilio(ctx, phone, body); err != nil {
				d.logger.Warn("sms alert delivery failed", "error", err)
				continue
			}
			delivered++
		}
		result.Delivered = delivered
		switch {
		case delivered == len(recipients):
			result.Status = StatusSent
		case delivered > 0:
			result.Status = StatusPartial
			result.Reason = ReasonProviderError
		default:
			result.Status = StatusFailed
			result.Reason = ReasonProviderError
		}
	default:
		result.Status = StatusFailed
		result.Reason = fmt.Sprintf("unknown provider %q", provider)
	}
	return result
}

func (d *Dispatcher) sendTwilio(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", d.cfg.TwilioFrom)
	form.Set("Body", body)

	endpoint := fmt.Sprintf(twilioEndpoint, d.cfg.TwilioSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(d.cfg.TwilioSID, d.cfg.TwilioToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio returned status %d", resp.StatusCode)
	}
	return nil
}
