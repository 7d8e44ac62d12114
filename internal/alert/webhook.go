package alert

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// webhookTarget is one POST destination. Named targets (siem, edr) are
// tagged so failures are attributable in logs.
type webhookTarget struct {
	name string
	url  string
}

// sendWebhook POSTs the notification payload to every configured target
// concurrently, each under its own timeout. Aggregate status is sent when
// all targets succeed, partial when some do, failed when none do.
func (d *Dispatcher) sendWebhook(ctx context.Context, n Notification) DeliveryResult {
	result := DeliveryResult{Channel: ChannelWebhook, Provider: ProviderHTTP}

	targets := d.webhookTargets()
	result.Recipients = len(targets)
	if len(targets) == 0 {
		result.Status = StatusSkipped
		result.Reason = ReasonNoTargets
		return result
	}

	body, err := json.Marshal(n.Payload)
	if err != nil {
		result.Status = StatusFailed
		result.Reason = ReasonProviderError
		return result
	}
	signature := d.sign(body)

	var delivered atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		g.Go(func() error {
			if err := d.postWebhook(ctx, target, body, signature); err != nil {
				d.logger.Warn("webhook alert delivery failed",
					"target", target.name,
					"error", err,
				)
				// Per-target failures are aggregated, not propagated, so
				// sibling targets keep running.
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result.Delivered = int(delivered.Load())
	switch {
	case result.Delivered == len(targets):
		result.Status = StatusSent
	case result.Delivered > 0:
		result.Status = StatusPartial
		result.Reason = ReasonProviderError
	default:
		result.Status = StatusFailed
		result.Reason = ReasonProviderError
	}
	return result
}

func (d *Dispatcher) webhookTargets() []webhookTarget {
	var targets []webhookTarget
	for i, u := range d.cfg.WebhookURLs {
		targets = append(targets, webhookTarget{name: fmt.Sprintf("webhook_%d", i), url: u})
	}
	if d.cfg.SIEMWebhookURL != "" {
		targets = append(targets, webhookTarget{name: "siem", url: d.cfg.SIEMWebhookURL})
	}
	if d.cfg.EDRWebhookURL != "" {
		targets = append(targets, webhookTarget{name: "edr", url: d.cfg.EDRWebhookURL})
	}
	return targets
}

// postWebhook delivers one signed POST under its own deadline so a slow
// target cannot hold up the rest of the fan-out.
func (d *Dispatcher) postWebhook(ctx context.Context, target webhookTarget, body []byte, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.WebhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-HRCore-Signature", signature)
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if d.metrics != nil {
		d.metrics.WebhookRTT.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("target %s returned status %d", target.name, resp.StatusCode)
	}
	return nil
}

// sign computes the hex HMAC-SHA256 of the payload under the configured
// signing secret. Empty secret means unsigned (rejected in production by
// config validation).
func (d *Dispatcher) sign(body []byte) string {
	if d.cfg.WebhookSigningSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(d.cfg.WebhookSigningSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
