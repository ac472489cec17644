package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Headers set on every webhook delivery.
const (
	HeaderEvent     = "X-PnL-Event"
	HeaderDelivery  = "X-PnL-Delivery"
	HeaderProject   = "X-PnL-Project"
	HeaderSignature = "X-Signature-256"
)

// WebhookNotifier posts notifications as JSON events to an HTTP endpoint.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier. A non-empty secret signs
// each body with HMAC-SHA256.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

type webhookEvent struct {
	Event        string  `json:"event"`
	Timestamp    string  `json:"timestamp"`
	Notification Message `json:"notification"`
}

// EventName maps a notification type to its webhook event,
// e.g. BUDGET_WARNING_75 becomes "notification.budget_warning_75".
func EventName(msg Message) string {
	if msg.Type == "" {
		return "notification"
	}
	return "notification." + strings.ToLower(string(msg.Type))
}

func (w *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	event := EventName(msg)
	body, err := json.Marshal(webhookEvent{
		Event:        event,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Notification: msg,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PnL-Guardian/1.0")
	req.Header.Set(HeaderEvent, event)
	if msg.NotificationID != "" {
		req.Header.Set(HeaderDelivery, msg.NotificationID)
	}
	if msg.ProjectID != "" {
		req.Header.Set(HeaderProject, msg.ProjectID)
	}
	if w.secret != "" {
		req.Header.Set(HeaderSignature, "sha256="+sign(body, w.secret))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver %s to webhook: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected %s: status %d", event, resp.StatusCode)
	}
	return nil
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
