package alerts_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/alerts"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

func TestWebhookNotifier_Name(t *testing.T) {
	n := alerts.NewWebhookNotifier("https://example.com/webhook", "")
	assert.Equal(t, "webhook", n.Name())
}

func TestWebhookNotifier_Send(t *testing.T) {
	var received map[string]any
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "PnL-Guardian/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, http.MethodPost, r.Method)

		err := json.NewDecoder(r.Body).Decode(&received)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := alerts.NewWebhookNotifier(server.URL, "")
	msg := alerts.Message{
		NotificationID: "n1",
		UserID:         "u1",
		ProjectID:      "p1",
		Type:           model.NotificationBudgetExceeded,
		Level:          model.AlertCritical,
		Title:          "Budget Exceeded!",
		Percentage:     104.2,
	}

	err := n.Send(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, "notification.budget_exceeded", received["event"])
	assert.Equal(t, "notification.budget_exceeded", headers.Get(alerts.HeaderEvent))
	assert.Equal(t, "n1", headers.Get(alerts.HeaderDelivery))
	assert.Equal(t, "p1", headers.Get(alerts.HeaderProject))
	assert.NotEmpty(t, received["timestamp"])

	notification := received["notification"].(map[string]any)
	assert.Equal(t, "BUDGET_EXCEEDED", notification["type"])
	assert.Equal(t, "u1", notification["user_id"])
	assert.Equal(t, 104.2, notification["percentage"])
}

func TestWebhookNotifier_Send_WithHMAC(t *testing.T) {
	var signature string
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("X-Signature-256")
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := alerts.NewWebhookNotifier(server.URL, "test-secret")
	err := n.Send(context.Background(), alerts.Message{Level: model.AlertWarning})
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write(body)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), signature)
}

func TestWebhookNotifier_Send_NoHMAC(t *testing.T) {
	var hasSignature bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasSignature = r.Header.Get("X-Signature-256") != ""
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := alerts.NewWebhookNotifier(server.URL, "")
	err := n.Send(context.Background(), alerts.Message{Level: model.AlertWarning})
	require.NoError(t, err)
	assert.False(t, hasSignature)
}

func TestWebhookNotifier_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	n := alerts.NewWebhookNotifier(server.URL, "")
	err := n.Send(context.Background(), alerts.Message{Level: model.AlertWarning})
	assert.ErrorContains(t, err, "status 503")
}

func TestWebhookNotifier_Send_WithoutProject(t *testing.T) {
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := alerts.NewWebhookNotifier(server.URL, "")
	err := n.Send(context.Background(), alerts.Message{NotificationID: "n2", Type: model.NotificationProjectUpdate})
	require.NoError(t, err)
	assert.Equal(t, "notification.project_update", headers.Get(alerts.HeaderEvent))
	assert.Empty(t, headers.Get(alerts.HeaderProject))
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "notification.budget_warning_75", alerts.EventName(alerts.Message{Type: model.NotificationBudgetWarning75}))
	assert.Equal(t, "notification", alerts.EventName(alerts.Message{}))
}
