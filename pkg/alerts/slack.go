package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

// SlackNotifier sends notifications to a Slack webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, msg Message) error {
	fields := []slackField{
		{Title: "Type", Value: string(msg.Type), Short: true},
	}
	if msg.ProjectID != "" {
		fields = append(fields, slackField{Title: "Project", Value: msg.ProjectID, Short: true})
	}
	if msg.Percentage > 0 {
		fields = append(fields, slackField{Title: "Budget Used", Value: fmt.Sprintf("%.1f%%", msg.Percentage), Short: true})
	}

	payload := slackPayload{
		Channel: s.channel,
		Attachments: []slackAttachment{
			{
				Color:  levelColor(msg.Level),
				Title:  msg.Title,
				Text:   msg.Text,
				Fields: fields,
				Footer: "PnL Guardian",
				Ts:     time.Now().Unix(),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

func levelColor(level model.AlertLevel) string {
	switch level {
	case model.AlertWarning:
		return "#ff9900" // orange
	case model.AlertDanger:
		return "#ff0000" // red
	case model.AlertCritical:
		return "#cc0000" // dark red
	default:
		return "#36a64f" // green
	}
}

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
