package alerts

import (
	"context"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

// Message is a newly created notification handed to outbound channels.
type Message struct {
	NotificationID string                 `json:"notification_id"`
	UserID         string                 `json:"user_id"`
	ProjectID      string                 `json:"project_id,omitempty"`
	Type           model.NotificationType `json:"type"`
	Level          model.AlertLevel       `json:"level,omitempty"`
	Title          string                 `json:"title"`
	Text           string                 `json:"text"`
	Percentage     float64                `json:"percentage,omitempty"`
}

// MessageFor builds the outbound form of a notification. The level and
// percentage are filled in for budget notifications.
func MessageFor(n *model.Notification) Message {
	msg := Message{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Text:           n.Message,
	}
	if n.ProjectID != nil {
		msg.ProjectID = *n.ProjectID
	}
	for _, tier := range Tiers {
		if tier.Type == n.Type {
			msg.Level = tier.Level
			break
		}
	}
	if pct, ok := n.Metadata["percentage"].(float64); ok {
		msg.Percentage = pct
	}
	return msg
}

// Notifier delivers notifications to an external system.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers a message. Implementations must be safe for concurrent use.
	Send(ctx context.Context, msg Message) error
}
