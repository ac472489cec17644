// Package notify creates deduplicated user notifications and serves the
// notification inbox.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/alerts"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/storage"
)

// DedupWindow is how far back an UNREAD notification with the same user,
// project and type is reused instead of creating a new one.
const DedupWindow = 24 * time.Hour

var (
	ErrNotFound           = errors.New("notification not found")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrTypeRequired       = errors.New("notification type is required")
	ErrStoreNotConfigured = errors.New("notification store is not configured")
)

// Outcome reports what CreateOrRefresh did.
type Outcome string

const (
	Created   Outcome = "created"
	Refreshed Outcome = "refreshed"
)

// Intent describes a notification a caller wants the user to see.
type Intent struct {
	UserID    string
	ProjectID *string
	Type      model.NotificationType
	Title     string
	Message   string
	Metadata  map[string]any
}

// Service applies the deduplication policy on top of a NotificationStore.
type Service struct {
	store     storage.NotificationStore
	notifiers []alerts.Notifier
	logger    *slog.Logger
	clock     func() time.Time
	newID     func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides how notification ids are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService creates a notification service. Notifiers receive every newly
// created notification; a nil logger discards logs.
func NewService(store storage.NotificationStore, notifiers []alerts.Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		store:     store,
		notifiers: notifiers,
		logger:    logger,
		clock:     time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrRefresh stores the notification unless an UNREAD one for the same
// user, project and type was created within DedupWindow, in which case that
// one gets the new message, metadata and creation time.
func (s *Service) CreateOrRefresh(ctx context.Context, in Intent) (*model.Notification, Outcome, error) {
	if s.store == nil {
		return nil, "", ErrStoreNotConfigured
	}
	if in.UserID == "" {
		return nil, "", ErrUserIDRequired
	}
	if in.Type == "" {
		return nil, "", ErrTypeRequired
	}

	now := s.clock().UTC()
	n := &model.Notification{
		ID:        s.newID(),
		UserID:    in.UserID,
		ProjectID: in.ProjectID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Status:    model.StatusUnread,
		Metadata:  in.Metadata,
		CreatedAt: now,
	}

	created, err := s.store.UpsertUnread(ctx, n, now.Add(-DedupWindow))
	if err != nil {
		return nil, "", fmt.Errorf("upsert notification: %w", err)
	}
	if !created {
		s.logger.Debug("notification refreshed", "id", n.ID, "user_id", n.UserID, "type", n.Type)
		return n, Refreshed, nil
	}

	s.logger.Info("notification created", "id", n.ID, "user_id", n.UserID, "type", n.Type)
	s.deliver(ctx, n)
	return n, Created, nil
}

// deliver fans a new notification out to the configured channels. Channel
// failures are logged only.
func (s *Service) deliver(ctx context.Context, n *model.Notification) {
	if len(s.notifiers) == 0 {
		return
	}
	msg := alerts.MessageFor(n)
	for _, notifier := range s.notifiers {
		if err := notifier.Send(ctx, msg); err != nil {
			s.logger.Error("failed to deliver notification",
				"notifier", notifier.Name(),
				"id", n.ID,
				"error", err,
			)
		}
	}
}
