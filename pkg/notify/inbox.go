package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/storage"
)

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if filter.UserID == "" {
		return nil, ErrUserIDRequired
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("invalid notification status %q", filter.Status)
	}
	filter.Limit = filter.NormalizedLimit()

	notifications, err := s.store.ListNotifications(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns how many UNREAD notifications the user has.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	if userID == "" {
		return 0, ErrUserIDRequired
	}
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) (*model.Notification, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	n, err := s.store.MarkRead(ctx, userID, id, s.clock().UTC())
	if err != nil {
		return nil, translate(err)
	}
	return n, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	if userID == "" {
		return 0, ErrUserIDRequired
	}
	n, err := s.store.MarkAllRead(ctx, userID, s.clock().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

// Delete removes one of the user's notifications.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}
	if userID == "" {
		return ErrUserIDRequired
	}
	return translate(s.store.DeleteNotification(ctx, userID, id))
}

// ArchiveRead archives READ notifications that were read more than olderThan ago.
func (s *Service) ArchiveRead(ctx context.Context, olderThan time.Duration) (int, error) {
	if s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	n, err := s.store.ArchiveRead(ctx, s.clock().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("archive read notifications: %w", err)
	}
	return n, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
}
