package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

// ErrNotFound is returned when a requested row does not exist or does not
// belong to the caller.
var ErrNotFound = errors.New("not found")

// ProjectStore persists projects together with their expenses and milestones.
type ProjectStore interface {
	// SaveProject creates or updates a project. Its expenses and milestones
	// become exactly the ones attached: matching ids are updated, stored rows
	// missing from the project are deleted. Missing ids are generated.
	SaveProject(ctx context.Context, project *model.Project) error

	// GetProject loads a project with its expenses and milestones.
	GetProject(ctx context.Context, id string) (*model.Project, error)

	// ListProjects returns the owner's projects, newest first, with expenses
	// and milestones loaded. An empty ownerID lists every project.
	ListProjects(ctx context.Context, ownerID string) ([]model.Project, error)

	// AddExpense books an expense against an existing project.
	AddExpense(ctx context.Context, expense *model.Expense) error

	// AddMilestone adds a milestone to an existing project.
	AddMilestone(ctx context.Context, milestone *model.Milestone) error
}

// NotificationStore persists user notifications.
type NotificationStore interface {
	// UpsertUnread refreshes the newest UNREAD notification with the same
	// user, project and type created at or after since, or inserts n when
	// there is none. Lookup and write happen atomically. On return n holds
	// the stored row. created reports whether a new row was inserted.
	UpsertUnread(ctx context.Context, n *model.Notification, since time.Time) (created bool, err error)

	// ListNotifications returns a user's notifications, newest first.
	ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, error)

	// CountUnread returns the number of UNREAD notifications for a user.
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead sets a user's notification to READ.
	MarkRead(ctx context.Context, userID, id string, at time.Time) (*model.Notification, error)

	// MarkAllRead sets every UNREAD notification of a user to READ and
	// returns how many changed.
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)

	// DeleteNotification removes a user's notification.
	DeleteNotification(ctx context.Context, userID, id string) error

	// ArchiveRead moves READ notifications read before cutoff to ARCHIVED.
	// Rows without a read time fall back to their creation time.
	ArchiveRead(ctx context.Context, cutoff time.Time) (int, error)
}

// Storage is the full persistence layer.
type Storage interface {
	ProjectStore
	NotificationStore

	// Close releases resources.
	Close() error
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
