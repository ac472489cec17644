package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

const notificationColumns = `id, user_id, project_id, type, title, message, status, metadata, created_at, read_at`

func (s *Store) UpsertUnread(ctx context.Context, n *model.Notification, since time.Time) (bool, error) {
	if n.UserID == "" {
		return false, fmt.Errorf("upsert notification: user id is required")
	}
	if n.ID == "" {
		n.ID = s.newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	metadata, err := encodeMetadata(n.Metadata)
	if err != nil {
		return false, err
	}

	created := false
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if s.dialect.lockKey != nil {
			if err := s.dialect.lockKey(ctx, tx, dedupKey(n)); err != nil {
				return err
			}
		}

		query := `SELECT id FROM notifications
			WHERE user_id = ? AND type = ? AND status = 'UNREAD' AND created_at >= ?`
		args := []any{n.UserID, string(n.Type), toMillis(since)}
		if n.ProjectID == nil {
			query += " AND project_id IS NULL"
		} else {
			query += " AND project_id = ?"
			args = append(args, *n.ProjectID)
		}
		query += " ORDER BY created_at DESC LIMIT 1"

		var existingID string
		err := tx.QueryRowContext(ctx, s.rebind(query), args...).Scan(&existingID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO notifications (`+notificationColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, 'UNREAD', ?, ?, NULL)`),
				n.ID, n.UserID, nullString(n.ProjectID), string(n.Type), n.Title, n.Message,
				metadata, toMillis(n.CreatedAt),
			)
			if err != nil {
				return fmt.Errorf("insert notification: %w", err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("find unread notification: %w", err)
		default:
			_, err = tx.ExecContext(ctx, s.rebind(`UPDATE notifications
				SET message = ?, metadata = ?, created_at = ?
				WHERE id = ?`),
				n.Message, metadata, toMillis(n.CreatedAt), existingID,
			)
			if err != nil {
				return fmt.Errorf("refresh notification: %w", err)
			}
			n.ID = existingID
		}

		stored, err := s.getNotification(ctx, tx, n.UserID, n.ID)
		if err != nil {
			return err
		}
		*n = *stored
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *Store) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{filter.UserID}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, filter.NormalizedLimit())

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND status = 'UNREAD'`), userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *Store) MarkRead(ctx context.Context, userID, id string, at time.Time) (*model.Notification, error) {
	var marked *model.Notification
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			s.rebind(`UPDATE notifications SET status = 'READ', read_at = ? WHERE id = ? AND user_id = ?`),
			toMillis(at), id, userID,
		)
		if err != nil {
			return fmt.Errorf("mark notification read: %w", err)
		}
		if err := requireAffected(result, id); err != nil {
			return err
		}
		marked, err = s.getNotification(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return marked, nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE notifications SET status = 'READ', read_at = ? WHERE user_id = ? AND status = 'UNREAD'`),
		toMillis(at), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM notifications WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return requireAffected(result, id)
}

func (s *Store) ArchiveRead(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE notifications SET status = 'ARCHIVED'
			WHERE status = 'READ' AND COALESCE(read_at, created_at) < ?`),
		toMillis(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("archive read notifications: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) getNotification(ctx context.Context, q queryer, userID, id string) (*model.Notification, error) {
	row := q.QueryRowContext(ctx,
		s.rebind(`SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND user_id = ?`), id, userID)
	n, err := scanNotification(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("notification %q: %w", id, ErrNotFound)
	}
	return nil
}

// dedupKey identifies one notification stream for locking.
func dedupKey(n *model.Notification) string {
	project := ""
	if n.ProjectID != nil {
		project = *n.ProjectID
	}
	return n.UserID + "|" + project + "|" + string(n.Type)
}

func encodeMetadata(metadata map[string]any) (string, error) {
	if len(metadata) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode notification metadata: %w", err)
	}
	return string(data), nil
}

func scanNotification(scan func(dest ...any) error) (*model.Notification, error) {
	var (
		n                 model.Notification
		projectID         sql.NullString
		typ, status, meta string
		createdAt         int64
		readAt            sql.NullInt64
	)
	if err := scan(&n.ID, &n.UserID, &projectID, &typ, &n.Title, &n.Message, &status,
		&meta, &createdAt, &readAt); err != nil {
		return nil, err
	}
	n.ProjectID = stringFromNull(projectID)
	n.Type = model.NotificationType(typ)
	n.Status = model.NotificationStatus(status)
	n.CreatedAt = fromMillis(createdAt)
	n.ReadAt = timeFromNull(readAt)
	if meta != "" && meta != "{}" {
		if err := json.Unmarshal([]byte(meta), &n.Metadata); err != nil {
			return nil, fmt.Errorf("decode notification metadata: %w", err)
		}
	}
	return &n, nil
}
