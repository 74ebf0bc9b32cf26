package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

const notificationColumns = `id, user_id, person_id, type, title, description, priority, is_read,
		is_actionable, action_url, metadata, created_at, read_at, expires_at`

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	n := &models.Notification{}
	var readAt, expiresAt sql.NullTime
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.PersonID,
		&n.Type,
		&n.Title,
		&n.Description,
		&n.Priority,
		&n.IsRead,
		&n.IsActionable,
		&n.ActionURL,
		&n.Metadata,
		&n.CreatedAt,
		&readAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}
	n.ReadAt = timePtr(readAt)
	n.ExpiresAt = timePtr(expiresAt)
	return n, nil
}

// Create inserts a notification. Priority defaults to medium.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, person_id, type, title, description, priority,
			is_read, is_actionable, action_url, metadata, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	if n.Metadata == nil {
		n.Metadata = models.NotificationMetadata{}
	}

	err := r.db.QueryRowContext(ctx, query,
		n.ID,
		n.UserID,
		n.PersonID,
		n.Type,
		n.Title,
		n.Description,
		n.Priority,
		n.IsActionable,
		n.ActionURL,
		n.Metadata,
		time.Now(),
		nullTime(n.ExpiresAt),
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListByUser returns unexpired notifications for a user, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, includeRead bool) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > NOW())`
	if !includeRead {
		query += " AND is_read = false"
	}
	query += " ORDER BY created_at DESC LIMIT $2"

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

// UnreadCount counts a user's unread, unexpired notifications
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = false AND (expires_at IS NULL OR expires_at > NOW())
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, read_at = $3 WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return expectAffected(result, "notification")
}

// MarkAllRead marks every unread notification for a user as read and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = true, read_at = $2 WHERE user_id = $1 AND is_read = false`

	result, err := r.db.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// Delete removes one notification
func (r *NotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return expectAffected(result, "notification")
}

// DeleteExpired removes notifications whose expiry is before now. A nil userID sweeps every user.
func (r *NotificationRepository) DeleteExpired(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at < $1`
	args := []any{now}
	if userID != nil {
		query += " AND user_id = $2"
		args = append(args, *userID)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// HasUnreadReminder reports whether an unread reminder already exists for a person
func (r *NotificationRepository) HasUnreadReminder(ctx context.Context, userID, personID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND person_id = $2 AND type = $3 AND is_read = false
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, personID, models.NotificationReminder).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing reminder: %w", err)
	}
	return exists, nil
}
