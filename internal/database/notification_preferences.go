package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

// NotificationPreferencesRepository handles notification preference database operations
type NotificationPreferencesRepository struct {
	db *DB
}

// NewNotificationPreferencesRepository creates a new notification preferences repository
func NewNotificationPreferencesRepository(db *DB) *NotificationPreferencesRepository {
	return &NotificationPreferencesRepository{db: db}
}

// Get returns a user's preferences, or the defaults when none are stored
func (r *NotificationPreferencesRepository) Get(ctx context.Context, userID uuid.UUID) (*models.NotificationPreferences, error) {
	query := `
		SELECT user_id, reminder_enabled, reminder_frequency_days, activity_enabled, milestone_enabled,
			system_enabled, quiet_hours_start, quiet_hours_end, email_notifications, push_notifications,
			created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`

	p := &models.NotificationPreferences{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.ReminderEnabled,
		&p.ReminderFrequencyDays,
		&p.ActivityEnabled,
		&p.MilestoneEnabled,
		&p.SystemEnabled,
		&p.QuietHoursStart,
		&p.QuietHoursEnd,
		&p.EmailNotifications,
		&p.PushNotifications,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := models.DefaultNotificationPreferences(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification preferences: %w", err)
	}

	return p, nil
}

// Upsert stores a user's preferences
func (r *NotificationPreferencesRepository) Upsert(ctx context.Context, p *models.NotificationPreferences) error {
	query := `
		INSERT INTO notification_preferences (user_id, reminder_enabled, reminder_frequency_days, activity_enabled,
			milestone_enabled, system_enabled, quiet_hours_start, quiet_hours_end, email_notifications,
			push_notifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (user_id) DO UPDATE
		SET reminder_enabled = EXCLUDED.reminder_enabled,
		    reminder_frequency_days = EXCLUDED.reminder_frequency_days,
		    activity_enabled = EXCLUDED.activity_enabled,
		    milestone_enabled = EXCLUDED.milestone_enabled,
		    system_enabled = EXCLUDED.system_enabled,
		    quiet_hours_start = EXCLUDED.quiet_hours_start,
		    quiet_hours_end = EXCLUDED.quiet_hours_end,
		    email_notifications = EXCLUDED.email_notifications,
		    push_notifications = EXCLUDED.push_notifications,
		    updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.UserID,
		p.ReminderEnabled,
		p.EffectiveFrequencyDays(),
		p.ActivityEnabled,
		p.MilestoneEnabled,
		p.SystemEnabled,
		p.QuietHoursStart,
		p.QuietHoursEnd,
		p.EmailNotifications,
		p.PushNotifications,
		time.Now(),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert notification preferences: %w", err)
	}

	return nil
}
