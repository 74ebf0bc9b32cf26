package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

// UserActivityRepository handles user activity database operations
type UserActivityRepository struct {
	db *DB
}

// NewUserActivityRepository creates a new user activity repository
func NewUserActivityRepository(db *DB) *UserActivityRepository {
	return &UserActivityRepository{db: db}
}

// GetByUserID retrieves user activity by user ID
func (r *UserActivityRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error) {
	activity := &models.UserActivity{}

	query := `
		SELECT user_id, last_api_interaction, sweeps_paused, created_at, updated_at
		FROM user_activity
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&activity.UserID,
		&activity.LastAPIInteraction,
		&activity.SweepsPaused,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "user activity")
	}

	return activity, nil
}

// UpdateLastInteraction records API use and resumes background sweeps for the user
func (r *UserActivityRepository) UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO user_activity (user_id, last_api_interaction, sweeps_paused, created_at, updated_at)
		VALUES ($1, $2, false, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_api_interaction = EXCLUDED.last_api_interaction,
		    sweeps_paused = false,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to update last interaction: %w", err)
	}

	return nil
}

// SetSweepsPaused toggles background reminder sweeps for a user
func (r *UserActivityRepository) SetSweepsPaused(ctx context.Context, userID uuid.UUID, paused bool) error {
	query := `
		UPDATE user_activity
		SET sweeps_paused = $1, updated_at = $2
		WHERE user_id = $3
	`

	if _, err := r.db.ExecContext(ctx, query, paused, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to set sweeps paused: %w", err)
	}

	return nil
}

// ListActiveUsers returns users whose background sweeps are not paused
func (r *UserActivityRepository) ListActiveUsers(ctx context.Context) ([]uuid.UUID, error) {
	return r.queryUserIDs(ctx, `SELECT user_id FROM user_activity WHERE sweeps_paused = false`)
}

// ListIdleUsers returns unpaused users who have not used the API since before cutoff
func (r *UserActivityRepository) ListIdleUsers(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM user_activity
		WHERE last_api_interaction < $1
		  AND sweeps_paused = false
	`
	return r.queryUserIDs(ctx, query, cutoff)
}

func (r *UserActivityRepository) queryUserIDs(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var userIDs []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return userIDs, nil
}
