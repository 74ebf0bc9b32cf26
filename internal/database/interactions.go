package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

const interactionColumns = `id, user_id, person_id, type, occurred_at, duration_minutes, description,
		location, mood_rating, platform, created_at`

// InteractionRepository handles interaction database operations
type InteractionRepository struct {
	db *DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func scanInteraction(row rowScanner) (*models.Interaction, error) {
	in := &models.Interaction{}
	err := row.Scan(
		&in.ID,
		&in.UserID,
		&in.PersonID,
		&in.Type,
		&in.OccurredAt,
		&in.DurationMinutes,
		&in.Description,
		&in.Location,
		&in.MoodRating,
		&in.Platform,
		&in.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// Create records a new interaction. The person must belong to the same user.
func (r *InteractionRepository) Create(ctx context.Context, in *models.Interaction) error {
	query := `
		INSERT INTO interactions (id, user_id, person_id, type, occurred_at, duration_minutes, description,
			location, mood_rating, platform, created_at)
		SELECT $1, $2, p.id, $4, $5, $6, $7, $8, $9, $10, $11
		FROM people p
		WHERE p.id = $3 AND p.user_id = $2
		RETURNING created_at
	`

	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		in.ID,
		in.UserID,
		in.PersonID,
		in.Type,
		in.OccurredAt,
		in.DurationMinutes,
		in.Description,
		in.Location,
		in.MoodRating,
		in.Platform,
		time.Now(),
	).Scan(&in.CreatedAt)
	if err != nil {
		return notFound(err, "person")
	}

	return nil
}

// ListByUser returns a user's interactions, newest first. A non-nil personID narrows to one person.
func (r *InteractionRepository) ListByUser(ctx context.Context, userID uuid.UUID, personID *uuid.UUID) ([]models.Interaction, error) {
	query := `SELECT ` + interactionColumns + ` FROM interactions WHERE user_id = $1`
	args := []any{userID}

	if personID != nil {
		query += " AND person_id = $2"
		args = append(args, *personID)
	}
	query += " ORDER BY occurred_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	interactions := make([]models.Interaction, 0)
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, *in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interactions: %w", err)
	}

	return interactions, nil
}

// Delete removes an interaction owned by userID
func (r *InteractionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM interactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	return expectAffected(result, "interaction")
}
