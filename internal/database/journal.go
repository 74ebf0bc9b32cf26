package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/benvon/smart-connections/internal/models"
)

// JournalRepository handles journal entry database operations
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Create inserts a journal entry
func (r *JournalRepository) Create(ctx context.Context, e *models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, user_id, person_id, title, content, mood, tags, is_private, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING created_at, updated_at
	`

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		e.ID,
		e.UserID,
		e.PersonID,
		e.Title,
		e.Content,
		e.Mood,
		pq.Array(tags),
		e.IsPrivate,
		time.Now(),
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	return nil
}

// ListByUser returns a user's journal entries, newest first, up to limit rows
func (r *JournalRepository) ListByUser(ctx context.Context, userID uuid.UUID, personID *uuid.UUID, limit int) ([]models.JournalEntry, error) {
	query := `
		SELECT id, user_id, person_id, title, content, mood, tags, is_private, created_at, updated_at
		FROM journal_entries
		WHERE user_id = $1
	`
	args := []any{userID}
	argIndex := 2

	if personID != nil {
		query += fmt.Sprintf(" AND person_id = $%d", argIndex)
		args = append(args, *personID)
		argIndex++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]models.JournalEntry, 0)
	for rows.Next() {
		var e models.JournalEntry
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.PersonID,
			&e.Title,
			&e.Content,
			&e.Mood,
			pq.Array(&e.Tags),
			&e.IsPrivate,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}

	return entries, nil
}

// Delete removes a journal entry owned by userID
func (r *JournalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return expectAffected(result, "journal entry")
}
