package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

const personColumns = `id, user_id, name, relationship, closeness, email, phone, birthday, notes,
		preferred_platform, custom_platform, avatar_url, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// PersonRepository handles people database operations
type PersonRepository struct {
	db *DB
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(db *DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func scanPerson(row rowScanner) (*models.Person, error) {
	p := &models.Person{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Relationship,
		&p.Closeness,
		&p.Email,
		&p.Phone,
		&p.Birthday,
		&p.Notes,
		&p.PreferredPlatform,
		&p.CustomPlatform,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new person
func (r *PersonRepository) Create(ctx context.Context, p *models.Person) error {
	query := `
		INSERT INTO people (id, user_id, name, relationship, closeness, email, phone, birthday, notes,
			preferred_platform, custom_platform, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
		RETURNING created_at, updated_at
	`

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Relationship,
		p.Closeness,
		p.Email,
		p.Phone,
		p.Birthday,
		p.Notes,
		p.PreferredPlatform,
		p.CustomPlatform,
		p.AvatarURL,
		time.Now(),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

// GetByID retrieves a person owned by userID
func (r *PersonRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE id = $1 AND user_id = $2`

	p, err := scanPerson(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "person")
	}
	return p, nil
}

// ListByUser returns every person owned by userID, newest first
func (r *PersonRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	people := make([]models.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}

// Update saves the editable fields of a person
func (r *PersonRepository) Update(ctx context.Context, p *models.Person) error {
	query := `
		UPDATE people
		SET name = $3, relationship = $4, closeness = $5, email = $6, phone = $7, birthday = $8,
			notes = $9, preferred_platform = $10, custom_platform = $11, avatar_url = $12, updated_at = $13
		WHERE id = $1 AND user_id = $2
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID,
		p.UserID,
		p.Name,
		p.Relationship,
		p.Closeness,
		p.Email,
		p.Phone,
		p.Birthday,
		p.Notes,
		p.PreferredPlatform,
		p.CustomPlatform,
		p.AvatarURL,
		time.Now(),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return notFound(err, "person")
	}

	return nil
}

// UpdateCloseness persists an accepted closeness change
func (r *PersonRepository) UpdateCloseness(ctx context.Context, userID, id uuid.UUID, closeness int) error {
	query := `UPDATE people SET closeness = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID, closeness, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update closeness: %w", err)
	}
	return expectAffected(result, "person")
}

// Delete removes a person and, by cascade, their interactions
func (r *PersonRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM people WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return expectAffected(result, "person")
}
