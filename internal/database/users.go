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

const userColumns = `id, email, provider_id, name, email_verified, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.ProviderID,
		&user.Name,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, provider_id, name, email_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.ProviderID,
		user.Name,
		user.EmailVerified,
		time.Now(),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// GetByProviderID retrieves a user by the identity provider subject
func (r *UserRepository) GetByProviderID(ctx context.Context, providerID string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE provider_id = $1`, providerID))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, provider_id = $3, name = $4, email_verified = $5, updated_at = $6
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.ProviderID,
		user.Name,
		user.EmailVerified,
		time.Now(),
	).Scan(&user.UpdatedAt)
	if err != nil {
		return notFound(err, "user")
	}

	return nil
}

// upsertFromClaimsQuery inserts a first-time user or refreshes a returning one.
// It returns no row when the stored profile already matches the token.
const upsertFromClaimsQuery = `
	INSERT INTO users (id, email, provider_id, name, email_verified, created_at, updated_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $6)
	ON CONFLICT (provider_id) DO UPDATE
	SET email = EXCLUDED.email,
	    name = EXCLUDED.name,
	    email_verified = EXCLUDED.email_verified,
	    updated_at = EXCLUDED.updated_at
	WHERE (users.email, users.name, users.email_verified)
	      IS DISTINCT FROM (EXCLUDED.email, EXCLUDED.name, EXCLUDED.email_verified)
	RETURNING ` + userColumns

// ResolveFromClaims returns the user for a verified token. The first sign-in creates the user;
// later sign-ins pick up email, name and verification changes from the provider.
func (r *UserRepository) ResolveFromClaims(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	if claims.Sub == "" {
		return nil, errors.New("claims have no subject")
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, upsertFromClaimsQuery,
		uuid.New(),
		claims.Email,
		claims.Sub,
		claims.Name,
		claims.EmailVerified,
		time.Now(),
	))
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, sql.ErrNoRows):
		return r.GetByProviderID(ctx, claims.Sub)
	default:
		return nil, fmt.Errorf("failed to upsert user from claims: %w", err)
	}
}

// Delete deletes a user by ID and everything they own
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectAffected(result, "user")
}
