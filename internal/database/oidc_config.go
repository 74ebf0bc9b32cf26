package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-connections/internal/models"
)

const oidcConfigColumns = `id, provider, issuer, domain, client_id, client_secret, redirect_uri, jwks_url, created_at, updated_at`

// OIDCConfigRepository handles OIDC provider configuration
type OIDCConfigRepository struct {
	db *DB
}

// NewOIDCConfigRepository creates a new OIDC config repository
func NewOIDCConfigRepository(db *DB) *OIDCConfigRepository {
	return &OIDCConfigRepository{db: db}
}

func scanOIDCConfig(row rowScanner) (*models.OIDCConfig, error) {
	c := &models.OIDCConfig{}
	err := row.Scan(
		&c.ID,
		&c.Provider,
		&c.Issuer,
		&c.Domain,
		&c.ClientID,
		&c.ClientSecret,
		&c.RedirectURI,
		&c.JWKSUrl,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// Create stores a new provider configuration
func (r *OIDCConfigRepository) Create(ctx context.Context, c *models.OIDCConfig) error {
	query := `
		INSERT INTO oidc_config (` + oidcConfigColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Provider, c.Issuer, c.Domain, c.ClientID, c.ClientSecret, c.RedirectURI, c.JWKSUrl, time.Now(),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create OIDC config: %w", err)
	}
	return nil
}

// GetByProvider returns the configuration for a provider name
func (r *OIDCConfigRepository) GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+oidcConfigColumns+` FROM oidc_config WHERE provider = $1`, provider)
	c, err := scanOIDCConfig(row)
	if err != nil {
		return nil, notFound(err, "OIDC config for "+provider)
	}
	return c, nil
}

// GetAll returns every provider configuration ordered by name
func (r *OIDCConfigRepository) GetAll(ctx context.Context) ([]*models.OIDCConfig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+oidcConfigColumns+` FROM oidc_config ORDER BY provider`)
	if err != nil {
		return nil, fmt.Errorf("failed to query OIDC configs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var configs []*models.OIDCConfig
	for rows.Next() {
		c, err := scanOIDCConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan OIDC config: %w", err)
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating OIDC configs: %w", err)
	}
	return configs, nil
}

// Update replaces the configuration for c.Provider
func (r *OIDCConfigRepository) Update(ctx context.Context, c *models.OIDCConfig) error {
	query := `
		UPDATE oidc_config
		SET issuer = $2, domain = $3, client_id = $4, client_secret = $5, redirect_uri = $6, jwks_url = $7, updated_at = $8
		WHERE provider = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.Provider, c.Issuer, c.Domain, c.ClientID, c.ClientSecret, c.RedirectURI, c.JWKSUrl, time.Now(),
	).Scan(&c.UpdatedAt)
	if err != nil {
		return notFound(err, "OIDC config for "+c.Provider)
	}
	return nil
}

// Delete removes the configuration for a provider
func (r *OIDCConfigRepository) Delete(ctx context.Context, provider string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM oidc_config WHERE provider = $1`, provider)
	if err != nil {
		return fmt.Errorf("failed to delete OIDC config: %w", err)
	}
	return expectAffected(result, "OIDC config for "+provider)
}
