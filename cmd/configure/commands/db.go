package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/config"
	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
)

// withDB loads configuration, opens the database and runs fn against it
func withDB(fn func(ctx context.Context, cfg *config.Config, db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	return fn(context.Background(), cfg, db)
}

// resolveUser accepts a user ID or an email address
func resolveUser(ctx context.Context, users *database.UserRepository, ref string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		user, err = users.GetByID(ctx, id)
	} else {
		user, err = users.GetByEmail(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", ref, err)
	}
	return user, nil
}
