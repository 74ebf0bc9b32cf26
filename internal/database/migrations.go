package database

import (
	"context"
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "users, activity and runtime configuration",
		SQL: `
CREATE TABLE IF NOT EXISTS users (
    id             UUID PRIMARY KEY,
    email          TEXT NOT NULL UNIQUE,
    provider_id    TEXT UNIQUE,
    name           TEXT,
    email_verified BOOLEAN NOT NULL DEFAULT false,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_activity (
    user_id              UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    last_api_interaction TIMESTAMPTZ NOT NULL,
    sweeps_paused        BOOLEAN NOT NULL DEFAULT false,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS oidc_config (
    id            UUID PRIMARY KEY,
    provider      TEXT NOT NULL UNIQUE,
    issuer        TEXT NOT NULL,
    domain        TEXT,
    client_id     TEXT NOT NULL,
    client_secret TEXT,
    redirect_uri  TEXT NOT NULL,
    jwks_url      TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS cors_config (
    config_key        TEXT PRIMARY KEY,
    allowed_origins   TEXT NOT NULL DEFAULT '',
    allow_credentials BOOLEAN NOT NULL DEFAULT true,
    max_age           INTEGER NOT NULL DEFAULT 0,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS ratelimit_config (
    config_key TEXT PRIMARY KEY,
    rate       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`,
	},
	{
		Version:     2,
		Description: "people, interactions and journal entries",
		SQL: `
CREATE TABLE IF NOT EXISTS people (
    id                 UUID PRIMARY KEY,
    user_id            UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name               TEXT NOT NULL,
    relationship       TEXT NOT NULL DEFAULT '',
    closeness          INTEGER NOT NULL DEFAULT 3 CHECK (closeness BETWEEN 1 AND 5),
    email              TEXT,
    phone              TEXT,
    birthday           DATE,
    notes              TEXT,
    preferred_platform TEXT,
    custom_platform    TEXT,
    avatar_url         TEXT,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_people_user_id ON people(user_id);

CREATE TABLE IF NOT EXISTS interactions (
    id               UUID PRIMARY KEY,
    user_id          UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    person_id        UUID NOT NULL REFERENCES people(id) ON DELETE CASCADE,
    type             TEXT NOT NULL,
    occurred_at      TIMESTAMPTZ NOT NULL,
    duration_minutes INTEGER,
    description      TEXT,
    location         TEXT,
    mood_rating      INTEGER CHECK (mood_rating BETWEEN 1 AND 5),
    platform         TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_interactions_user_occurred ON interactions(user_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_interactions_person ON interactions(person_id);

CREATE TABLE IF NOT EXISTS journal_entries (
    id         UUID PRIMARY KEY,
    user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    person_id  UUID REFERENCES people(id) ON DELETE SET NULL,
    title      TEXT,
    content    TEXT NOT NULL,
    mood       TEXT,
    tags       TEXT[] NOT NULL DEFAULT '{}',
    is_private BOOLEAN NOT NULL DEFAULT true,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_journal_entries_user ON journal_entries(user_id, created_at DESC);
`,
	},
	{
		Version:     3,
		Description: "notifications and notification preferences",
		SQL: `
CREATE TABLE IF NOT EXISTS notifications (
    id            UUID PRIMARY KEY,
    user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    person_id     UUID REFERENCES people(id) ON DELETE CASCADE,
    type          TEXT NOT NULL,
    title         TEXT NOT NULL,
    description   TEXT,
    priority      TEXT NOT NULL DEFAULT 'medium',
    is_read       BOOLEAN NOT NULL DEFAULT false,
    is_actionable BOOLEAN NOT NULL DEFAULT false,
    action_url    TEXT,
    metadata      JSONB NOT NULL DEFAULT '{}',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    read_at       TIMESTAMPTZ,
    expires_at    TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id, is_read, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_reminder ON notifications(user_id, person_id, type) WHERE is_read = false;

CREATE TABLE IF NOT EXISTS notification_preferences (
    user_id                 UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    reminder_enabled        BOOLEAN NOT NULL DEFAULT true,
    reminder_frequency_days INTEGER NOT NULL DEFAULT 7,
    activity_enabled        BOOLEAN NOT NULL DEFAULT true,
    milestone_enabled       BOOLEAN NOT NULL DEFAULT true,
    system_enabled          BOOLEAN NOT NULL DEFAULT true,
    quiet_hours_start       TEXT,
    quiet_hours_end         TEXT,
    email_notifications     BOOLEAN NOT NULL DEFAULT false,
    push_notifications      BOOLEAN NOT NULL DEFAULT true,
    created_at              TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`,
	},
}

// Migrate applies every migration that has not been recorded in schema_versions
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_versions WHERE version = $1", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_versions (version, description) VALUES ($1, $2)",
			m.Version, m.Description,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
