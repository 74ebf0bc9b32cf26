package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

// PersonRepositoryInterface defines the person operations handlers and workers depend on
type PersonRepositoryInterface interface {
	Create(ctx context.Context, p *models.Person) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Person, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Person, error)
	Update(ctx context.Context, p *models.Person) error
	UpdateCloseness(ctx context.Context, userID, id uuid.UUID, closeness int) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// InteractionRepositoryInterface defines interaction operations
type InteractionRepositoryInterface interface {
	Create(ctx context.Context, in *models.Interaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, personID *uuid.UUID) ([]models.Interaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// JournalRepositoryInterface defines journal entry operations
type JournalRepositoryInterface interface {
	Create(ctx context.Context, e *models.JournalEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, personID *uuid.UUID, limit int) ([]models.JournalEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// NotificationRepositoryInterface defines notification operations
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, includeRead bool) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteExpired(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error)
	HasUnreadReminder(ctx context.Context, userID, personID uuid.UUID) (bool, error)
}

// NotificationPreferencesRepositoryInterface defines notification preference operations
type NotificationPreferencesRepositoryInterface interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.NotificationPreferences, error)
	Upsert(ctx context.Context, p *models.NotificationPreferences) error
}

// UserActivityRepositoryInterface defines user activity operations
type UserActivityRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error)
	UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error
	SetSweepsPaused(ctx context.Context, userID uuid.UUID, paused bool) error
	ListActiveUsers(ctx context.Context) ([]uuid.UUID, error)
	ListIdleUsers(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// UserRepositoryInterface defines the user lookups authentication depends on
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ResolveFromClaims(ctx context.Context, claims *models.JWTClaims) (*models.User, error)
}

// Ensure concrete types implement the interfaces
var (
	_ PersonRepositoryInterface                  = (*PersonRepository)(nil)
	_ InteractionRepositoryInterface             = (*InteractionRepository)(nil)
	_ JournalRepositoryInterface                 = (*JournalRepository)(nil)
	_ NotificationRepositoryInterface            = (*NotificationRepository)(nil)
	_ NotificationPreferencesRepositoryInterface = (*NotificationPreferencesRepository)(nil)
	_ UserActivityRepositoryInterface            = (*UserActivityRepository)(nil)
	_ UserRepositoryInterface                    = (*UserRepository)(nil)
)
