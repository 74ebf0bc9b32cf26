package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/benvon/smart-connections/internal/logger"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/relationship"
)

// ReminderStore creates reminders and answers whether one is already pending for a person
type ReminderStore interface {
	NotificationCreator
	HasUnreadReminder(ctx context.Context, userID, personID uuid.UUID) (bool, error)
}

// PeopleLister loads a user's people
type PeopleLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Person, error)
}

// InteractionLister loads a user's interactions
type InteractionLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, personID *uuid.UUID) ([]models.Interaction, error)
}

// ReminderGenerator creates contact reminders for people the user has not reached in a while
type ReminderGenerator struct {
	people       PeopleLister
	interactions InteractionLister
	reminders    ReminderStore
	prefs        PreferencesGetter
	logger       *zap.Logger
}

// NewReminderGenerator creates a new reminder generator
func NewReminderGenerator(people PeopleLister, interactions InteractionLister, reminders ReminderStore, prefs PreferencesGetter, logger *zap.Logger) *ReminderGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderGenerator{
		people:       people,
		interactions: interactions,
		reminders:    reminders,
		prefs:        prefs,
		logger:       logger,
	}
}

// Generate creates at most one unread reminder per overdue person and returns how many were created.
// A failure for one person does not stop the others; all failures are returned together.
func (g *ReminderGenerator) Generate(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	prefs, err := g.prefs.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load notification preferences: %w", err)
	}
	if !prefs.ReminderEnabled {
		return 0, nil
	}
	frequency := prefs.EffectiveFrequencyDays()

	people, err := g.people.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load people: %w", err)
	}
	interactions, err := g.interactions.ListByUser(ctx, userID, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to load interactions: %w", err)
	}

	annotated := relationship.Annotate(people, interactions, now)

	var (
		created int
		errs    []error
	)
	for _, p := range annotated {
		days := *p.DaysSinceLastContact
		if days < frequency {
			continue
		}

		pending, err := g.reminders.HasUnreadReminder(ctx, userID, p.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("person %s: %w", p.ID, err))
			continue
		}
		if pending {
			g.logger.Debug("contact_reminder_already_pending", zap.String("person_id", p.ID.String()))
			continue
		}

		if err := g.reminders.Create(ctx, NewContactReminder(userID, p, days, now)); err != nil {
			errs = append(errs, fmt.Errorf("person %s: %w", p.ID, err))
			continue
		}
		g.logger.Debug("contact_reminder_created",
			zap.String("person_id", p.ID.String()),
			zap.String("person", logpkg.RedactName(p.Name)),
			zap.Int("days_since_contact", days),
		)
		created++
	}

	if created > 0 {
		g.logger.Info("contact_reminders_created",
			zap.String("user_id", userID.String()),
			zap.Int("count", created),
			zap.Int("frequency_days", frequency),
		)
	}

	return created, errors.Join(errs...)
}
