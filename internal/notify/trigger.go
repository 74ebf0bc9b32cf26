package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/relationship"
)

const defaultTriggerTimeout = 10 * time.Second

// NotificationCreator persists a notification
type NotificationCreator interface {
	Create(ctx context.Context, n *models.Notification) error
}

// PreferencesGetter loads a user's notification preferences
type PreferencesGetter interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.NotificationPreferences, error)
}

// Trigger sends one summary notification when a user's high-confidence suggestions change
type Trigger struct {
	notifications NotificationCreator
	state         StateStore
	prefs         PreferencesGetter
	logger        *zap.Logger
	timeout       time.Duration
	now           func() time.Time
	wg            sync.WaitGroup
}

// NewTrigger creates a trigger. state and prefs may be nil: without state any
// non-empty high-confidence set notifies, and without prefs activity notifications are assumed on.
func NewTrigger(notifications NotificationCreator, state StateStore, prefs PreferencesGetter, logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger{
		notifications: notifications,
		state:         state,
		prefs:         prefs,
		logger:        logger,
		timeout:       defaultTriggerTimeout,
		now:           time.Now,
	}
}

// MaybeNotifyHighConfidenceSuggestions evaluates suggestions in the background and returns immediately.
// Failures are logged and never reach the caller.
func (t *Trigger) MaybeNotifyHighConfidenceSuggestions(ctx context.Context, userID uuid.UUID, suggestions []models.Suggestion) {
	high := relationship.HighConfidence(suggestions)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
		defer cancel()

		sent, err := t.evaluate(bgCtx, userID, high)
		if err != nil {
			t.logger.Warn("suggestion_notification_failed",
				zap.String("user_id", userID.String()),
				zap.Int("high_confidence_count", len(high)),
				zap.Error(err),
			)
			return
		}
		if sent {
			t.logger.Info("suggestion_notification_sent",
				zap.String("user_id", userID.String()),
				zap.Int("high_confidence_count", len(high)),
			)
		}
	}()
}

// Evaluate runs the trigger synchronously and reports whether a notification was created
func (t *Trigger) Evaluate(ctx context.Context, userID uuid.UUID, suggestions []models.Suggestion) (bool, error) {
	return t.evaluate(ctx, userID, relationship.HighConfidence(suggestions))
}

// Wait blocks until background evaluations finish
func (t *Trigger) Wait() {
	t.wg.Wait()
}

func (t *Trigger) evaluate(ctx context.Context, userID uuid.UUID, high []models.Suggestion) (bool, error) {
	ctx, span := otel.Tracer("notify").Start(ctx, "notify.suggestions")
	defer span.End()
	span.SetAttributes(attribute.Int("suggestions.high_confidence", len(high)))

	if len(high) == 0 {
		if t.state != nil {
			if err := t.state.ClearFingerprint(ctx, userID); err != nil {
				t.logger.Debug("suggestion_fingerprint_clear_failed", zap.Error(err))
			}
		}
		return false, nil
	}

	if t.prefs != nil {
		prefs, err := t.prefs.Get(ctx, userID)
		if err != nil {
			return false, fmt.Errorf("failed to load notification preferences: %w", err)
		}
		if !prefs.ActivityEnabled {
			return false, nil
		}
	}

	fingerprint := Fingerprint(high)
	claimed := false
	var previous string
	if t.state != nil {
		prev, err := t.state.SwapFingerprint(ctx, userID, fingerprint)
		switch {
		case err != nil:
			t.logger.Debug("suggestion_fingerprint_swap_failed", zap.Error(err))
		case prev == fingerprint:
			return false, nil
		default:
			claimed = true
			previous = prev
		}
	}

	n := NewSuggestionsNotification(userID, high, t.now())
	if err := t.notifications.Create(ctx, n); err != nil {
		span.RecordError(err)
		if claimed {
			if rerr := t.state.RestoreFingerprint(ctx, userID, fingerprint, previous); rerr != nil {
				t.logger.Warn("suggestion_fingerprint_restore_failed", zap.String("user_id", userID.String()), zap.Error(rerr))
			}
		}
		return false, fmt.Errorf("failed to create suggestion notification: %w", err)
	}
	return true, nil
}
