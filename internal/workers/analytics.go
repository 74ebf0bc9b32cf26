package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/queue"
	"github.com/benvon/smart-connections/internal/relationship"
)

const (
	retryBaseDelay = 5 * time.Second
	retryMaxDelay  = 5 * time.Minute
)

// PeopleLister loads a user's people
type PeopleLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Person, error)
}

// InteractionLister loads a user's interactions
type InteractionLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, personID *uuid.UUID) ([]models.Interaction, error)
}

// SuggestionEvaluator decides whether a suggestion set warrants a notification
type SuggestionEvaluator interface {
	Evaluate(ctx context.Context, userID uuid.UUID, suggestions []models.Suggestion) (bool, error)
}

// ReminderGenerator creates overdue-contact reminders for one user
type ReminderGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}

// ActivityReader reports whether background sweeps are paused for a user
type ActivityReader interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error)
}

// AnalyticsWorker processes analytics refresh and reminder jobs
type AnalyticsWorker struct {
	people       PeopleLister
	interactions InteractionLister
	evaluator    SuggestionEvaluator
	reminders    ReminderGenerator
	activity     ActivityReader
	jobQueue     queue.Enqueuer // for re-enqueueing failed jobs with a delay
	logger       *zap.Logger
	now          func() time.Time
}

// NewAnalyticsWorker creates a new analytics worker
func NewAnalyticsWorker(
	people PeopleLister,
	interactions InteractionLister,
	evaluator SuggestionEvaluator,
	reminders ReminderGenerator,
	activity ActivityReader,
	jobQueue queue.Enqueuer,
	logger *zap.Logger,
) *AnalyticsWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsWorker{
		people:       people,
		interactions: interactions,
		evaluator:    evaluator,
		reminders:    reminders,
		activity:     activity,
		jobQueue:     jobQueue,
		logger:       logger,
		now:          time.Now,
	}
}

// ProcessAnalyticsRefreshJob recomputes a user's suggestions and hands them to the notification trigger
func (w *AnalyticsWorker) ProcessAnalyticsRefreshJob(ctx context.Context, job *queue.Job) error {
	ctx, span := otel.Tracer("workers").Start(ctx, "analytics.refresh")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", job.UserID.String()))

	people, err := w.people.ListByUser(ctx, job.UserID)
	if err != nil {
		span.SetStatus(codes.Error, "load people")
		return fmt.Errorf("failed to load people: %w", err)
	}
	interactions, err := w.interactions.ListByUser(ctx, job.UserID, nil)
	if err != nil {
		span.SetStatus(codes.Error, "load interactions")
		return fmt.Errorf("failed to load interactions: %w", err)
	}

	analytics := relationship.Analyze(people, interactions, w.now())
	span.SetAttributes(
		attribute.Int("people", len(people)),
		attribute.Int("suggestions", analytics.TotalSuggestions),
	)

	// notification failures are not retried; the next refresh evaluates again
	notified, err := w.evaluator.Evaluate(ctx, job.UserID, analytics.Suggestions)
	if err != nil {
		span.RecordError(err)
		w.logger.Warn("suggestion_notification_failed",
			zap.String("user_id", job.UserID.String()),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}

	w.logger.Info("analytics_refreshed",
		zap.String("user_id", job.UserID.String()),
		zap.Int("suggestions", analytics.TotalSuggestions),
		zap.Int("promotions", analytics.Promotions),
		zap.Int("demotions", analytics.Demotions),
		zap.Bool("notified", notified),
	)
	return nil
}

// ProcessGenerateRemindersJob creates contact reminders unless the user's sweeps are paused
func (w *AnalyticsWorker) ProcessGenerateRemindersJob(ctx context.Context, job *queue.Job) error {
	ctx, span := otel.Tracer("workers").Start(ctx, "reminders.generate")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", job.UserID.String()))

	if w.activity != nil {
		activity, err := w.activity.GetByUserID(ctx, job.UserID)
		switch {
		case err == nil && !activity.ReceivesSweeps():
			w.logger.Debug("skipped_reminders_sweeps_paused",
				zap.String("user_id", job.UserID.String()),
				zap.Duration("idle_for", activity.IdleFor(w.now())),
			)
			return nil
		case err != nil && !errors.Is(err, database.ErrNotFound):
			return fmt.Errorf("failed to load user activity: %w", err)
		}
	}

	created, err := w.reminders.Generate(ctx, job.UserID, w.now())
	span.SetAttributes(attribute.Int("created", created))
	if err != nil {
		span.SetStatus(codes.Error, "generate reminders")
		return fmt.Errorf("failed to generate reminders: %w", err)
	}

	w.logger.Info("reminders_generated",
		zap.String("user_id", job.UserID.String()),
		zap.Int("created", created),
	)
	return nil
}

// ProcessJob processes a job based on its type
func (w *AnalyticsWorker) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	now := w.now()

	if job.IsExpired(now) {
		w.logger.Debug("dropped_expired_job", zap.String("job_id", job.ID.String()))
		return ackOrError(msg)
	}

	var err error
	switch job.Type {
	case queue.JobTypeAnalyticsRefresh:
		err = w.ProcessAnalyticsRefreshJob(ctx, job)
	case queue.JobTypeGenerateReminders:
		err = w.ProcessGenerateRemindersJob(ctx, job)
	default:
		if nackErr := msg.Nack(false); nackErr != nil { // unknown job type goes to the DLQ
			w.logger.Warn("failed_to_nack_unknown_job", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		return w.handleJobError(ctx, msg, job, err)
	}
	return ackOrError(msg)
}

func ackOrError(msg queue.MessageInterface) error {
	if err := msg.Ack(); err != nil {
		return fmt.Errorf("failed to ack job: %w", err)
	}
	return nil
}

// retryDelay doubles from retryBaseDelay per attempt, capped at retryMaxDelay
func retryDelay(retryCount int) time.Duration {
	d := retryBaseDelay
	for i := 0; i < retryCount && d < retryMaxDelay; i++ {
		d *= 2
	}
	return min(d, retryMaxDelay)
}

// handleJobError re-enqueues a failed job with backoff, or dead-letters it once retries run out
func (w *AnalyticsWorker) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if !job.CanRetry() {
		w.logger.Error("job_failed_max_retries",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			w.logger.Warn("failed_to_nack_job_to_dlq", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (max retries): %w", err)
	}

	if w.jobQueue == nil {
		job.IncrementRetry()
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	delay := retryDelay(job.RetryCount)
	notBefore := w.now().Add(delay)
	retry := *job
	retry.NotBefore = &notBefore
	retry.RetryCount = job.RetryCount + 1

	if enqueueErr := w.jobQueue.Enqueue(ctx, &retry); enqueueErr != nil {
		w.logger.Warn("failed_to_reenqueue_job",
			zap.String("job_id", job.ID.String()),
			zap.Error(enqueueErr),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Warn("failed_to_nack_job", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed, re-enqueue failed: %w", errors.Join(err, enqueueErr))
	}
	if ackErr := msg.Ack(); ackErr != nil {
		w.logger.Warn("failed_to_ack_retried_job", zap.Error(ackErr))
	}

	w.logger.Warn("job_failed_will_retry",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("attempt", retry.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Duration("delay", delay),
		zap.Error(err),
	)
	return fmt.Errorf("job failed (will retry): %w", err)
}
