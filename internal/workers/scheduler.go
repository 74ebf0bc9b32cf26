package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/queue"
)

const sweepTimeout = 5 * time.Minute

// reminderJobTTL bounds how long a scheduled reminder job stays valid in the queue
const reminderJobTTL = 12 * time.Hour

// SweepActivityStore lists users for background sweeps and pauses idle ones
type SweepActivityStore interface {
	ListActiveUsers(ctx context.Context) ([]uuid.UUID, error)
	ListIdleUsers(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	SetSweepsPaused(ctx context.Context, userID uuid.UUID, paused bool) error
}

// ExpiredNotificationCleaner deletes notifications past their expiry
type ExpiredNotificationCleaner interface {
	DeleteExpired(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error)
}

// SchedulerConfig holds the cron expressions and thresholds for background sweeps
type SchedulerConfig struct {
	ReminderSchedule string
	CleanupSchedule  string
	InactivityPause  time.Duration
}

// Scheduler runs the periodic reminder sweep and notification cleanup
type Scheduler struct {
	cron          *cron.Cron
	jobQueue      queue.Enqueuer
	activity      SweepActivityStore
	notifications ExpiredNotificationCleaner
	cfg           SchedulerConfig
	logger        *zap.Logger
	now           func() time.Time
}

// NewScheduler creates a scheduler. Schedules use the standard five-field cron syntax or descriptors such as @hourly.
func NewScheduler(jobQueue queue.Enqueuer, activity SweepActivityStore, notifications ExpiredNotificationCleaner, cfg SchedulerConfig, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		jobQueue:      jobQueue,
		activity:      activity,
		notifications: notifications,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.ReminderSchedule, s.runReminderSweep); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", cfg.ReminderSchedule, err)
	}
	if cfg.CleanupSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.CleanupSchedule, s.runCleanup); err != nil {
			return nil, fmt.Errorf("invalid cleanup schedule %q: %w", cfg.CleanupSchedule, err)
		}
	}
	return s, nil
}

// Start runs the scheduler until ctx is cancelled, then waits for running sweeps to finish
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("scheduler_started",
		zap.String("reminder_schedule", s.cfg.ReminderSchedule),
		zap.String("cleanup_schedule", s.cfg.CleanupSchedule),
	)
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler_stopped")
}

func (s *Scheduler) runReminderSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if err := s.SweepReminders(ctx); err != nil {
		s.logger.Error("reminder_sweep_failed", zap.Error(err))
	}
}

func (s *Scheduler) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if err := s.CleanupExpired(ctx); err != nil {
		s.logger.Error("notification_cleanup_failed", zap.Error(err))
	}
}

// SweepReminders pauses users idle past the inactivity threshold, then enqueues
// a reminder job for every user whose sweeps remain active.
func (s *Scheduler) SweepReminders(ctx context.Context) error {
	now := s.now()

	paused, pauseErr := s.PauseIdleUsers(ctx, now)

	users, err := s.activity.ListActiveUsers(ctx)
	if err != nil {
		return errors.Join(pauseErr, fmt.Errorf("failed to list active users: %w", err))
	}

	enqueued := 0
	for _, userID := range users {
		job := queue.NewJob(queue.JobTypeGenerateReminders, userID, now)
		notAfter := now.Add(reminderJobTTL)
		job.NotAfter = &notAfter
		if err := s.jobQueue.Enqueue(ctx, job); err != nil {
			s.logger.Warn("failed_to_enqueue_reminder_job",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}
		enqueued++
	}

	s.logger.Info("reminder_sweep_scheduled",
		zap.Int("active_users", len(users)),
		zap.Int("enqueued", enqueued),
		zap.Int("paused", paused),
	)
	return pauseErr
}

// PauseIdleUsers stops background sweeps for users who have not used the API within the inactivity window.
// Sweeps resume on the user's next authenticated request.
func (s *Scheduler) PauseIdleUsers(ctx context.Context, now time.Time) (int, error) {
	if s.cfg.InactivityPause <= 0 {
		return 0, nil
	}
	idle, err := s.activity.ListIdleUsers(ctx, now.Add(-s.cfg.InactivityPause))
	if err != nil {
		return 0, fmt.Errorf("failed to list idle users: %w", err)
	}

	paused := 0
	var errs []error
	for _, userID := range idle {
		if err := s.activity.SetSweepsPaused(ctx, userID, true); err != nil {
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		paused++
	}
	return paused, errors.Join(errs...)
}

// CleanupExpired deletes every user's expired notifications
func (s *Scheduler) CleanupExpired(ctx context.Context) error {
	n, err := s.notifications.DeleteExpired(ctx, nil, s.now())
	if err != nil {
		return fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired_notifications_deleted", zap.Int64("count", n))
	}
	return nil
}
