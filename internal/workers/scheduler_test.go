package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benvon/smart-connections/internal/queue"
)

func newTestScheduler(t *testing.T, enq queue.Enqueuer, activity *mockActivity, cleaner *mockCleaner, logger *zap.Logger) *Scheduler {
	t.Helper()
	s, err := NewScheduler(enq, activity, cleaner, SchedulerConfig{
		ReminderSchedule: "0 9 * * *",
		CleanupSchedule:  "@hourly",
		InactivityPause:  14 * 24 * time.Hour,
	}, logger)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	s.now = func() time.Time { return testNow }
	return s
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  SchedulerConfig
	}{
		{name: "bad reminder schedule", cfg: SchedulerConfig{ReminderSchedule: "not a cron"}},
		{name: "seconds field rejected", cfg: SchedulerConfig{ReminderSchedule: "0 0 9 * * *"}},
		{name: "bad cleanup schedule", cfg: SchedulerConfig{ReminderSchedule: "0 9 * * *", CleanupSchedule: "@sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewScheduler(&mockEnqueuer{}, &mockActivity{}, &mockCleaner{}, tt.cfg, nil); err == nil {
				t.Error("expected schedule error")
			}
		})
	}
}

func TestScheduler_SweepReminders(t *testing.T) {
	t.Parallel()

	active := uuid.New()
	idle := uuid.New()

	enq := &mockEnqueuer{}
	activity := &mockActivity{active: []uuid.UUID{active, idle}, idle: []uuid.UUID{idle}}
	s := newTestScheduler(t, enq, activity, &mockCleaner{}, nil)

	if err := s.SweepReminders(context.Background()); err != nil {
		t.Fatalf("SweepReminders() error = %v", err)
	}

	if want := testNow.Add(-14 * 24 * time.Hour); !activity.idleAfter.Equal(want) {
		t.Errorf("idle cutoff = %v, want %v", activity.idleAfter, want)
	}
	if len(activity.paused) != 1 || activity.paused[0] != idle {
		t.Errorf("paused = %v, want [%s]", activity.paused, idle)
	}
	if len(enq.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(enq.jobs))
	}
	job := enq.jobs[0]
	if job.Type != queue.JobTypeGenerateReminders || job.UserID != active {
		t.Errorf("job = %s/%s, want generate_reminders/%s", job.Type, job.UserID, active)
	}
	if job.NotAfter == nil || !job.NotAfter.Equal(testNow.Add(reminderJobTTL)) {
		t.Errorf("NotAfter = %v, want now+%v", job.NotAfter, reminderJobTTL)
	}
}

func TestScheduler_SweepReminders_Errors(t *testing.T) {
	t.Parallel()

	t.Run("list failure", func(t *testing.T) {
		t.Parallel()
		s := newTestScheduler(t, &mockEnqueuer{}, &mockActivity{listErr: errors.New("db down")}, &mockCleaner{}, nil)
		if err := s.SweepReminders(context.Background()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("pause failure still enqueues", func(t *testing.T) {
		t.Parallel()
		enq := &mockEnqueuer{}
		user := uuid.New()
		activity := &mockActivity{active: []uuid.UUID{user}, idle: []uuid.UUID{uuid.New()}, pauseErr: errors.New("db down")}
		s := newTestScheduler(t, enq, activity, &mockCleaner{}, nil)

		if err := s.SweepReminders(context.Background()); err == nil {
			t.Error("expected pause error to be reported")
		}
		if len(enq.jobs) != 1 {
			t.Errorf("enqueued %d jobs, want 1", len(enq.jobs))
		}
	})

	t.Run("enqueue failure is logged and skipped", func(t *testing.T) {
		t.Parallel()
		core, logs := observer.New(zap.WarnLevel)
		enq := &mockEnqueuer{err: errors.New("broker down")}
		s := newTestScheduler(t, enq, &mockActivity{active: []uuid.UUID{uuid.New(), uuid.New()}}, &mockCleaner{}, zap.New(core))

		if err := s.SweepReminders(context.Background()); err != nil {
			t.Fatalf("SweepReminders() error = %v", err)
		}
		if n := logs.FilterMessage("failed_to_enqueue_reminder_job").Len(); n != 2 {
			t.Errorf("logged %d enqueue failures, want 2", n)
		}
	})
}

func TestScheduler_PauseIdleUsers_Disabled(t *testing.T) {
	t.Parallel()

	activity := &mockActivity{idle: []uuid.UUID{uuid.New()}}
	s, err := NewScheduler(&mockEnqueuer{}, activity, &mockCleaner{}, SchedulerConfig{ReminderSchedule: "@daily"}, nil)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	n, err := s.PauseIdleUsers(context.Background(), testNow)
	if err != nil || n != 0 {
		t.Errorf("PauseIdleUsers() = %d, %v, want 0, nil", n, err)
	}
	if len(activity.paused) != 0 {
		t.Error("no users should be paused without an inactivity window")
	}
}

func TestScheduler_CleanupExpired(t *testing.T) {
	t.Parallel()

	cleaner := &mockCleaner{deleted: 4}
	s := newTestScheduler(t, &mockEnqueuer{}, &mockActivity{}, cleaner, nil)

	if err := s.CleanupExpired(context.Background()); err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}
	if cleaner.userID != nil {
		t.Error("cleanup should cover all users")
	}
	if !cleaner.now.Equal(testNow) {
		t.Errorf("cleanup now = %v, want %v", cleaner.now, testNow)
	}

	cleaner.err = errors.New("db down")
	if err := s.CleanupExpired(context.Background()); err == nil {
		t.Error("expected cleanup error")
	}
}

func TestScheduler_StartStops(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t, &mockEnqueuer{}, &mockActivity{}, &mockCleaner{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
