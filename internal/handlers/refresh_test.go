package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/queue"
)

type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

var _ queue.Enqueuer = (*recordingEnqueuer)(nil)

func (r *recordingEnqueuer) Enqueue(_ context.Context, job *queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return r.err
}

// recordingRefresher captures refresh requests made by handlers
type recordingRefresher struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (r *recordingRefresher) ScheduleRefresh(_ context.Context, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func (r *recordingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func TestQueueRefresher_ScheduleRefresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	q := &recordingEnqueuer{}
	refresher := NewQueueRefresher(q, 5*time.Second, zap.NewNop())
	refresher.now = func() time.Time { return now }

	userID := uuid.New()
	refresher.ScheduleRefresh(context.Background(), userID)

	if len(q.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(q.jobs))
	}
	job := q.jobs[0]
	if job.Type != queue.JobTypeAnalyticsRefresh || job.UserID != userID {
		t.Errorf("job = %+v", job)
	}
	if job.NotBefore == nil || !job.NotBefore.Equal(now.Add(5*time.Second)) {
		t.Errorf("NotBefore = %v, want now+5s", job.NotBefore)
	}
	if job.NotAfter == nil || !job.NotAfter.Equal(now.Add(5*time.Second+refreshJobTTL)) {
		t.Errorf("NotAfter = %v", job.NotAfter)
	}
}

func TestQueueRefresher_FailuresAreSwallowed(t *testing.T) {
	t.Parallel()

	q := &recordingEnqueuer{err: errors.New("broker down")}
	NewQueueRefresher(q, time.Second, nil).ScheduleRefresh(context.Background(), uuid.New())
	if len(q.jobs) != 1 {
		t.Errorf("enqueue attempts = %d, want 1", len(q.jobs))
	}

	var disabled *QueueRefresher
	disabled.ScheduleRefresh(context.Background(), uuid.New())
	NewQueueRefresher(nil, time.Second, nil).ScheduleRefresh(context.Background(), uuid.New())
}
