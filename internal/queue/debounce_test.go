package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []*Job
	err  error
}

func (r *recordingEnqueuer) Enqueue(_ context.Context, job *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *recordingEnqueuer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return mr, client
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	next := &recordingEnqueuer{}
	d := NewDebouncer(next, client, 5*time.Second)
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 4; i++ {
		if err := d.Enqueue(ctx, NewJob(JobTypeAnalyticsRefresh, userID, time.Now())); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}
	if got := next.count(); got != 1 {
		t.Fatalf("enqueued %d jobs during burst, want 1", got)
	}

	mr.FastForward(6 * time.Second)

	if err := d.Enqueue(ctx, NewJob(JobTypeAnalyticsRefresh, userID, time.Now())); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if got := next.count(); got != 2 {
		t.Errorf("enqueued %d jobs after window, want 2", got)
	}
}

func TestDebouncer_SeparatesUsersAndTypes(t *testing.T) {
	t.Parallel()

	_, client := newTestRedis(t)
	next := &recordingEnqueuer{}
	d := NewDebouncer(next, client, time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	_ = d.Enqueue(ctx, NewJob(JobTypeAnalyticsRefresh, userID, time.Now()))
	_ = d.Enqueue(ctx, NewJob(JobTypeGenerateReminders, userID, time.Now()))
	_ = d.Enqueue(ctx, NewJob(JobTypeAnalyticsRefresh, uuid.New(), time.Now()))

	if got := next.count(); got != 3 {
		t.Errorf("enqueued %d jobs, want 3", got)
	}
}

func TestDebouncer_ReleasesKeyOnFailure(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	next := &recordingEnqueuer{err: errors.New("broker down")}
	d := NewDebouncer(next, client, time.Minute)
	job := NewJob(JobTypeAnalyticsRefresh, uuid.New(), time.Now())

	if err := d.Enqueue(context.Background(), job); err == nil {
		t.Fatal("Enqueue() error = nil, want broker error")
	}
	if mr.Exists(debounceKey(job)) {
		t.Error("debounce key kept after failed enqueue; the next edit would be dropped")
	}
}

func TestDebouncer_NilClientPassesThrough(t *testing.T) {
	t.Parallel()

	next := &recordingEnqueuer{}
	d := NewDebouncer(next, nil, time.Minute)
	userID := uuid.New()

	_ = d.Enqueue(context.Background(), NewJob(JobTypeAnalyticsRefresh, userID, time.Now()))
	_ = d.Enqueue(context.Background(), NewJob(JobTypeAnalyticsRefresh, userID, time.Now()))

	if got := next.count(); got != 2 {
		t.Errorf("enqueued %d jobs, want 2", got)
	}
}
