package workers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/queue"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// mockMessage records how the worker settled a message
type mockMessage struct {
	job       *queue.Job
	acked     bool
	nacked    bool
	requeued  bool
	ackErr    error
	nackCalls int
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return m.ackErr
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeued = requeue
	m.nackCalls++
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

var _ queue.MessageInterface = (*mockMessage)(nil)

// mockEnqueuer captures published jobs
type mockEnqueuer struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, job *queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type mockPeople struct {
	people []models.Person
	err    error
}

func (m *mockPeople) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Person, error) {
	return m.people, m.err
}

type mockInteractions struct {
	interactions []models.Interaction
	err          error
}

func (m *mockInteractions) ListByUser(ctx context.Context, userID uuid.UUID, personID *uuid.UUID) ([]models.Interaction, error) {
	return m.interactions, m.err
}

type mockEvaluator struct {
	calls       int
	suggestions []models.Suggestion
	notify      bool
	err         error
}

func (m *mockEvaluator) Evaluate(ctx context.Context, userID uuid.UUID, suggestions []models.Suggestion) (bool, error) {
	m.calls++
	m.suggestions = suggestions
	return m.notify, m.err
}

type mockReminders struct {
	calls   int
	created int
	lastNow time.Time
	err     error
}

func (m *mockReminders) Generate(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	m.calls++
	m.lastNow = now
	return m.created, m.err
}

// mockActivity serves both the worker's ActivityReader and the scheduler's SweepActivityStore
type mockActivity struct {
	activity  *models.UserActivity
	getErr    error
	active    []uuid.UUID
	idle      []uuid.UUID
	listErr   error
	pauseErr  error
	idleAfter time.Time
	paused    []uuid.UUID
}

func (m *mockActivity) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserActivity, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.activity, nil
}

func (m *mockActivity) ListActiveUsers(ctx context.Context) ([]uuid.UUID, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	// paused users drop out of the active list, as the repository query does
	var out []uuid.UUID
	for _, id := range m.active {
		if !m.isPaused(id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *mockActivity) ListIdleUsers(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	m.idleAfter = cutoff
	return m.idle, nil
}

func (m *mockActivity) SetSweepsPaused(ctx context.Context, userID uuid.UUID, paused bool) error {
	if m.pauseErr != nil {
		return m.pauseErr
	}
	if paused {
		m.paused = append(m.paused, userID)
	}
	return nil
}

func (m *mockActivity) isPaused(id uuid.UUID) bool {
	for _, p := range m.paused {
		if p == id {
			return true
		}
	}
	return false
}

type mockCleaner struct {
	deleted int64
	err     error
	userID  *uuid.UUID
	now     time.Time
	calls   int
}

func (m *mockCleaner) DeleteExpired(ctx context.Context, userID *uuid.UUID, now time.Time) (int64, error) {
	m.calls++
	m.userID = userID
	m.now = now
	return m.deleted, m.err
}
