package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

type mockNotificationStore struct {
	mu       sync.Mutex
	created  []*models.Notification
	pending  map[uuid.UUID]bool
	createFn func(n *models.Notification) error
	checkErr error
}

func (m *mockNotificationStore) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createFn != nil {
		if err := m.createFn(n); err != nil {
			return err
		}
	}
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationStore) HasUnreadReminder(_ context.Context, _ uuid.UUID, personID uuid.UUID) (bool, error) {
	if m.checkErr != nil {
		return false, m.checkErr
	}
	return m.pending[personID], nil
}

func (m *mockNotificationStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

var _ ReminderStore = (*mockNotificationStore)(nil)

type mockPrefs struct {
	prefs *models.NotificationPreferences
	err   error
}

func (m *mockPrefs) Get(_ context.Context, userID uuid.UUID) (*models.NotificationPreferences, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.prefs == nil {
		p := models.DefaultNotificationPreferences(userID)
		return &p, nil
	}
	return m.prefs, nil
}

type mockPeople struct {
	people []models.Person
	err    error
}

func (m *mockPeople) ListByUser(context.Context, uuid.UUID) ([]models.Person, error) {
	return m.people, m.err
}

type mockInteractions struct {
	interactions []models.Interaction
	err          error
}

func (m *mockInteractions) ListByUser(context.Context, uuid.UUID, *uuid.UUID) ([]models.Interaction, error) {
	return m.interactions, m.err
}

type memoryState struct {
	mu      sync.Mutex
	byUser  map[uuid.UUID]string
	readErr error
}

func newMemoryState() *memoryState {
	return &memoryState{byUser: make(map[uuid.UUID]string)}
}

func (s *memoryState) SwapFingerprint(_ context.Context, userID uuid.UUID, fp string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return "", s.readErr
	}
	prev := s.byUser[userID]
	s.byUser[userID] = fp
	return prev, nil
}

func (s *memoryState) RestoreFingerprint(_ context.Context, userID uuid.UUID, claimed, previous string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byUser[userID] != claimed {
		return nil
	}
	if previous == "" {
		delete(s.byUser, userID)
	} else {
		s.byUser[userID] = previous
	}
	return nil
}

func (s *memoryState) ClearFingerprint(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}

var _ StateStore = (*memoryState)(nil)
