package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
)

type memPeople struct {
	mu     sync.Mutex
	people []models.Person
	err    error
}

var _ database.PersonRepositoryInterface = (*memPeople)(nil)

func (m *memPeople) Create(_ context.Context, p *models.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.people = append(m.people, *p)
	return nil
}

func (m *memPeople) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.people {
		if p.ID == id && p.UserID == userID {
			out := p
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memPeople) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Person, 0)
	for _, p := range m.people {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPeople) Update(_ context.Context, p *models.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.people {
		if m.people[i].ID == p.ID && m.people[i].UserID == p.UserID {
			m.people[i] = *p
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memPeople) UpdateCloseness(_ context.Context, userID, id uuid.UUID, closeness int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.people {
		if m.people[i].ID == id && m.people[i].UserID == userID {
			m.people[i].Closeness = closeness
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memPeople) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.people {
		if m.people[i].ID == id && m.people[i].UserID == userID {
			m.people = append(m.people[:i], m.people[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memPeople) closeness(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.people {
		if p.ID == id {
			return p.Closeness
		}
	}
	return 0
}

type memInteractions struct {
	mu           sync.Mutex
	interactions []models.Interaction
	err          error
}

var _ database.InteractionRepositoryInterface = (*memInteractions)(nil)

func (m *memInteractions) Create(_ context.Context, in *models.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.interactions = append(m.interactions, *in)
	return nil
}

func (m *memInteractions) ListByUser(_ context.Context, userID uuid.UUID, personID *uuid.UUID) ([]models.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Interaction
	for _, in := range m.interactions {
		if in.UserID != userID || (personID != nil && in.PersonID != *personID) {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

func (m *memInteractions) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.interactions {
		if m.interactions[i].ID == id && m.interactions[i].UserID == userID {
			m.interactions = append(m.interactions[:i], m.interactions[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type memJournal struct {
	mu        sync.Mutex
	entries   []models.JournalEntry
	lastLimit int
}

var _ database.JournalRepositoryInterface = (*memJournal)(nil)

func (m *memJournal) Create(_ context.Context, e *models.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memJournal) ListByUser(_ context.Context, userID uuid.UUID, personID *uuid.UUID, limit int) ([]models.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	var out []models.JournalEntry
	for _, e := range m.entries {
		if e.UserID != userID {
			continue
		}
		if personID != nil && (e.PersonID == nil || *e.PersonID != *personID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memJournal) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id && m.entries[i].UserID == userID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

type memNotifications struct {
	mu            sync.Mutex
	notifications []models.Notification
	expiredCutoff *time.Time
	err           error
}

var _ database.NotificationRepositoryInterface = (*memNotifications)(nil)

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memNotifications) ListByUser(_ context.Context, userID uuid.UUID, limit int, includeRead bool) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.Notification, 0)
	for _, n := range m.notifications {
		if n.UserID != userID || (!includeRead && n.IsRead) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *memNotifications) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memNotifications) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.notifications {
		if m.notifications[i].UserID == userID && !m.notifications[i].IsRead {
			m.notifications[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memNotifications) Delete(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].UserID == userID {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memNotifications) DeleteExpired(_ context.Context, userID *uuid.UUID, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiredCutoff = &now
	kept := m.notifications[:0]
	var n int64
	for _, note := range m.notifications {
		if (userID == nil || note.UserID == *userID) && note.ExpiresAt != nil && note.ExpiresAt.Before(now) {
			n++
			continue
		}
		kept = append(kept, note)
	}
	m.notifications = kept
	return n, nil
}

func (m *memNotifications) HasUnreadReminder(_ context.Context, userID, personID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.UserID == userID && n.PersonID != nil && *n.PersonID == personID && n.Type == models.NotificationReminder && !n.IsRead {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNotifications) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}

type memPrefs struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]models.NotificationPreferences
}

var _ database.NotificationPreferencesRepositoryInterface = (*memPrefs)(nil)

func (m *memPrefs) Get(_ context.Context, userID uuid.UUID) (*models.NotificationPreferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		return &p, nil
	}
	p := models.DefaultNotificationPreferences(userID)
	return &p, nil
}

func (m *memPrefs) Upsert(_ context.Context, p *models.NotificationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs == nil {
		m.prefs = make(map[uuid.UUID]models.NotificationPreferences)
	}
	m.prefs[p.UserID] = *p
	return nil
}

func intPtr(v int) *int { return &v }

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "user@example.com"}
}
func stringPtr(s string) *string { return &s }
