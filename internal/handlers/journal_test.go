package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benvon/smart-connections/internal/models"
)

func TestJournalHandler_CreateEntry(t *testing.T) {
	t.Parallel()

	user := testUser()
	person := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Ada", Closeness: 3}

	tooManyTags := make([]string, 21)
	for i := range tooManyTags {
		tooManyTags[i] = "tag"
	}

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantTags   []string
	}{
		{name: "plain entry", body: map[string]any{"content": "Had coffee with Ada"}, wantStatus: http.StatusCreated, wantTags: []string{}},
		{name: "entry about a person", body: map[string]any{"content": "Call went well", "person_id": person.ID, "tags": []string{" work ", "", "family"}}, wantStatus: http.StatusCreated, wantTags: []string{"work", "family"}},
		{name: "missing content", body: map[string]any{"title": "Empty"}, wantStatus: http.StatusBadRequest},
		{name: "blank content", body: map[string]any{"content": "  \t "}, wantStatus: http.StatusBadRequest},
		{name: "too many tags", body: map[string]any{"content": "x", "tags": tooManyTags}, wantStatus: http.StatusBadRequest},
		{name: "tag too long", body: map[string]any{"content": "x", "tags": []string{strings.Repeat("a", 51)}}, wantStatus: http.StatusBadRequest},
		{name: "unknown person", body: map[string]any{"content": "x", "person_id": uuid.New()}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			journal := &memJournal{}
			h := NewJournalHandler(journal, &memPeople{people: []models.Person{person}}, nil, zap.NewNop())

			w := httptest.NewRecorder()
			h.CreateEntry(w, withUser(newTestRequest(http.MethodPost, "/journal", tt.body), user))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				if len(journal.entries) != 0 {
					t.Error("rejected entry was persisted")
				}
				return
			}
			got := journal.entries[0]
			if got.UserID != user.ID {
				t.Errorf("user_id = %s, want %s", got.UserID, user.ID)
			}
			if len(got.Tags) != len(tt.wantTags) {
				t.Fatalf("tags = %v, want %v", got.Tags, tt.wantTags)
			}
			for i := range tt.wantTags {
				if got.Tags[i] != tt.wantTags[i] {
					t.Errorf("tags[%d] = %q, want %q", i, got.Tags[i], tt.wantTags[i])
				}
			}
		})
	}
}

func TestJournalHandler_CreateEntryNotifies(t *testing.T) {
	t.Parallel()

	user := testUser()
	person := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Ada", Closeness: 3}
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		body            map[string]any
		wantDescription string
		wantMetadata    map[string]any
	}{
		{
			name:            "titled entry about a person",
			body:            map[string]any{"title": " Coffee ", "content": "Good chat", "mood": "happy", "person_id": person.ID},
			wantDescription: `"Coffee" was added to your journal`,
			wantMetadata:    map[string]any{"entry_title": "Coffee", "mood": "happy", "person_id": person.ID.String()},
		},
		{
			name:            "untitled entry",
			body:            map[string]any{"content": "Quiet week"},
			wantDescription: "A new entry was added to your journal",
			wantMetadata:    map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			journal := &memJournal{}
			notifications := &memNotifications{}
			h := NewJournalHandler(journal, &memPeople{people: []models.Person{person}}, notifications, zap.NewNop())
			h.now = func() time.Time { return now }

			w := httptest.NewRecorder()
			h.CreateEntry(w, withUser(newTestRequest(http.MethodPost, "/journal", tt.body), user))
			if w.Code != http.StatusCreated {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			if len(notifications.notifications) != 1 {
				t.Fatalf("created %d notifications, want 1", len(notifications.notifications))
			}

			n := notifications.notifications[0]
			if n.UserID != user.ID || n.Type != models.NotificationActivity || n.Priority != models.PriorityLow {
				t.Errorf("notification = %s/%s for %s", n.Type, n.Priority, n.UserID)
			}
			if n.Title != "Journal entry saved" {
				t.Errorf("Title = %q", n.Title)
			}
			if n.Description == nil || *n.Description != tt.wantDescription {
				t.Errorf("Description = %v, want %q", n.Description, tt.wantDescription)
			}
			if n.ExpiresAt == nil || !n.ExpiresAt.Equal(now.Add(72*time.Hour)) {
				t.Errorf("ExpiresAt = %v, want now+3d", n.ExpiresAt)
			}
			if n.Metadata["entry_id"] != journal.entries[0].ID.String() {
				t.Errorf("entry_id = %v", n.Metadata["entry_id"])
			}
			for key, want := range tt.wantMetadata {
				if n.Metadata[key] != want {
					t.Errorf("metadata[%s] = %v, want %v", key, n.Metadata[key], want)
				}
			}
			if _, ok := n.Metadata["person_id"]; ok && tt.wantMetadata["person_id"] == nil {
				t.Errorf("unexpected person_id %v", n.Metadata["person_id"])
			}
		})
	}
}

func TestJournalHandler_NotificationFailureDoesNotFailSave(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	journal := &memJournal{}
	h := NewJournalHandler(journal, &memPeople{}, &memNotifications{err: errors.New("insert failed")}, zap.New(core))

	w := httptest.NewRecorder()
	h.CreateEntry(w, withUser(newTestRequest(http.MethodPost, "/journal", map[string]any{"title": "Walk", "content": "x"}), testUser()))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if len(journal.entries) != 1 {
		t.Error("entry was not persisted")
	}
	if logs.FilterMessage("journal_activity_notification_failed").Len() != 1 {
		t.Error("expected journal_activity_notification_failed log")
	}
}

func TestJournalHandler_ListEntries(t *testing.T) {
	t.Parallel()

	user := testUser()
	ada := uuid.New()
	journal := &memJournal{entries: []models.JournalEntry{
		{ID: uuid.New(), UserID: user.ID, PersonID: &ada, Content: "about ada"},
		{ID: uuid.New(), UserID: user.ID, Content: "general"},
		{ID: uuid.New(), UserID: uuid.New(), Content: "someone else's"},
	}}
	h := NewJournalHandler(journal, &memPeople{}, nil, zap.NewNop())

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantLimit int
	}{
		{name: "default limit", wantCount: 2, wantLimit: defaultJournalLimit},
		{name: "by person", query: "?person_id=" + ada.String(), wantCount: 1, wantLimit: defaultJournalLimit},
		{name: "limit capped", query: "?limit=5000", wantCount: 2, wantLimit: maxJournalLimit},
		{name: "custom limit", query: "?limit=10", wantCount: 2, wantLimit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ListEntries(w, withUser(newTestRequest(http.MethodGet, "/journal"+tt.query, nil), user))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			var got []models.JournalEntry
			decodeEnvelope(t, w, &got)
			if len(got) != tt.wantCount {
				t.Errorf("got %d entries, want %d", len(got), tt.wantCount)
			}
			if journal.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", journal.lastLimit, tt.wantLimit)
			}
		})
	}
}

func TestJournalHandler_DeleteEntry(t *testing.T) {
	t.Parallel()

	user := testUser()
	entry := models.JournalEntry{ID: uuid.New(), UserID: user.ID, Content: "x"}
	journal := &memJournal{entries: []models.JournalEntry{entry}}
	h := NewJournalHandler(journal, &memPeople{}, nil, zap.NewNop())

	id := entry.ID.String()
	w := httptest.NewRecorder()
	h.DeleteEntry(w, withUser(withVars(newTestRequest(http.MethodDelete, "/journal/"+id, nil), map[string]string{"id": id}), testUser()))
	if w.Code != http.StatusNotFound {
		t.Errorf("deleting another user's entry: status = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	h.DeleteEntry(w, withUser(withVars(newTestRequest(http.MethodDelete, "/journal/"+id, nil), map[string]string{"id": id}), user))
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if len(journal.entries) != 0 {
		t.Error("entry was not deleted")
	}
}
