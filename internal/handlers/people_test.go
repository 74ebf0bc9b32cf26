package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/services/ai"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubDrafter struct {
	draft *ai.OutreachDraft
	err   error
	got   ai.OutreachRequest
}

func (s *stubDrafter) DraftOutreach(_ context.Context, req ai.OutreachRequest) (*ai.OutreachDraft, error) {
	s.got = req
	return s.draft, s.err
}

func newTestPeopleHandler(people *memPeople, interactions *memInteractions, refresher *recordingRefresher, drafter ai.Drafter) *PeopleHandler {
	h := NewPeopleHandler(people, interactions, refresher, drafter, zap.NewNop())
	h.now = func() time.Time { return testNow }
	return h
}

func TestPeopleHandler_CreatePerson(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          any
		wantStatus    int
		wantCloseness int
	}{
		{
			name:          "defaults closeness",
			body:          map[string]any{"name": "  Ada Lovelace ", "relationship": "friend"},
			wantStatus:    http.StatusCreated,
			wantCloseness: DefaultCloseness,
		},
		{
			name:          "explicit closeness and birthday",
			body:          map[string]any{"name": "Grace", "closeness": 5, "birthday": "1990-12-09", "preferred_platform": "phone"},
			wantStatus:    http.StatusCreated,
			wantCloseness: 5,
		},
		{name: "missing name", body: map[string]any{"relationship": "friend"}, wantStatus: http.StatusBadRequest},
		{name: "closeness out of range", body: map[string]any{"name": "x", "closeness": 6}, wantStatus: http.StatusBadRequest},
		{name: "bad birthday", body: map[string]any{"name": "x", "birthday": "12/09/1990"}, wantStatus: http.StatusBadRequest},
		{name: "unknown platform", body: map[string]any{"name": "x", "preferred_platform": "pager"}, wantStatus: http.StatusBadRequest},
		{name: "name blank after sanitizing", body: map[string]any{"name": "\x00\x01"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			people := &memPeople{}
			refresher := &recordingRefresher{}
			h := newTestPeopleHandler(people, &memInteractions{}, refresher, nil)
			user := testUser()

			w := httptest.NewRecorder()
			h.CreatePerson(w, withUser(newTestRequest(http.MethodPost, "/people", tt.body), user))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				if len(people.people) != 0 || refresher.count() != 0 {
					t.Error("rejected request should not persist or refresh")
				}
				return
			}

			var got models.Person
			decodeEnvelope(t, w, &got)
			if got.Closeness != tt.wantCloseness {
				t.Errorf("closeness = %d, want %d", got.Closeness, tt.wantCloseness)
			}
			if got.UserID != user.ID {
				t.Errorf("user_id = %s, want %s", got.UserID, user.ID)
			}
			if got.Health != models.HealthInactive || got.DaysSinceLastContact == nil || *got.DaysSinceLastContact != 999 {
				t.Errorf("new person should be inactive with 999 days, got %s %v", got.Health, got.DaysSinceLastContact)
			}
			if refresher.count() != 1 {
				t.Errorf("refreshes = %d, want 1", refresher.count())
			}
		})
	}
}

func TestPeopleHandler_CreatePersonSanitizesName(t *testing.T) {
	t.Parallel()

	people := &memPeople{}
	h := newTestPeopleHandler(people, &memInteractions{}, &recordingRefresher{}, nil)

	w := httptest.NewRecorder()
	h.CreatePerson(w, withUser(newTestRequest(http.MethodPost, "/people", map[string]any{"name": "  Ada\x07 "}), testUser()))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if people.people[0].Name != "Ada" {
		t.Errorf("name = %q, want Ada", people.people[0].Name)
	}
}

func TestPeopleHandler_ListPeopleAnnotatesHealth(t *testing.T) {
	t.Parallel()

	user := testUser()
	recent := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Recent", Closeness: 3}
	stale := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Stale", Closeness: 3}
	other := models.Person{ID: uuid.New(), UserID: uuid.New(), Name: "Someone else's", Closeness: 3}
	people := &memPeople{people: []models.Person{recent, stale, other}}
	interactions := &memInteractions{interactions: []models.Interaction{
		{ID: uuid.New(), UserID: user.ID, PersonID: recent.ID, Type: models.InteractionCall, OccurredAt: testNow.AddDate(0, 0, -2)},
		{ID: uuid.New(), UserID: user.ID, PersonID: stale.ID, Type: models.InteractionText, OccurredAt: testNow.AddDate(0, 0, -14)},
	}}
	h := newTestPeopleHandler(people, interactions, &recordingRefresher{}, nil)

	w := httptest.NewRecorder()
	h.ListPeople(w, withUser(newTestRequest(http.MethodGet, "/people", nil), user))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []models.Person
	decodeEnvelope(t, w, &got)
	if len(got) != 2 {
		t.Fatalf("got %d people, want 2", len(got))
	}
	want := map[uuid.UUID]models.HealthStatus{recent.ID: models.HealthHealthy, stale.ID: models.HealthAttention}
	for _, p := range got {
		if p.Health != want[p.ID] {
			t.Errorf("%s health = %s, want %s", p.Name, p.Health, want[p.ID])
		}
	}
}

func TestPeopleHandler_GetUpdateDelete(t *testing.T) {
	t.Parallel()

	user := testUser()
	person := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Ada", Closeness: 3}

	tests := []struct {
		name       string
		call       func(h *PeopleHandler, w http.ResponseWriter, r *http.Request)
		method     string
		id         string
		asUser     *models.User
		body       any
		wantStatus int
		wantFresh  int
	}{
		{name: "get own person", call: (*PeopleHandler).GetPerson, method: http.MethodGet, id: person.ID.String(), asUser: user, wantStatus: http.StatusOK},
		{name: "get other user's person", call: (*PeopleHandler).GetPerson, method: http.MethodGet, id: person.ID.String(), asUser: testUser(), wantStatus: http.StatusNotFound},
		{name: "get malformed id", call: (*PeopleHandler).GetPerson, method: http.MethodGet, id: "nope", asUser: user, wantStatus: http.StatusBadRequest},
		{name: "get unauthenticated", call: (*PeopleHandler).GetPerson, method: http.MethodGet, id: person.ID.String(), wantStatus: http.StatusUnauthorized},
		{name: "update closeness", call: (*PeopleHandler).UpdatePerson, method: http.MethodPatch, id: person.ID.String(), asUser: user, body: map[string]any{"closeness": 4}, wantStatus: http.StatusOK, wantFresh: 1},
		{name: "update invalid closeness", call: (*PeopleHandler).UpdatePerson, method: http.MethodPatch, id: person.ID.String(), asUser: user, body: map[string]any{"closeness": 0}, wantStatus: http.StatusBadRequest},
		{name: "update blank name", call: (*PeopleHandler).UpdatePerson, method: http.MethodPatch, id: person.ID.String(), asUser: user, body: map[string]any{"name": "   "}, wantStatus: http.StatusBadRequest},
		{name: "delete", call: (*PeopleHandler).DeletePerson, method: http.MethodDelete, id: person.ID.String(), asUser: user, wantStatus: http.StatusNoContent, wantFresh: 1},
		{name: "delete missing", call: (*PeopleHandler).DeletePerson, method: http.MethodDelete, id: uuid.NewString(), asUser: user, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			people := &memPeople{people: []models.Person{person}}
			refresher := &recordingRefresher{}
			h := newTestPeopleHandler(people, &memInteractions{}, refresher, nil)

			r := withVars(newTestRequest(tt.method, "/people/"+tt.id, tt.body), map[string]string{"id": tt.id})
			if tt.asUser != nil {
				r = withUser(r, tt.asUser)
			}
			w := httptest.NewRecorder()
			tt.call(h, w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if refresher.count() != tt.wantFresh {
				t.Errorf("refreshes = %d, want %d", refresher.count(), tt.wantFresh)
			}
		})
	}
}

func TestPeopleHandler_UpdatePersonKeepsUnsetFields(t *testing.T) {
	t.Parallel()

	user := testUser()
	email := "ada@example.com"
	person := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Ada", Relationship: "friend", Closeness: 3, Email: &email}
	people := &memPeople{people: []models.Person{person}}
	h := newTestPeopleHandler(people, &memInteractions{}, &recordingRefresher{}, nil)

	id := person.ID.String()
	r := withVars(newTestRequest(http.MethodPatch, "/people/"+id, map[string]any{"relationship": "best friend"}), map[string]string{"id": id})
	w := httptest.NewRecorder()
	h.UpdatePerson(w, withUser(r, user))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := people.people[0]
	if got.Relationship != "best friend" || got.Name != "Ada" || got.Closeness != 3 || got.Email == nil || *got.Email != email {
		t.Errorf("unexpected person after partial update: %+v", got)
	}
}

func TestPeopleHandler_UpdatePersonReturnsHealth(t *testing.T) {
	t.Parallel()

	user := testUser()
	person := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Ada", Closeness: 3}
	interactions := &memInteractions{interactions: []models.Interaction{
		{ID: uuid.New(), UserID: user.ID, PersonID: person.ID, Type: models.InteractionCall, OccurredAt: testNow.AddDate(0, 0, -20)},
	}}
	h := newTestPeopleHandler(&memPeople{people: []models.Person{person}}, interactions, &recordingRefresher{}, nil)

	id := person.ID.String()
	r := withVars(newTestRequest(http.MethodPatch, "/people/"+id, map[string]any{"closeness": 4}), map[string]string{"id": id})
	w := httptest.NewRecorder()
	h.UpdatePerson(w, withUser(r, user))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got models.Person
	decodeEnvelope(t, w, &got)
	if got.Closeness != 4 {
		t.Errorf("closeness = %d, want 4", got.Closeness)
	}
	if got.Health != models.HealthAttention {
		t.Errorf("health = %q, want attention", got.Health)
	}
	if got.DaysSinceLastContact == nil || *got.DaysSinceLastContact != 20 {
		t.Errorf("days_since_last_contact = %v, want 20", got.DaysSinceLastContact)
	}
}

func TestPeopleHandler_GetPersonHealth(t *testing.T) {
	t.Parallel()

	user := testUser()
	person := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Ada", Closeness: 3}
	last := testNow.AddDate(0, 0, -10)
	interactions := &memInteractions{interactions: []models.Interaction{
		{ID: uuid.New(), UserID: user.ID, PersonID: person.ID, Type: models.InteractionCall, OccurredAt: testNow.AddDate(0, 0, -30), MoodRating: intPtr(4)},
		{ID: uuid.New(), UserID: user.ID, PersonID: person.ID, Type: models.InteractionInPerson, OccurredAt: last},
	}}
	h := newTestPeopleHandler(&memPeople{people: []models.Person{person}}, interactions, &recordingRefresher{}, nil)

	id := person.ID.String()
	w := httptest.NewRecorder()
	h.GetPersonHealth(w, withUser(withVars(newTestRequest(http.MethodGet, "/people/"+id+"/health", nil), map[string]string{"id": id}), user))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got PersonHealthResponse
	decodeEnvelope(t, w, &got)
	if got.Health != models.HealthAttention {
		t.Errorf("health = %s, want attention", got.Health)
	}
	if got.DaysSinceLastContact != 10 || got.LastContact != "2 weeks ago" {
		t.Errorf("days = %d (%q), want 10 (2 weeks ago)", got.DaysSinceLastContact, got.LastContact)
	}
	if got.LastContactAt == nil || !got.LastContactAt.Equal(last) {
		t.Errorf("last_contact_at = %v, want %v", got.LastContactAt, last)
	}
	if got.InteractionCount != 2 {
		t.Errorf("interaction_count = %d, want 2", got.InteractionCount)
	}
}

func TestPeopleHandler_DraftOutreach(t *testing.T) {
	t.Parallel()

	user := testUser()
	platform := models.PlatformWhatsApp
	person := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Ada Lovelace", Relationship: "friend", Closeness: 3, PreferredPlatform: &platform}
	interactions := &memInteractions{interactions: []models.Interaction{
		{ID: uuid.New(), UserID: user.ID, PersonID: person.ID, Type: models.InteractionCall, OccurredAt: testNow.AddDate(0, 0, -20)},
		{ID: uuid.New(), UserID: user.ID, PersonID: person.ID, Type: models.InteractionVideoCall, OccurredAt: testNow.AddDate(0, 0, -8)},
	}}

	tests := []struct {
		name       string
		drafter    *stubDrafter
		wantStatus int
	}{
		{name: "draft returned", drafter: &stubDrafter{draft: &ai.OutreachDraft{Message: "Hey Ada!", Source: ai.SourceOpenAI}}, wantStatus: http.StatusOK},
		{name: "rate limited", drafter: &stubDrafter{err: errors.New("429 Too Many Requests")}, wantStatus: http.StatusTooManyRequests},
		{name: "provider failure", drafter: &stubDrafter{err: errors.New("connection reset")}, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestPeopleHandler(&memPeople{people: []models.Person{person}}, interactions, &recordingRefresher{}, tt.drafter)
			id := person.ID.String()
			w := httptest.NewRecorder()
			h.DraftOutreach(w, withUser(withVars(newTestRequest(http.MethodPost, "/people/"+id+"/outreach-draft", nil), map[string]string{"id": id}), user))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			got := tt.drafter.got
			if got.DaysSinceLastContact != 8 {
				t.Errorf("days since = %d, want 8", got.DaysSinceLastContact)
			}
			if got.LastInteractionType == nil || *got.LastInteractionType != models.InteractionVideoCall {
				t.Errorf("last interaction type = %v, want video_call", got.LastInteractionType)
			}
			if got.PreferredPlatform == nil || *got.PreferredPlatform != platform {
				t.Errorf("preferred platform = %v, want whatsapp", got.PreferredPlatform)
			}
		})
	}
}

func TestPeopleHandler_DraftOutreachTemplateFallback(t *testing.T) {
	t.Parallel()

	user := testUser()
	person := models.Person{ID: uuid.New(), UserID: user.ID, Name: "Ada", Relationship: "family", Closeness: 3}
	h := newTestPeopleHandler(&memPeople{people: []models.Person{person}}, &memInteractions{}, &recordingRefresher{}, nil)

	id := person.ID.String()
	w := httptest.NewRecorder()
	h.DraftOutreach(w, withUser(withVars(newTestRequest(http.MethodPost, "/people/"+id+"/outreach-draft", nil), map[string]string{"id": id}), user))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var draft ai.OutreachDraft
	decodeEnvelope(t, w, &draft)
	if draft.Source != ai.SourceTemplate || draft.Message == "" {
		t.Errorf("draft = %+v, want a template message", draft)
	}
}
