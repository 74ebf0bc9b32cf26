package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/relationship"
	"github.com/benvon/smart-connections/internal/services/ai"
	"github.com/benvon/smart-connections/internal/validation"
)

const (
	// DefaultCloseness is used when a person is created without one
	DefaultCloseness = 3

	birthdayLayout = "2006-01-02"
)

// PeopleHandler handles person-related requests
type PeopleHandler struct {
	people       database.PersonRepositoryInterface
	interactions database.InteractionRepositoryInterface
	refresher    AnalyticsRefresher
	drafter      ai.Drafter
	logger       *zap.Logger
	now          func() time.Time
}

// NewPeopleHandler creates a new people handler. A nil drafter falls back to template messages.
func NewPeopleHandler(people database.PersonRepositoryInterface, interactions database.InteractionRepositoryInterface, refresher AnalyticsRefresher, drafter ai.Drafter, logger *zap.Logger) *PeopleHandler {
	if drafter == nil {
		drafter = ai.TemplateDrafter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeopleHandler{
		people:       people,
		interactions: interactions,
		refresher:    refresher,
		drafter:      drafter,
		logger:       logger,
		now:          time.Now,
	}
}

// RegisterRoutes registers people routes. The router should already have the /people prefix.
func (h *PeopleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListPeople).Methods("GET")
	r.HandleFunc("", h.CreatePerson).Methods("POST")
	r.HandleFunc("/{id}", h.GetPerson).Methods("GET")
	r.HandleFunc("/{id}", h.UpdatePerson).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeletePerson).Methods("DELETE")
	r.HandleFunc("/{id}/health", h.GetPersonHealth).Methods("GET")
	r.HandleFunc("/{id}/outreach-draft", h.DraftOutreach).Methods("POST")
}

// CreatePersonRequest represents a create person request
type CreatePersonRequest struct {
	Name              string               `json:"name" validate:"required,max=200"`
	Relationship      string               `json:"relationship" validate:"max=100"`
	Closeness         int                  `json:"closeness" validate:"omitempty,min=1,max=5"`
	Email             *string              `json:"email,omitempty" validate:"omitempty,email,max=320"`
	Phone             *string              `json:"phone,omitempty" validate:"omitempty,max=50"`
	Birthday          *string              `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes             *string              `json:"notes,omitempty" validate:"omitempty,max=5000"`
	PreferredPlatform *models.PlatformType `json:"preferred_platform,omitempty" validate:"omitempty,platform_type"`
	CustomPlatform    *string              `json:"custom_platform,omitempty" validate:"omitempty,max=100"`
	AvatarURL         *string              `json:"avatar_url,omitempty" validate:"omitempty,url,max=2000"`
}

// UpdatePersonRequest represents a partial person update
type UpdatePersonRequest struct {
	Name              *string              `json:"name,omitempty" validate:"omitempty,max=200"`
	Relationship      *string              `json:"relationship,omitempty" validate:"omitempty,max=100"`
	Closeness         *int                 `json:"closeness,omitempty" validate:"omitempty,min=1,max=5"`
	Email             *string              `json:"email,omitempty" validate:"omitempty,email,max=320"`
	Phone             *string              `json:"phone,omitempty" validate:"omitempty,max=50"`
	Birthday          *string              `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes             *string              `json:"notes,omitempty" validate:"omitempty,max=5000"`
	PreferredPlatform *models.PlatformType `json:"preferred_platform,omitempty" validate:"omitempty,platform_type"`
	CustomPlatform    *string              `json:"custom_platform,omitempty" validate:"omitempty,max=100"`
	AvatarURL         *string              `json:"avatar_url,omitempty" validate:"omitempty,url,max=2000"`
}

// PersonHealthResponse is the derived relationship health of one person
type PersonHealthResponse struct {
	PersonID                  uuid.UUID           `json:"person_id"`
	Health                    models.HealthStatus `json:"health"`
	DaysSinceLastContact      int                 `json:"days_since_last_contact"`
	LastContact               string              `json:"last_contact"`
	LastContactAt             *time.Time          `json:"last_contact_at,omitempty"`
	InteractionCount          int                 `json:"interaction_count"`
	AverageInteractionQuality float64             `json:"average_interaction_quality"`
}

func parseBirthday(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(birthdayLayout, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListPeople lists the user's people with derived health
func (h *PeopleHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	people, err := h.people.ListByUser(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve people")
		return
	}
	interactions, err := h.interactions.ListByUser(ctx, user.ID, nil)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve interactions")
		return
	}

	respondJSON(w, http.StatusOK, relationship.Annotate(people, interactions, h.now()))
}

// CreatePerson creates a new person
func (h *PeopleHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreatePersonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := validation.SanitizeText(req.Name)
	if name == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name is required and cannot be empty after sanitization")
		return
	}
	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Birthday must be YYYY-MM-DD")
		return
	}
	closeness := req.Closeness
	if closeness == 0 {
		closeness = DefaultCloseness
	}

	person := &models.Person{
		ID:                uuid.New(),
		UserID:            user.ID,
		Name:              name,
		Relationship:      validation.SanitizeText(req.Relationship),
		Closeness:         closeness,
		Email:             validation.SanitizeOptionalText(req.Email),
		Phone:             validation.SanitizeOptionalText(req.Phone),
		Birthday:          birthday,
		Notes:             validation.SanitizeOptionalText(req.Notes),
		PreferredPlatform: req.PreferredPlatform,
		CustomPlatform:    validation.SanitizeOptionalText(req.CustomPlatform),
		AvatarURL:         validation.SanitizeOptionalText(req.AvatarURL),
	}

	ctx := r.Context()
	if err := h.people.Create(ctx, person); err != nil {
		h.logger.Error("failed_to_create_person", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create person")
		return
	}
	h.refresher.ScheduleRefresh(ctx, user.ID)

	annotated := relationship.Annotate([]models.Person{*person}, nil, h.now())
	respondJSON(w, http.StatusCreated, annotated[0])
}

// loadPerson fetches a person owned by the user, writing the error response on failure
func (h *PeopleHandler) loadPerson(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*models.Person, bool) {
	id, ok := pathUUID(w, r, "id", "person")
	if !ok {
		return nil, false
	}
	person, err := h.people.GetByID(r.Context(), userID, id)
	if err != nil {
		respondStoreError(w, err, "Person not found", "Failed to retrieve person")
		return nil, false
	}
	return person, true
}

// GetPerson retrieves a person by ID with derived health
func (h *PeopleHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	person, ok := h.loadPerson(w, r, user.ID)
	if !ok {
		return
	}

	interactions, err := h.interactions.ListByUser(r.Context(), user.ID, &person.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve interactions")
		return
	}

	annotated := relationship.Annotate([]models.Person{*person}, interactions, h.now())
	respondJSON(w, http.StatusOK, annotated[0])
}

// UpdatePerson applies a partial update to a person
func (h *PeopleHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	person, ok := h.loadPerson(w, r, user.ID)
	if !ok {
		return
	}

	var req UpdatePersonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Name != nil {
		name := validation.SanitizeText(*req.Name)
		if name == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Name cannot be empty after sanitization")
			return
		}
		person.Name = name
	}
	if req.Relationship != nil {
		person.Relationship = validation.SanitizeText(*req.Relationship)
	}
	if req.Closeness != nil {
		person.Closeness = *req.Closeness
	}
	if req.Email != nil {
		person.Email = validation.SanitizeOptionalText(req.Email)
	}
	if req.Phone != nil {
		person.Phone = validation.SanitizeOptionalText(req.Phone)
	}
	if req.Birthday != nil {
		birthday, err := parseBirthday(req.Birthday)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Birthday must be YYYY-MM-DD")
			return
		}
		person.Birthday = birthday
	}
	if req.Notes != nil {
		person.Notes = validation.SanitizeOptionalText(req.Notes)
	}
	if req.PreferredPlatform != nil {
		person.PreferredPlatform = req.PreferredPlatform
	}
	if req.CustomPlatform != nil {
		person.CustomPlatform = validation.SanitizeOptionalText(req.CustomPlatform)
	}
	if req.AvatarURL != nil {
		person.AvatarURL = validation.SanitizeOptionalText(req.AvatarURL)
	}

	ctx := r.Context()
	interactions, err := h.interactions.ListByUser(ctx, user.ID, &person.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve interactions")
		return
	}
	if err := h.people.Update(ctx, person); err != nil {
		respondStoreError(w, err, "Person not found", "Failed to update person")
		return
	}
	h.refresher.ScheduleRefresh(ctx, user.ID)

	annotated := relationship.Annotate([]models.Person{*person}, interactions, h.now())
	respondJSON(w, http.StatusOK, annotated[0])
}

// DeletePerson deletes a person and their interactions
func (h *PeopleHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "person")
	if !ok {
		return
	}

	ctx := r.Context()
	if err := h.people.Delete(ctx, user.ID, id); err != nil {
		respondStoreError(w, err, "Person not found", "Failed to delete person")
		return
	}
	h.refresher.ScheduleRefresh(ctx, user.ID)

	w.WriteHeader(http.StatusNoContent)
}

// GetPersonHealth returns the derived health and contact statistics for a person
func (h *PeopleHandler) GetPersonHealth(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	person, ok := h.loadPerson(w, r, user.ID)
	if !ok {
		return
	}

	interactions, err := h.interactions.ListByUser(r.Context(), user.ID, &person.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve interactions")
		return
	}

	now := h.now()
	days := relationship.DaysSinceLastContact(person.ID, interactions, now)
	response := PersonHealthResponse{
		PersonID:                  person.ID,
		Health:                    relationship.ClassifyHealth(*person, interactions, now),
		DaysSinceLastContact:      days,
		LastContact:               relationship.FormatDaysSince(days),
		InteractionCount:          len(interactions),
		AverageInteractionQuality: relationship.AverageQuality(interactions),
	}
	if last, ok := relationship.LastContact(person.ID, interactions); ok {
		response.LastContactAt = &last
	}

	respondJSON(w, http.StatusOK, response)
}

// DraftOutreach drafts a check-in message for a person
func (h *PeopleHandler) DraftOutreach(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	person, ok := h.loadPerson(w, r, user.ID)
	if !ok {
		return
	}

	ctx := r.Context()
	interactions, err := h.interactions.ListByUser(ctx, user.ID, &person.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve interactions")
		return
	}

	req := ai.OutreachRequest{
		PersonID:             person.ID,
		PersonName:           person.Name,
		Relationship:         person.Relationship,
		DaysSinceLastContact: relationship.DaysSinceLastContact(person.ID, interactions, h.now()),
		PreferredPlatform:    person.PreferredPlatform,
	}
	if latest := latestInteraction(interactions); latest != nil {
		lastType := latest.Type
		req.LastInteractionType = &lastType
	}

	draft, err := h.drafter.DraftOutreach(ai.WithUserID(ctx, user.ID.String()), req)
	if err != nil {
		h.logger.Warn("outreach_draft_failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		if ai.IsRateLimitError(err) {
			respondJSONError(w, http.StatusTooManyRequests, "Too Many Requests", "Drafting is temporarily unavailable")
			return
		}
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to draft message")
		return
	}

	respondJSON(w, http.StatusOK, draft)
}

func latestInteraction(interactions []models.Interaction) *models.Interaction {
	var latest *models.Interaction
	for i := range interactions {
		if latest == nil || interactions[i].OccurredAt.After(latest.OccurredAt) {
			latest = &interactions[i]
		}
	}
	return latest
}
