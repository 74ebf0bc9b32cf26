package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/validation"
)

// InteractionHandler handles interaction logging
type InteractionHandler struct {
	interactions database.InteractionRepositoryInterface
	people       database.PersonRepositoryInterface
	refresher    AnalyticsRefresher
	logger       *zap.Logger
	now          func() time.Time
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(interactions database.InteractionRepositoryInterface, people database.PersonRepositoryInterface, refresher AnalyticsRefresher, logger *zap.Logger) *InteractionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionHandler{
		interactions: interactions,
		people:       people,
		refresher:    refresher,
		logger:       logger,
		now:          time.Now,
	}
}

// RegisterRoutes registers interaction routes. The router should already have the /interactions prefix.
func (h *InteractionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListInteractions).Methods("GET")
	r.HandleFunc("", h.CreateInteraction).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteInteraction).Methods("DELETE")
}

// CreateInteractionRequest represents a logged contact
type CreateInteractionRequest struct {
	PersonID        uuid.UUID              `json:"person_id" validate:"required"`
	Type            models.InteractionType `json:"type" validate:"required,interaction_type"`
	OccurredAt      *time.Time             `json:"occurred_at,omitempty"`
	DurationMinutes *int                   `json:"duration_minutes,omitempty" validate:"omitempty,min=0,max=1440"`
	Description     *string                `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location        *string                `json:"location,omitempty" validate:"omitempty,max=200"`
	MoodRating      *int                   `json:"mood_rating,omitempty" validate:"omitempty,min=1,max=5"`
	Platform        *models.PlatformType   `json:"platform,omitempty" validate:"omitempty,platform_type"`
}

// ListInteractions lists the user's interactions, optionally for one person (?person_id=)
func (h *InteractionHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	personID, err := queryUUID(r, "person_id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid person ID")
		return
	}

	interactions, err := h.interactions.ListByUser(r.Context(), user.ID, personID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve interactions")
		return
	}
	if interactions == nil {
		interactions = []models.Interaction{}
	}

	respondJSON(w, http.StatusOK, interactions)
}

// CreateInteraction logs an interaction with one of the user's people
func (h *InteractionHandler) CreateInteraction(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateInteractionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	if _, err := h.people.GetByID(ctx, user.ID, req.PersonID); err != nil {
		respondStoreError(w, err, "Person not found", "Failed to retrieve person")
		return
	}

	now := h.now()
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	interaction := &models.Interaction{
		ID:              uuid.New(),
		UserID:          user.ID,
		PersonID:        req.PersonID,
		Type:            req.Type,
		OccurredAt:      occurredAt,
		DurationMinutes: req.DurationMinutes,
		Description:     validation.SanitizeOptionalText(req.Description),
		Location:        validation.SanitizeOptionalText(req.Location),
		MoodRating:      req.MoodRating,
		Platform:        req.Platform,
	}

	if err := h.interactions.Create(ctx, interaction); err != nil {
		h.logger.Error("failed_to_create_interaction", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create interaction")
		return
	}
	h.refresher.ScheduleRefresh(ctx, user.ID)

	respondJSON(w, http.StatusCreated, interaction)
}

// DeleteInteraction deletes an interaction
func (h *InteractionHandler) DeleteInteraction(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "interaction")
	if !ok {
		return
	}

	ctx := r.Context()
	if err := h.interactions.Delete(ctx, user.ID, id); err != nil {
		respondStoreError(w, err, "Interaction not found", "Failed to delete interaction")
		return
	}
	h.refresher.ScheduleRefresh(ctx, user.ID)

	w.WriteHeader(http.StatusNoContent)
}
