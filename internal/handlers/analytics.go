package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/relationship"
)

// SuggestionNotifier is told about every freshly computed suggestion set
type SuggestionNotifier interface {
	MaybeNotifyHighConfidenceSuggestions(ctx context.Context, userID uuid.UUID, suggestions []models.Suggestion)
}

// AnalyticsHandler serves engine output computed from the user's current data
type AnalyticsHandler struct {
	people       database.PersonRepositoryInterface
	interactions database.InteractionRepositoryInterface
	notifier     SuggestionNotifier
	refresher    AnalyticsRefresher
	logger       *zap.Logger
	now          func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler. A nil notifier disables suggestion notifications.
func NewAnalyticsHandler(people database.PersonRepositoryInterface, interactions database.InteractionRepositoryInterface, notifier SuggestionNotifier, refresher AnalyticsRefresher, logger *zap.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsHandler{
		people:       people,
		interactions: interactions,
		notifier:     notifier,
		refresher:    refresher,
		logger:       logger,
		now:          time.Now,
	}
}

// RegisterRoutes registers analytics and reminder routes on the /api/v1 router
func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analytics", h.GetAnalytics).Methods("GET")
	r.HandleFunc("/analytics/suggestions", h.GetSuggestions).Methods("GET")
	r.HandleFunc("/analytics/insights", h.GetInsights).Methods("GET")
	r.HandleFunc("/analytics/suggestions/{person_id}/accept", h.AcceptSuggestion).Methods("POST")
	r.HandleFunc("/reminders", h.GetReminders).Methods("GET")
}

// SuggestionsResponse is the suggestion list with summary counts
type SuggestionsResponse struct {
	Suggestions      []models.Suggestion `json:"suggestions"`
	TotalSuggestions int                 `json:"total_suggestions"`
	HighConfidence   int                 `json:"high_confidence"`
}

// AcceptSuggestionResponse reports the persisted closeness change
type AcceptSuggestionResponse struct {
	PersonID          uuid.UUID `json:"person_id"`
	PreviousCloseness int       `json:"previous_closeness"`
	Closeness         int       `json:"closeness"`
}

// snapshot loads the engine's inputs for a user, writing the error response on failure
func (h *AnalyticsHandler) snapshot(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) ([]models.Person, []models.Interaction, bool) {
	people, err := h.people.ListByUser(ctx, userID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve people")
		return nil, nil, false
	}
	interactions, err := h.interactions.ListByUser(ctx, userID, nil)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve interactions")
		return nil, nil, false
	}
	return people, interactions, true
}

func (h *AnalyticsHandler) notify(ctx context.Context, userID uuid.UUID, suggestions []models.Suggestion) {
	if h.notifier != nil {
		h.notifier.MaybeNotifyHighConfidenceSuggestions(ctx, userID, suggestions)
	}
}

// GetAnalytics returns suggestions, counts and insights in one response
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx, span := otel.Tracer("handlers").Start(r.Context(), "analytics.compute")
	defer span.End()

	people, interactions, ok := h.snapshot(ctx, w, user.ID)
	if !ok {
		return
	}
	analytics := relationship.Analyze(people, interactions, h.now())
	span.SetAttributes(
		attribute.Int("people", len(people)),
		attribute.Int("interactions", len(interactions)),
		attribute.Int("suggestions", analytics.TotalSuggestions),
	)
	h.notify(ctx, user.ID, analytics.Suggestions)

	respondJSON(w, http.StatusOK, analytics)
}

// GetSuggestions returns the current closeness suggestions
func (h *AnalyticsHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	people, interactions, ok := h.snapshot(ctx, w, user.ID)
	if !ok {
		return
	}
	suggestions := relationship.ComputeSuggestions(people, interactions, h.now())
	h.notify(ctx, user.ID, suggestions)

	respondJSON(w, http.StatusOK, SuggestionsResponse{
		Suggestions:      suggestions,
		TotalSuggestions: len(suggestions),
		HighConfidence:   len(relationship.HighConfidence(suggestions)),
	})
}

// GetInsights returns most active, neglected and rising connections
func (h *AnalyticsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	people, interactions, ok := h.snapshot(r.Context(), w, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, relationship.ComputeInsights(people, interactions, h.now()))
}

// AcceptSuggestion persists the currently suggested closeness for a person
func (h *AnalyticsHandler) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	personID, ok := pathUUID(w, r, "person_id", "person")
	if !ok {
		return
	}

	ctx := r.Context()
	people, interactions, ok := h.snapshot(ctx, w, user.ID)
	if !ok {
		return
	}

	var accepted *models.Suggestion
	for _, s := range relationship.ComputeSuggestions(people, interactions, h.now()) {
		if s.PersonID == personID {
			accepted = &s
			break
		}
	}
	if accepted == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "No current suggestion for this person")
		return
	}

	if err := h.people.UpdateCloseness(ctx, user.ID, personID, accepted.SuggestedCloseness); err != nil {
		respondStoreError(w, err, "Person not found", "Failed to update closeness")
		return
	}
	h.logger.Info("suggestion_accepted",
		zap.String("user_id", user.ID.String()),
		zap.String("person_id", personID.String()),
		zap.String("action_type", string(accepted.ActionType)),
		zap.Int("closeness", accepted.SuggestedCloseness),
	)
	h.refresher.ScheduleRefresh(ctx, user.ID)

	respondJSON(w, http.StatusOK, AcceptSuggestionResponse{
		PersonID:          personID,
		PreviousCloseness: accepted.CurrentCloseness,
		Closeness:         accepted.SuggestedCloseness,
	})
}

// GetReminders returns the top people the user should reach out to
func (h *AnalyticsHandler) GetReminders(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	people, interactions, ok := h.snapshot(r.Context(), w, user.ID)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, relationship.ContactReminders(people, interactions, h.now()))
}
