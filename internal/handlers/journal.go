package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/notify"
	"github.com/benvon/smart-connections/internal/validation"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 200
	maxJournalTags      = 20
)

// JournalHandler handles journal entries
type JournalHandler struct {
	journal       database.JournalRepositoryInterface
	people        database.PersonRepositoryInterface
	notifications notify.NotificationCreator
	logger        *zap.Logger
	now           func() time.Time
}

// NewJournalHandler creates a new journal handler. notifications may be nil to skip activity notifications.
func NewJournalHandler(journal database.JournalRepositoryInterface, people database.PersonRepositoryInterface, notifications notify.NotificationCreator, logger *zap.Logger) *JournalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalHandler{journal: journal, people: people, notifications: notifications, logger: logger, now: time.Now}
}

// RegisterRoutes registers journal routes. The router should already have the /journal prefix.
func (h *JournalHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListEntries).Methods("GET")
	r.HandleFunc("", h.CreateEntry).Methods("POST")
	r.HandleFunc("/{id}", h.DeleteEntry).Methods("DELETE")
}

// CreateJournalEntryRequest represents a new journal entry
type CreateJournalEntryRequest struct {
	PersonID  *uuid.UUID `json:"person_id,omitempty"`
	Title     *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Content   string     `json:"content" validate:"required,max=20000"`
	Mood      *string    `json:"mood,omitempty" validate:"omitempty,max=50"`
	Tags      []string   `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	IsPrivate bool       `json:"is_private"`
}

// ListEntries lists journal entries, newest first (?person_id=, ?limit=)
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	personID, err := queryUUID(r, "person_id")
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid person ID")
		return
	}

	entries, err := h.journal.ListByUser(r.Context(), user.ID, personID, queryLimit(r, defaultJournalLimit, maxJournalLimit))
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve journal entries")
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// CreateEntry creates a journal entry
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateJournalEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	content := validation.SanitizeText(req.Content)
	if content == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Content is required and cannot be empty after sanitization")
		return
	}

	ctx := r.Context()
	if req.PersonID != nil {
		if _, err := h.people.GetByID(ctx, user.ID, *req.PersonID); err != nil {
			respondStoreError(w, err, "Person not found", "Failed to retrieve person")
			return
		}
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if t := validation.SanitizeText(tag); t != "" && len(tags) < maxJournalTags {
			tags = append(tags, t)
		}
	}

	entry := &models.JournalEntry{
		ID:        uuid.New(),
		UserID:    user.ID,
		PersonID:  req.PersonID,
		Title:     validation.SanitizeOptionalText(req.Title),
		Content:   content,
		Mood:      validation.SanitizeOptionalText(req.Mood),
		Tags:      tags,
		IsPrivate: req.IsPrivate,
	}

	if err := h.journal.Create(ctx, entry); err != nil {
		h.logger.Error("failed_to_create_journal_entry", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create journal entry")
		return
	}

	h.notifyEntrySaved(r, entry)
	respondJSON(w, http.StatusCreated, entry)
}

// notifyEntrySaved records an activity notification; failures never fail the request
func (h *JournalHandler) notifyEntrySaved(r *http.Request, entry *models.JournalEntry) {
	if h.notifications == nil {
		return
	}

	description := "A new entry was added to your journal"
	metadata := models.NotificationMetadata{"entry_id": entry.ID.String()}
	if entry.Title != nil {
		description = fmt.Sprintf(`"%s" was added to your journal`, *entry.Title)
		metadata["entry_title"] = *entry.Title
	}
	if entry.Mood != nil {
		metadata["mood"] = *entry.Mood
	}
	if entry.PersonID != nil {
		metadata["person_id"] = entry.PersonID.String()
	}

	n := notify.NewActivityNotification(entry.UserID, "Journal entry saved", description, metadata, h.now())
	if err := h.notifications.Create(r.Context(), n); err != nil {
		h.logger.Warn("journal_activity_notification_failed",
			zap.String("user_id", entry.UserID.String()),
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
	}
}

// DeleteEntry deletes a journal entry
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "journal entry")
	if !ok {
		return
	}

	if err := h.journal.Delete(r.Context(), user.ID, id); err != nil {
		respondStoreError(w, err, "Journal entry not found", "Failed to delete journal entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
