package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/validation"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// ReminderRunner generates contact reminders on demand
type ReminderRunner interface {
	Generate(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}

// NotificationHandler handles notification and notification preference requests
type NotificationHandler struct {
	notifications database.NotificationRepositoryInterface
	prefs         database.NotificationPreferencesRepositoryInterface
	reminders     ReminderRunner
	logger        *zap.Logger
	now           func() time.Time
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications database.NotificationRepositoryInterface, prefs database.NotificationPreferencesRepositoryInterface, reminders ReminderRunner, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{
		notifications: notifications,
		prefs:         prefs,
		reminders:     reminders,
		logger:        logger,
		now:           time.Now,
	}
}

// RegisterRoutes registers notification routes on a router already scoped to /notifications
func (h *NotificationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListNotifications).Methods("GET")
	r.HandleFunc("", h.CreateNotification).Methods("POST")
	r.HandleFunc("/actions", h.PerformAction).Methods("POST")
	r.HandleFunc("/preferences", h.GetPreferences).Methods("GET")
	r.HandleFunc("/preferences", h.UpdatePreferences).Methods("PUT")
	r.HandleFunc("/{id}", h.UpdateNotification).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteNotification).Methods("DELETE")
}

// CreateNotificationRequest represents the request body for creating a notification
type CreateNotificationRequest struct {
	PersonID       *uuid.UUID                  `json:"person_id,omitempty"`
	Type           models.NotificationType     `json:"notification_type" validate:"required,notification_type"`
	Title          string                      `json:"title" validate:"required,max=200"`
	Description    *string                     `json:"description,omitempty" validate:"omitempty,max=1000"`
	Priority       models.NotificationPriority `json:"priority,omitempty" validate:"omitempty,notification_priority"`
	IsActionable   bool                        `json:"is_actionable"`
	ActionURL      *string                     `json:"action_url,omitempty" validate:"omitempty,max=500"`
	Metadata       models.NotificationMetadata `json:"metadata,omitempty"`
	ExpiresInHours *int                        `json:"expires_in_hours,omitempty" validate:"omitempty,min=1,max=8760"`
}

// UpdateNotificationRequest represents the request body for updating a notification
type UpdateNotificationRequest struct {
	IsRead *bool `json:"is_read" validate:"required"`
}

// Notification actions accepted by PerformAction
const (
	ActionMarkAllRead       = "mark_all_read"
	ActionCleanupExpired    = "cleanup_expired"
	ActionGenerateReminders = "generate_reminders"
	ActionGetUnreadCount    = "get_unread_count"
)

// NotificationActionRequest represents a bulk notification action
type NotificationActionRequest struct {
	Action string `json:"action" validate:"required,oneof=mark_all_read cleanup_expired generate_reminders get_unread_count"`
}

// NotificationActionResponse reports the outcome of a bulk action
type NotificationActionResponse struct {
	Action      string `json:"action"`
	Affected    *int64 `json:"affected,omitempty"`
	UnreadCount *int   `json:"unread_count,omitempty"`
}

// UpdatePreferencesRequest represents the request body for updating notification preferences
type UpdatePreferencesRequest struct {
	ReminderEnabled       *bool   `json:"reminder_enabled,omitempty"`
	ReminderFrequencyDays *int    `json:"reminder_frequency_days,omitempty" validate:"omitempty,min=1,max=365"`
	ActivityEnabled       *bool   `json:"activity_enabled,omitempty"`
	MilestoneEnabled      *bool   `json:"milestone_enabled,omitempty"`
	SystemEnabled         *bool   `json:"system_enabled,omitempty"`
	QuietHoursStart       *string `json:"quiet_hours_start,omitempty" validate:"omitempty,datetime=15:04"`
	QuietHoursEnd         *string `json:"quiet_hours_end,omitempty" validate:"omitempty,datetime=15:04"`
	EmailNotifications    *bool   `json:"email_notifications,omitempty"`
	PushNotifications     *bool   `json:"push_notifications,omitempty"`
}

// ListNotifications returns the user's notifications, newest first
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit := queryLimit(r, defaultNotificationLimit, maxNotificationLimit)
	includeRead := r.URL.Query().Get("include_read") != "false"

	notifications, err := h.notifications.ListByUser(r.Context(), user.ID, limit, includeRead)
	if err != nil {
		h.logger.Error("failed_to_list_notifications", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve notifications")
		return
	}

	respondJSON(w, http.StatusOK, notifications)
}

// CreateNotification creates a notification for the user
func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	title := validation.SanitizeText(req.Title)
	if title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required")
		return
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = models.NotificationMetadata{}
	}

	now := h.now()
	notification := &models.Notification{
		ID:           uuid.New(),
		UserID:       user.ID,
		PersonID:     req.PersonID,
		Type:         req.Type,
		Title:        title,
		Description:  validation.SanitizeOptionalText(req.Description),
		Priority:     priority,
		IsActionable: req.IsActionable,
		ActionURL:    req.ActionURL,
		Metadata:     metadata,
		CreatedAt:    now,
	}
	if req.ExpiresInHours != nil {
		expires := now.Add(time.Duration(*req.ExpiresInHours) * time.Hour)
		notification.ExpiresAt = &expires
	}

	if err := h.notifications.Create(r.Context(), notification); err != nil {
		h.logger.Error("failed_to_create_notification", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create notification")
		return
	}

	respondJSON(w, http.StatusCreated, notification)
}

// PerformAction runs a bulk notification action
func (h *NotificationHandler) PerformAction(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req NotificationActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	resp := NotificationActionResponse{Action: req.Action}

	switch req.Action {
	case ActionMarkAllRead:
		n, err := h.notifications.MarkAllRead(ctx, user.ID)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to mark notifications as read")
			return
		}
		resp.Affected = &n
	case ActionCleanupExpired:
		n, err := h.notifications.DeleteExpired(ctx, &user.ID, h.now())
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clean up notifications")
			return
		}
		resp.Affected = &n
	case ActionGenerateReminders:
		if h.reminders == nil {
			respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Reminder generation is not configured")
			return
		}
		created, err := h.reminders.Generate(ctx, user.ID, h.now())
		if err != nil {
			// partial success still reports what was created
			h.logger.Warn("reminder_generation_failed", zap.String("user_id", user.ID.String()), zap.Int("created", created), zap.Error(err))
			if created == 0 {
				respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to generate reminders")
				return
			}
		}
		n := int64(created)
		resp.Affected = &n
	case ActionGetUnreadCount:
		count, err := h.notifications.UnreadCount(ctx, user.ID)
		if err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to count notifications")
			return
		}
		resp.UnreadCount = &count
	}

	respondJSON(w, http.StatusOK, resp)
}

// UpdateNotification marks a notification as read
func (h *NotificationHandler) UpdateNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "notification")
	if !ok {
		return
	}

	var req UpdateNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !*req.IsRead {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Notifications can only be marked as read")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), user.ID, id); err != nil {
		respondStoreError(w, err, "Notification not found", "Failed to update notification")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "is_read": true})
}

// DeleteNotification deletes a notification
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "notification")
	if !ok {
		return
	}

	if err := h.notifications.Delete(r.Context(), user.ID, id); err != nil {
		respondStoreError(w, err, "Notification not found", "Failed to delete notification")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPreferences returns the user's notification preferences
func (h *NotificationHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	prefs, err := h.prefs.Get(r.Context(), user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve preferences")
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences applies a partial update to the user's notification preferences
func (h *NotificationHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdatePreferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	prefs, err := h.prefs.Get(ctx, user.ID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve preferences")
		return
	}

	applyBool(&prefs.ReminderEnabled, req.ReminderEnabled)
	applyBool(&prefs.ActivityEnabled, req.ActivityEnabled)
	applyBool(&prefs.MilestoneEnabled, req.MilestoneEnabled)
	applyBool(&prefs.SystemEnabled, req.SystemEnabled)
	applyBool(&prefs.EmailNotifications, req.EmailNotifications)
	applyBool(&prefs.PushNotifications, req.PushNotifications)
	if req.ReminderFrequencyDays != nil {
		prefs.ReminderFrequencyDays = *req.ReminderFrequencyDays
	}
	if req.QuietHoursStart != nil {
		prefs.QuietHoursStart = req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		prefs.QuietHoursEnd = req.QuietHoursEnd
	}

	if err := h.prefs.Upsert(ctx, prefs); err != nil {
		h.logger.Error("failed_to_update_preferences", zap.String("user_id", user.ID.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update preferences")
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

func applyBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
