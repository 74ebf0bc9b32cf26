package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType categorizes a notification
type NotificationType string

const (
	NotificationReminder  NotificationType = "reminder"
	NotificationActivity  NotificationType = "activity"
	NotificationMilestone NotificationType = "milestone"
	NotificationSystem    NotificationType = "system"
)

// NotificationPriority orders notifications for display
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Rank returns a sortable weight for the priority (high > medium > low)
func (p NotificationPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// NotificationMetadata is free-form JSON attached to a notification
type NotificationMetadata map[string]any

// Value implements driver.Valuer for JSONB columns
func (m NotificationMetadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB columns
func (m *NotificationMetadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = NotificationMetadata{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	out := NotificationMetadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode notification metadata: %w", err)
	}
	*m = out
	return nil
}

// Notification is a user-facing message produced by reminders, the suggestion trigger or the system
type Notification struct {
	ID           uuid.UUID            `json:"id"`
	UserID       uuid.UUID            `json:"user_id"`
	PersonID     *uuid.UUID           `json:"person_id,omitempty"`
	Type         NotificationType     `json:"type"`
	Title        string               `json:"title"`
	Description  *string              `json:"description,omitempty"`
	Priority     NotificationPriority `json:"priority"`
	IsRead       bool                 `json:"is_read"`
	IsActionable bool                 `json:"is_actionable"`
	ActionURL    *string              `json:"action_url,omitempty"`
	Metadata     NotificationMetadata `json:"metadata"`
	CreatedAt    time.Time            `json:"created_at"`
	ReadAt       *time.Time           `json:"read_at,omitempty"`
	ExpiresAt    *time.Time           `json:"expires_at,omitempty"`
}

// NotificationPreferences controls which notifications a user receives
type NotificationPreferences struct {
	UserID                uuid.UUID `json:"user_id"`
	ReminderEnabled       bool      `json:"reminder_enabled"`
	ReminderFrequencyDays int       `json:"reminder_frequency_days"`
	ActivityEnabled       bool      `json:"activity_enabled"`
	MilestoneEnabled      bool      `json:"milestone_enabled"`
	SystemEnabled         bool      `json:"system_enabled"`
	QuietHoursStart       *string   `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd         *string   `json:"quiet_hours_end,omitempty"`
	EmailNotifications    bool      `json:"email_notifications"`
	PushNotifications     bool      `json:"push_notifications"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultReminderFrequencyDays applies when preferences are missing or invalid
const DefaultReminderFrequencyDays = 7

// DefaultNotificationPreferences returns the preferences a new user starts with
func DefaultNotificationPreferences(userID uuid.UUID) NotificationPreferences {
	return NotificationPreferences{
		UserID:                userID,
		ReminderEnabled:       true,
		ReminderFrequencyDays: DefaultReminderFrequencyDays,
		ActivityEnabled:       true,
		MilestoneEnabled:      true,
		SystemEnabled:         true,
		PushNotifications:     true,
	}
}

// EffectiveFrequencyDays returns the reminder frequency, falling back to the default
func (p NotificationPreferences) EffectiveFrequencyDays() int {
	if p.ReminderFrequencyDays <= 0 {
		return DefaultReminderFrequencyDays
	}
	return p.ReminderFrequencyDays
}
