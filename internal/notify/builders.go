// Package notify turns engine output and contact history into user notifications.
package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/relationship"
)

const (
	suggestionsTitle     = "New Relationship Insights Available"
	suggestionsActionURL = "/?view=map"

	activityTTL = 3 * 24 * time.Hour
	reminderTTL = 7 * 24 * time.Hour
)

func strPtr(s string) *string {
	return &s
}

func expiresAt(now time.Time, ttl time.Duration) *time.Time {
	t := now.Add(ttl)
	return &t
}

// NewSuggestionsNotification summarizes high-confidence closeness suggestions
func NewSuggestionsNotification(userID uuid.UUID, high []models.Suggestion, now time.Time) *models.Notification {
	types := make([]string, 0, len(high))
	for _, s := range high {
		types = append(types, string(s.ActionType))
	}

	return &models.Notification{
		UserID:       userID,
		Type:         models.NotificationActivity,
		Title:        suggestionsTitle,
		Description:  strPtr(fmt.Sprintf("%d high-confidence suggestions for updating your relationship circles", len(high))),
		Priority:     models.PriorityMedium,
		IsActionable: true,
		ActionURL:    strPtr(suggestionsActionURL),
		Metadata: models.NotificationMetadata{
			"suggestion_count": len(high),
			"suggestion_types": types,
		},
		ExpiresAt: expiresAt(now, activityTTL),
	}
}

// NewContactReminder asks the user to reach out to someone they have not contacted in days
func NewContactReminder(userID uuid.UUID, person models.Person, days int, now time.Time) *models.Notification {
	personID := person.ID
	return &models.Notification{
		UserID:       userID,
		PersonID:     &personID,
		Type:         models.NotificationReminder,
		Title:        fmt.Sprintf("Time to reach out to %s", person.Name),
		Description:  strPtr("Last contact: " + relationship.FormatDaysSince(days)),
		Priority:     relationship.OverduePriority(days),
		IsActionable: true,
		ActionURL:    strPtr("/people/" + person.ID.String()),
		Metadata: models.NotificationMetadata{
			"person_id":          person.ID.String(),
			"person_name":        person.Name,
			"days_since_contact": days,
			"reminder_type":      "contact_overdue",
		},
		ExpiresAt: expiresAt(now, reminderTTL),
	}
}

// NewActivityNotification records something that happened in the user's network
func NewActivityNotification(userID uuid.UUID, title, description string, metadata models.NotificationMetadata, now time.Time) *models.Notification {
	return &models.Notification{
		UserID:      userID,
		Type:        models.NotificationActivity,
		Title:       title,
		Description: strPtr(description),
		Priority:    models.PriorityLow,
		Metadata:    metadata,
		ExpiresAt:   expiresAt(now, activityTTL),
	}
}
