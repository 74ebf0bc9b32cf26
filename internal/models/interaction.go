package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionType is the channel an interaction happened over
type InteractionType string

const (
	InteractionCall        InteractionType = "call"
	InteractionText        InteractionType = "text"
	InteractionEmail       InteractionType = "email"
	InteractionInPerson    InteractionType = "in_person"
	InteractionSocialMedia InteractionType = "social_media"
	InteractionVideoCall   InteractionType = "video_call"
)

// Interaction is a logged contact with a person. Interactions are immutable once recorded.
type Interaction struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	PersonID        uuid.UUID       `json:"person_id"`
	Type            InteractionType `json:"type"`
	OccurredAt      time.Time       `json:"occurred_at"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Location        *string         `json:"location,omitempty"`
	MoodRating      *int            `json:"mood_rating,omitempty"`
	Platform        *PlatformType   `json:"platform,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
