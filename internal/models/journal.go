package models

import (
	"time"

	"github.com/google/uuid"
)

// JournalEntry is a free-form note, optionally tied to a person
type JournalEntry struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	PersonID  *uuid.UUID `json:"person_id,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Content   string     `json:"content"`
	Mood      *string    `json:"mood,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	IsPrivate bool       `json:"is_private"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
