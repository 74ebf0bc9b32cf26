package models

import (
	"time"

	"github.com/google/uuid"
)

// Closeness bounds. 5 is the inner circle.
const (
	MinCloseness = 1
	MaxCloseness = 5
)

// PlatformType is the preferred channel for reaching a person
type PlatformType string

const (
	PlatformWhatsApp  PlatformType = "whatsapp"
	PlatformInstagram PlatformType = "instagram"
	PlatformFacebook  PlatformType = "facebook"
	PlatformTwitter   PlatformType = "twitter"
	PlatformLinkedIn  PlatformType = "linkedin"
	PlatformPhone     PlatformType = "phone"
	PlatformEmail     PlatformType = "email"
	PlatformInPerson  PlatformType = "in_person"
	PlatformCustom    PlatformType = "custom"
)

// HealthStatus is the recency-derived health of a relationship
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthAttention HealthStatus = "attention"
	HealthInactive  HealthStatus = "inactive"
)

// Person is a tracked connection owned by a user
type Person struct {
	ID                uuid.UUID     `json:"id"`
	UserID            uuid.UUID     `json:"user_id"`
	Name              string        `json:"name"`
	Relationship      string        `json:"relationship"`
	Closeness         int           `json:"closeness"`
	Email             *string       `json:"email,omitempty"`
	Phone             *string       `json:"phone,omitempty"`
	Birthday          *time.Time    `json:"birthday,omitempty"`
	Notes             *string       `json:"notes,omitempty"`
	PreferredPlatform *PlatformType `json:"preferred_platform,omitempty"`
	CustomPlatform    *string       `json:"custom_platform,omitempty"`
	AvatarURL         *string       `json:"avatar_url,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// Derived on read, never persisted.
	Health               HealthStatus `json:"health,omitempty"`
	DaysSinceLastContact *int         `json:"days_since_last_contact,omitempty"`
}

// ClampCloseness forces a closeness value into the valid range
func ClampCloseness(c int) int {
	if c < MinCloseness {
		return MinCloseness
	}
	if c > MaxCloseness {
		return MaxCloseness
	}
	return c
}
