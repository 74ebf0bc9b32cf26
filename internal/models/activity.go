package models

import (
	"time"

	"github.com/google/uuid"
)

// UserActivity records a user's most recent API use.
// Scheduled reminder sweeps skip users whose SweepsPaused flag is set; any API call clears it.
type UserActivity struct {
	UserID             uuid.UUID `json:"user_id"`
	LastAPIInteraction time.Time `json:"last_api_interaction"`
	SweepsPaused       bool      `json:"sweeps_paused"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IdleFor is how long the user has gone without calling the API
func (a *UserActivity) IdleFor(now time.Time) time.Duration {
	if a.LastAPIInteraction.IsZero() || now.Before(a.LastAPIInteraction) {
		return 0
	}
	return now.Sub(a.LastAPIInteraction)
}

// ReceivesSweeps reports whether background reminder sweeps should run for the user
func (a *UserActivity) ReceivesSweeps() bool {
	return !a.SweepsPaused
}
