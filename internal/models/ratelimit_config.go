package models

import "time"

// DefaultRate applies until a rate limit is stored in the database
const DefaultRate = "5-S"

// RatelimitConfig is the per-user API rate limit in ulule/limiter format (e.g. "5-S", "100-M")
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
