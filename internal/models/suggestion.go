package models

import "github.com/google/uuid"

// Confidence of a closeness suggestion
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank returns a sortable weight (high > medium > low)
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// ActionType is the direction of a closeness change
type ActionType string

const (
	ActionPromote  ActionType = "promote"
	ActionDemote   ActionType = "demote"
	ActionMaintain ActionType = "maintain"
)

// Suggestion proposes moving a person to a different closeness level
type Suggestion struct {
	PersonID                  uuid.UUID  `json:"person_id"`
	PersonName                string     `json:"person_name"`
	CurrentCloseness          int        `json:"current_closeness"`
	SuggestedCloseness        int        `json:"suggested_closeness"`
	Reason                    string     `json:"reason"`
	Confidence                Confidence `json:"confidence"`
	ActionType                ActionType `json:"action_type"`
	InteractionCount          int        `json:"interaction_count"`
	DaysSinceLastContact      int        `json:"days_since_last_contact"`
	AverageInteractionQuality float64    `json:"average_interaction_quality"`
}

// ActiveConnection is a person ranked by recent interaction volume
type ActiveConnection struct {
	PersonID         uuid.UUID `json:"person_id"`
	PersonName       string    `json:"person_name"`
	InteractionCount int       `json:"interaction_count"`
}

// NeglectedConnection is a person ranked by time since last contact
type NeglectedConnection struct {
	PersonID             uuid.UUID `json:"person_id"`
	PersonName           string    `json:"person_name"`
	DaysSinceLastContact int       `json:"days_since_last_contact"`
}

// RisingConnection is a person whose interaction volume is growing
type RisingConnection struct {
	PersonID   uuid.UUID `json:"person_id"`
	PersonName string    `json:"person_name"`
	Trend      int       `json:"trend"`
}

// Insights summarizes a user's relationship activity
type Insights struct {
	MostActiveConnections []ActiveConnection    `json:"most_active_connections"`
	NeglectedConnections  []NeglectedConnection `json:"neglected_connections"`
	RisingConnections     []RisingConnection    `json:"rising_connections"`
}

// ReminderCandidate is a person surfaced on the reminders panel
type ReminderCandidate struct {
	PersonID             uuid.UUID            `json:"person_id"`
	PersonName           string               `json:"person_name"`
	Relationship         string               `json:"relationship"`
	DaysSinceLastContact int                  `json:"days_since_last_contact"`
	LastContact          string               `json:"last_contact"`
	Priority             NotificationPriority `json:"priority"`
	Suggestion           string               `json:"suggestion"`
}
