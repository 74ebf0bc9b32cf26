package relationship

import (
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

const (
	healthyMaxDays   = 7
	attentionMaxDays = 21
)

// HealthForDays maps days since last contact to a health status.
func HealthForDays(days int) models.HealthStatus {
	switch {
	case days <= healthyMaxDays:
		return models.HealthHealthy
	case days <= attentionMaxDays:
		return models.HealthAttention
	default:
		return models.HealthInactive
	}
}

// LastContact returns the latest interaction time recorded for personID.
func LastContact(personID uuid.UUID, interactions []models.Interaction) (time.Time, bool) {
	var (
		latest time.Time
		found  bool
	)
	for _, in := range interactions {
		if in.PersonID != personID {
			continue
		}
		if !found || in.OccurredAt.After(latest) {
			latest = in.OccurredAt
			found = true
		}
	}
	return latest, found
}

// DaysSinceLastContact returns whole days since the person was last contacted,
// or NoContactDays when there is no interaction for them.
func DaysSinceLastContact(personID uuid.UUID, interactions []models.Interaction, now time.Time) int {
	last, ok := LastContact(personID, interactions)
	if !ok {
		return NoContactDays
	}
	return DaysSince(last, now)
}

// ClassifyHealth derives the health of a person from the interactions logged for them.
// interactions may contain other people's records; they are ignored.
func ClassifyHealth(person models.Person, interactions []models.Interaction, now time.Time) models.HealthStatus {
	return HealthForDays(DaysSinceLastContact(person.ID, interactions, now))
}

// Annotate returns copies of people with Health and DaysSinceLastContact filled in.
func Annotate(people []models.Person, interactions []models.Interaction, now time.Time) []models.Person {
	byPerson := groupByPerson(interactions)
	out := make([]models.Person, len(people))
	for i, p := range people {
		m := computeMetrics(byPerson[p.ID], now)
		days := m.daysSince
		p.Health = HealthForDays(days)
		p.DaysSinceLastContact = &days
		out[i] = p
	}
	return out
}
