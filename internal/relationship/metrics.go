// Package relationship derives health, closeness suggestions and insights
// from a user's people and interactions. Every function is pure: callers
// pass the current time explicitly and inputs are never modified.
package relationship

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

// NoContactDays is reported as days since last contact for people with no interactions.
const NoContactDays = 999

const (
	day = 24 * time.Hour

	veryRecentWindow = 7 * day
	recentWindow     = 30 * day
	priorWindowEnd   = 60 * day
)

// DaysSince returns whole days elapsed between last and now, rounded down.
// Timestamps after now yield a negative count.
func DaysSince(last, now time.Time) int {
	return int(math.Floor(now.Sub(last).Hours() / 24))
}

// metrics are the per-person aggregates the rules and insights read from.
type metrics struct {
	total        int
	recent       int
	veryRecent   int
	prior        int
	daysSince    int
	avgQuality   float64
	lastContact  time.Time
	hasContacted bool
}

// groupByPerson indexes interactions by person, preserving input order.
func groupByPerson(interactions []models.Interaction) map[uuid.UUID][]models.Interaction {
	out := make(map[uuid.UUID][]models.Interaction)
	for _, in := range interactions {
		out[in.PersonID] = append(out[in.PersonID], in)
	}
	return out
}

func computeMetrics(interactions []models.Interaction, now time.Time) metrics {
	m := metrics{total: len(interactions), daysSince: NoContactDays}

	recentFrom := now.Add(-recentWindow)
	veryRecentFrom := now.Add(-veryRecentWindow)
	priorFrom := now.Add(-priorWindowEnd)

	for _, in := range interactions {
		at := in.OccurredAt
		switch {
		case !at.Before(recentFrom):
			m.recent++
		case !at.Before(priorFrom):
			m.prior++
		}
		if !at.Before(veryRecentFrom) {
			m.veryRecent++
		}
		if !m.hasContacted || at.After(m.lastContact) {
			m.lastContact = at
			m.hasContacted = true
		}
	}

	if m.hasContacted {
		m.daysSince = DaysSince(m.lastContact, now)
	}
	m.avgQuality = AverageQuality(interactions)
	return m
}

// trend is the change in interaction volume between the prior and the latest 30 days.
func (m metrics) trend() int {
	return m.recent - m.prior
}
