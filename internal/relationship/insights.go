package relationship

import (
	"sort"
	"time"

	"github.com/benvon/smart-connections/internal/models"
)

const (
	insightLimit       = 5
	neglectedAfterDays = 30
	risingTrendMinimum = 2
)

// ComputeInsights ranks the most active, neglected and rising connections.
// Each list holds at most five entries; ties keep input order.
func ComputeInsights(people []models.Person, interactions []models.Interaction, now time.Time) models.Insights {
	byPerson := groupByPerson(interactions)

	active := make([]models.ActiveConnection, 0)
	neglected := make([]models.NeglectedConnection, 0)
	rising := make([]models.RisingConnection, 0)

	for _, p := range people {
		m := computeMetrics(byPerson[p.ID], now)

		if m.recent > 0 {
			active = append(active, models.ActiveConnection{
				PersonID:         p.ID,
				PersonName:       p.Name,
				InteractionCount: m.recent,
			})
		}
		if m.daysSince > neglectedAfterDays && m.daysSince < NoContactDays {
			neglected = append(neglected, models.NeglectedConnection{
				PersonID:             p.ID,
				PersonName:           p.Name,
				DaysSinceLastContact: m.daysSince,
			})
		}
		if t := m.trend(); t > risingTrendMinimum {
			rising = append(rising, models.RisingConnection{
				PersonID:   p.ID,
				PersonName: p.Name,
				Trend:      t,
			})
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].InteractionCount > active[j].InteractionCount
	})
	sort.SliceStable(neglected, func(i, j int) bool {
		return neglected[i].DaysSinceLastContact > neglected[j].DaysSinceLastContact
	})
	sort.SliceStable(rising, func(i, j int) bool {
		return rising[i].Trend > rising[j].Trend
	})

	return models.Insights{
		MostActiveConnections: limit(active, insightLimit),
		NeglectedConnections:  limit(neglected, insightLimit),
		RisingConnections:     limit(rising, insightLimit),
	}
}

func limit[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
