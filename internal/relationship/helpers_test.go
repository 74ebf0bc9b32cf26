package relationship

import (
	"time"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func newPerson(name string, closeness int) models.Person {
	return models.Person{
		ID:           uuid.New(),
		Name:         name,
		Relationship: "Friend",
		Closeness:    closeness,
	}
}

func daysAgo(days int) time.Time {
	return testNow.Add(-time.Duration(days) * 24 * time.Hour)
}

// logInteractions creates one interaction per entry in days, each that many days before testNow.
func logInteractions(personID uuid.UUID, t models.InteractionType, days ...int) []models.Interaction {
	out := make([]models.Interaction, 0, len(days))
	for _, d := range days {
		out = append(out, models.Interaction{
			ID:         uuid.New(),
			PersonID:   personID,
			Type:       t,
			OccurredAt: daysAgo(d),
		})
	}
	return out
}

func intPtr(i int) *int {
	return &i
}
