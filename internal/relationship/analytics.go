package relationship

import (
	"time"

	"github.com/benvon/smart-connections/internal/models"
)

// Analytics bundles the engine output for one user snapshot.
type Analytics struct {
	Suggestions      []models.Suggestion `json:"suggestions"`
	TotalSuggestions int                 `json:"total_suggestions"`
	Promotions       int                 `json:"promotions"`
	Demotions        int                 `json:"demotions"`
	Insights         models.Insights     `json:"insights"`
}

// Analyze computes suggestions and insights for a snapshot of people and interactions.
func Analyze(people []models.Person, interactions []models.Interaction, now time.Time) Analytics {
	suggestions := ComputeSuggestions(people, interactions, now)
	a := Analytics{
		Suggestions:      suggestions,
		TotalSuggestions: len(suggestions),
		Insights:         ComputeInsights(people, interactions, now),
	}
	for _, s := range suggestions {
		switch s.ActionType {
		case models.ActionPromote:
			a.Promotions++
		case models.ActionDemote:
			a.Demotions++
		}
	}
	return a
}
