package relationship

import "github.com/benvon/smart-connections/internal/models"

var baseQuality = map[models.InteractionType]float64{
	models.InteractionInPerson:    5,
	models.InteractionVideoCall:   4,
	models.InteractionCall:        3,
	models.InteractionText:        2,
	models.InteractionEmail:       1.5,
	models.InteractionSocialMedia: 1,
}

const defaultQuality = 1.0

// ScoreInteraction rates a single interaction. Richer channels score higher
// and long conversations earn one duration bonus.
func ScoreInteraction(in models.Interaction) float64 {
	score, ok := baseQuality[in.Type]
	if !ok {
		score = defaultQuality
	}
	if in.DurationMinutes == nil {
		return score
	}
	switch d := *in.DurationMinutes; {
	case d > 60:
		return score * 1.5
	case d > 30:
		return score * 1.3
	case d > 15:
		return score * 1.1
	default:
		return score
	}
}

// AverageQuality is the mean ScoreInteraction over interactions, 0 when empty.
func AverageQuality(interactions []models.Interaction) float64 {
	if len(interactions) == 0 {
		return 0
	}
	var sum float64
	for _, in := range interactions {
		sum += ScoreInteraction(in)
	}
	return sum / float64(len(interactions))
}
