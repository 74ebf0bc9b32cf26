package relationship

import (
	"math"
	"testing"

	"github.com/benvon/smart-connections/internal/models"
)

func TestScoreInteraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     models.InteractionType
		duration *int
		want     float64
	}{
		{name: "in person", kind: models.InteractionInPerson, want: 5},
		{name: "video call", kind: models.InteractionVideoCall, want: 4},
		{name: "call", kind: models.InteractionCall, want: 3},
		{name: "text", kind: models.InteractionText, want: 2},
		{name: "email", kind: models.InteractionEmail, want: 1.5},
		{name: "social media", kind: models.InteractionSocialMedia, want: 1},
		{name: "unknown type", kind: models.InteractionType("carrier_pigeon"), want: 1},
		{name: "call for 45 minutes", kind: models.InteractionCall, duration: intPtr(45), want: 3.9},
		{name: "call for 61 minutes", kind: models.InteractionCall, duration: intPtr(61), want: 4.5},
		{name: "call for exactly 60 minutes", kind: models.InteractionCall, duration: intPtr(60), want: 3.9},
		{name: "call for 16 minutes", kind: models.InteractionCall, duration: intPtr(16), want: 3.3},
		{name: "call for 15 minutes", kind: models.InteractionCall, duration: intPtr(15), want: 3},
		{name: "zero duration", kind: models.InteractionInPerson, duration: intPtr(0), want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScoreInteraction(models.Interaction{Type: tt.kind, DurationMinutes: tt.duration})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ScoreInteraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAverageQuality(t *testing.T) {
	t.Parallel()

	if got := AverageQuality(nil); got != 0 {
		t.Errorf("AverageQuality(nil) = %v, want 0", got)
	}

	interactions := []models.Interaction{
		{Type: models.InteractionInPerson},
		{Type: models.InteractionText},
		{Type: models.InteractionSocialMedia},
	}
	if got := AverageQuality(interactions); math.Abs(got-8.0/3.0) > 1e-9 {
		t.Errorf("AverageQuality() = %v, want %v", got, 8.0/3.0)
	}
}
