package relationship

import (
	"fmt"
	"sort"
	"time"

	"github.com/benvon/smart-connections/internal/models"
)

// rule is one closeness adjustment. The first matching rule wins.
type rule struct {
	name       string
	confidence models.Confidence
	action     models.ActionType
	matches    func(m metrics, closeness int) bool
	target     func(closeness int) int
	reason     func(m metrics) string
}

// rules are ordered promotions first, then the strongest demotion, so a
// relationship gone quiet for half a year drops straight to the outer circle.
// long_silence is checked before quarter_silence and close_circle_silence on
// purpose: closeness 4-5 after more than 180 days becomes 1 with high confidence,
// not a one-step medium demotion.
var rules = []rule{
	{
		name:       "weekly_frequency",
		confidence: models.ConfidenceHigh,
		action:     models.ActionPromote,
		matches: func(m metrics, c int) bool {
			return m.veryRecent >= 5 && c < 5
		},
		target: func(c int) int { return min(5, c+1) },
		reason: func(m metrics) string {
			return fmt.Sprintf("%d interactions in the past week suggests a very close relationship", m.veryRecent)
		},
	},
	{
		name:       "monthly_quality",
		confidence: models.ConfidenceHigh,
		action:     models.ActionPromote,
		matches: func(m metrics, c int) bool {
			return m.recent >= 8 && m.avgQuality > 2.5 && c < 4
		},
		target: func(c int) int { return min(4, c+1) },
		reason: func(m metrics) string {
			return fmt.Sprintf("%d high-quality interactions this month indicates growing closeness (average quality %.1f)", m.recent, m.avgQuality)
		},
	},
	{
		name:       "monthly_frequency",
		confidence: models.ConfidenceMedium,
		action:     models.ActionPromote,
		matches: func(m metrics, c int) bool {
			return m.recent >= 5 && c < 3
		},
		target: func(c int) int { return min(3, c+1) },
		reason: func(m metrics) string {
			return fmt.Sprintf("%d interactions this month suggests closer relationship", m.recent)
		},
	},
	{
		name:       "long_silence",
		confidence: models.ConfidenceHigh,
		action:     models.ActionDemote,
		matches: func(m metrics, c int) bool {
			return m.daysSince > 180 && c > 1
		},
		target: func(int) int { return 1 },
		reason: func(m metrics) string {
			return fmt.Sprintf("%d days without contact suggests this relationship has become distant", m.daysSince)
		},
	},
	{
		name:       "quarter_silence",
		confidence: models.ConfidenceMedium,
		action:     models.ActionDemote,
		matches: func(m metrics, c int) bool {
			return m.daysSince > 90 && c > 2
		},
		target: func(c int) int { return max(1, c-1) },
		reason: func(m metrics) string {
			return fmt.Sprintf("%d days since last contact suggests relationship has become more distant", m.daysSince)
		},
	},
	{
		name:       "close_circle_silence",
		confidence: models.ConfidenceMedium,
		action:     models.ActionDemote,
		matches: func(m metrics, c int) bool {
			return m.daysSince > 60 && m.recent == 0 && c > 3
		},
		target: func(c int) int { return max(2, c-1) },
		reason: func(m metrics) string {
			return fmt.Sprintf("No contact in %d days for a close relationship suggests it needs attention", m.daysSince)
		},
	},
}

// ComputeSuggestions proposes closeness changes for each person. At most one
// suggestion is produced per person, and only when it would change closeness.
// Results are ordered by confidence, then promotions before demotions, then input order.
func ComputeSuggestions(people []models.Person, interactions []models.Interaction, now time.Time) []models.Suggestion {
	byPerson := groupByPerson(interactions)
	out := make([]models.Suggestion, 0)

	for _, p := range people {
		m := computeMetrics(byPerson[p.ID], now)
		s, ok := suggest(p, m)
		if ok {
			out = append(out, s)
		}
	}

	sortSuggestions(out)
	return out
}

func suggest(p models.Person, m metrics) (models.Suggestion, bool) {
	for _, r := range rules {
		if !r.matches(m, p.Closeness) {
			continue
		}
		target := models.ClampCloseness(r.target(p.Closeness))
		if target == p.Closeness {
			return models.Suggestion{}, false
		}
		return models.Suggestion{
			PersonID:                  p.ID,
			PersonName:                p.Name,
			CurrentCloseness:          p.Closeness,
			SuggestedCloseness:        target,
			Reason:                    r.reason(m),
			Confidence:                r.confidence,
			ActionType:                r.action,
			InteractionCount:          m.total,
			DaysSinceLastContact:      m.daysSince,
			AverageInteractionQuality: m.avgQuality,
		}, true
	}
	return models.Suggestion{}, false
}

func sortSuggestions(s []models.Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		ci, cj := s[i].Confidence.Rank(), s[j].Confidence.Rank()
		if ci != cj {
			return ci > cj
		}
		return actionRank(s[i].ActionType) > actionRank(s[j].ActionType)
	})
}

func actionRank(a models.ActionType) int {
	if a == models.ActionPromote {
		return 1
	}
	return 0
}

// HighConfidence returns the high-confidence subset of suggestions, preserving order.
func HighConfidence(suggestions []models.Suggestion) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if s.Confidence == models.ConfidenceHigh {
			out = append(out, s)
		}
	}
	return out
}
