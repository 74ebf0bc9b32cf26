package relationship

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
)

const (
	reminderMinDays = 7
	reminderLimit   = 5
)

var outreachIdeas = map[string][]string{
	"family":    {"Call to check in", "Send a photo update", "Plan a visit"},
	"friend":    {"Send a message", "Share something funny", "Plan to meet up"},
	"colleague": {"Check in about work", "Send a professional update", "Schedule a coffee"},
	"default":   {"Send a message", "Give them a call", "Share an update"},
}

// ContactReminders returns up to five people who have not been contacted for
// at least a week, most urgent first.
func ContactReminders(people []models.Person, interactions []models.Interaction, now time.Time) []models.ReminderCandidate {
	byPerson := groupByPerson(interactions)
	out := make([]models.ReminderCandidate, 0)

	for _, p := range people {
		days := computeMetrics(byPerson[p.ID], now).daysSince
		if days < reminderMinDays {
			continue
		}
		label := p.Relationship
		if label == "" {
			label = "Friend"
		}
		out = append(out, models.ReminderCandidate{
			PersonID:             p.ID,
			PersonName:           p.Name,
			Relationship:         label,
			DaysSinceLastContact: days,
			LastContact:          FormatDaysSince(days),
			Priority:             PanelPriority(p.Relationship, days),
			Suggestion:           OutreachIdea(p.ID, p.Relationship),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		return out[i].DaysSinceLastContact > out[j].DaysSinceLastContact
	})
	return limit(out, reminderLimit)
}

// PanelPriority ranks an overdue contact by how close the relationship label suggests it is.
func PanelPriority(relationship string, days int) models.NotificationPriority {
	label := strings.ToLower(relationship)
	switch {
	case strings.Contains(label, "family"), strings.Contains(label, "parent"), strings.Contains(label, "sibling"):
		if days > 14 {
			return models.PriorityHigh
		}
		return models.PriorityMedium
	case strings.Contains(label, "best friend"), strings.Contains(label, "partner"):
		if days > 10 {
			return models.PriorityHigh
		}
		return models.PriorityMedium
	default:
		if days > 21 {
			return models.PriorityMedium
		}
		return models.PriorityLow
	}
}

// OverduePriority is the priority of a generated contact reminder.
func OverduePriority(days int) models.NotificationPriority {
	switch {
	case days > 30:
		return models.PriorityHigh
	case days > 21:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// OutreachIdea picks a suggested next step for a person. The choice is stable per person.
func OutreachIdea(personID uuid.UUID, relationship string) string {
	label := strings.ToLower(relationship)
	ideas := outreachIdeas["default"]
	switch {
	case strings.Contains(label, "family"):
		ideas = outreachIdeas["family"]
	case strings.Contains(label, "friend"):
		ideas = outreachIdeas["friend"]
	case strings.Contains(label, "colleague"):
		ideas = outreachIdeas["colleague"]
	}
	idx := xxhash.Sum64(personID[:]) % uint64(len(ideas))
	return ideas[idx]
}

// FormatDaysSince renders days since last contact for display.
func FormatDaysSince(days int) string {
	switch {
	case days == NoContactDays:
		return "No contact yet"
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", int(math.Ceil(float64(days)/7)))
	default:
		return fmt.Sprintf("%d months ago", int(math.Ceil(float64(days)/30)))
	}
}
