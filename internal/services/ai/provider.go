package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/relationship"
)

// Draft sources
const (
	SourceOpenAI   = "openai"
	SourceTemplate = "template"
)

// OutreachRequest describes who the user wants to reach out to
type OutreachRequest struct {
	PersonID             uuid.UUID
	PersonName           string
	Relationship         string
	DaysSinceLastContact int
	PreferredPlatform    *models.PlatformType
	LastInteractionType  *models.InteractionType
}

// OutreachDraft is a suggested check-in message
type OutreachDraft struct {
	Message string `json:"message"`
	Idea    string `json:"idea"`
	Source  string `json:"source"`
	Model   string `json:"model,omitempty"`
}

// Drafter produces outreach drafts
type Drafter interface {
	DraftOutreach(ctx context.Context, req OutreachRequest) (*OutreachDraft, error)
}

// DrafterFactory creates a drafter from provider configuration
type DrafterFactory func(config map[string]string) (Drafter, error)

// ProviderRegistry stores available drafting providers
type ProviderRegistry struct {
	providers map[string]DrafterFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]DrafterFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory DrafterFactory) {
	r.providers[name] = factory
}

// GetProvider builds the named provider
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Drafter, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}

// TemplateDrafter writes drafts without calling a model. The same person always gets the same idea.
type TemplateDrafter struct{}

var _ Drafter = TemplateDrafter{}

// DraftOutreach builds a short message around the person's deterministic outreach idea
func (TemplateDrafter) DraftOutreach(_ context.Context, req OutreachRequest) (*OutreachDraft, error) {
	idea := relationship.OutreachIdea(req.PersonID, req.Relationship)
	return &OutreachDraft{
		Message: templateMessage(req),
		Idea:    idea,
		Source:  SourceTemplate,
	}, nil
}

func templateMessage(req OutreachRequest) string {
	name := firstName(req.PersonName)
	switch {
	case req.DaysSinceLastContact >= relationship.NoContactDays:
		return fmt.Sprintf("Hi %s! It's been on my mind to get in touch. How have you been?", name)
	case req.DaysSinceLastContact > 30:
		return fmt.Sprintf("Hi %s, it's been way too long! How are things with you?", name)
	default:
		return fmt.Sprintf("Hey %s, thinking of you. How's your week going?", name)
	}
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}
