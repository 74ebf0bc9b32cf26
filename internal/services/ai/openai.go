package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/relationship"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxDraftLength caps the message returned to clients
	MaxDraftLength = 600

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

const systemPrompt = "You help people stay in touch with friends and family. " +
	"Write one short, warm, casual check-in message the user could send as-is. " +
	"Do not invent shared memories or facts. Respond with valid JSON only: {\"message\": \"...\"}."

type chatCompletionsAPI interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAIDrafter drafts outreach messages with OpenAI's chat completions API
type OpenAIDrafter struct {
	completions chatCompletionsAPI
	model       string
	logger      *zap.Logger
	debugMode   bool
}

var _ Drafter = (*OpenAIDrafter)(nil)

// NewOpenAIDrafter creates a drafter. Empty baseURL and model use the defaults.
func NewOpenAIDrafter(apiKey, baseURL, model string, logger *zap.Logger, debugMode bool, opts ...option.RequestOption) *OpenAIDrafter {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	}, opts...)

	client := openai.NewClient(clientOpts...)
	return &OpenAIDrafter{
		completions: &client.Chat.Completions,
		model:       model,
		logger:      logger,
		debugMode:   debugMode,
	}
}

// DraftOutreach asks the model for a check-in message
func (d *OpenAIDrafter) DraftOutreach(ctx context.Context, req OutreachRequest) (*OutreachDraft, error) {
	idea := relationship.OutreachIdea(req.PersonID, req.Relationship)
	prompt := buildOutreachPrompt(req, idea)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(d.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	userID := ExtractUserID(ctx)
	requestID := ExtractRequestID(ctx)
	if d.debugMode {
		d.logger.Debug("llm_api_request",
			zap.String("operation", "draft_outreach"),
			zap.String("model", d.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("user_id", userID),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := d.completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		if d.debugMode {
			d.logger.Debug("llm_api_error",
				zap.String("operation", "draft_outreach"),
				zap.String("model", d.model),
				zap.Error(err),
				zap.String("user_id", userID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return nil, fmt.Errorf("failed to draft outreach: %w", apiErr)
		}
		return nil, fmt.Errorf("failed to draft outreach: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if d.debugMode {
		d.logger.Debug("llm_api_response",
			zap.String("operation", "draft_outreach"),
			zap.String("model", d.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("user_id", userID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	message, err := parseDraftResponse(content)
	if err != nil {
		return nil, err
	}

	return &OutreachDraft{
		Message: message,
		Idea:    idea,
		Source:  SourceOpenAI,
		Model:   d.model,
	}, nil
}

func buildOutreachPrompt(req OutreachRequest, idea string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Draft a message to %s", firstName(req.PersonName))
	if rel := strings.TrimSpace(req.Relationship); rel != "" {
		fmt.Fprintf(&b, " (relationship: %s)", rel)
	}
	b.WriteString(".\n")
	fmt.Fprintf(&b, "Last contact: %s.\n", relationship.FormatDaysSince(req.DaysSinceLastContact))
	if req.LastInteractionType != nil {
		fmt.Fprintf(&b, "Last interaction was a %s.\n", strings.ReplaceAll(string(*req.LastInteractionType), "_", " "))
	}
	if req.PreferredPlatform != nil {
		fmt.Fprintf(&b, "It will be sent via %s, so match that tone and length.\n", strings.ReplaceAll(string(*req.PreferredPlatform), "_", " "))
	}
	fmt.Fprintf(&b, "Idea to build on: %s.", idea)
	return b.String()
}

func parseDraftResponse(content string) (string, error) {
	var draft struct {
		Message string `json:"message"`
	}
	raw := content
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		start := bytes.IndexByte([]byte(raw), '{')
		end := bytes.LastIndexByte([]byte(raw), '}')
		if start == -1 || end <= start {
			return "", fmt.Errorf("failed to parse draft response: %w", err)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &draft); err != nil {
			return "", fmt.Errorf("failed to parse draft response: %w", err)
		}
	}

	message := strings.TrimSpace(draft.Message)
	if message == "" {
		return "", errors.New("draft response has no message")
	}
	return TruncateString(message, MaxDraftLength), nil
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry, logger *zap.Logger, debugMode bool) {
	registry.Register("openai", func(config map[string]string) (Drafter, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}
		return NewOpenAIDrafter(apiKey, config["base_url"], config["model"], logger, debugMode), nil
	})
}
