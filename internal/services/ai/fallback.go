package ai

import (
	"context"

	"go.uber.org/zap"
)

// FallbackDrafter tries a model-backed drafter and falls back to templates on any failure
type FallbackDrafter struct {
	primary  Drafter
	fallback Drafter
	logger   *zap.Logger
}

var _ Drafter = (*FallbackDrafter)(nil)

// NewFallbackDrafter wraps primary. A nil primary always uses templates.
func NewFallbackDrafter(primary Drafter, logger *zap.Logger) *FallbackDrafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackDrafter{primary: primary, fallback: TemplateDrafter{}, logger: logger}
}

// DraftOutreach never fails because of the model provider
func (d *FallbackDrafter) DraftOutreach(ctx context.Context, req OutreachRequest) (*OutreachDraft, error) {
	if d.primary != nil {
		draft, err := d.primary.DraftOutreach(ctx, req)
		if err == nil {
			return draft, nil
		}
		d.logger.Warn("outreach_draft_fallback",
			zap.String("person_id", req.PersonID.String()),
			zap.Bool("rate_limited", IsRateLimitError(err)),
			zap.Bool("quota_exceeded", IsQuotaError(err)),
			zap.String("error", SanitizeResponse(err.Error(), false)),
		)
	}
	return d.fallback.DraftOutreach(ctx, req)
}
