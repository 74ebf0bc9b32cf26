package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/benvon/smart-connections/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	custom := map[string]validator.Func{
		"interaction_type":      validateInteractionType,
		"platform_type":         validatePlatformType,
		"notification_type":     validateNotificationType,
		"notification_priority": validateNotificationPriority,
	}
	for tag, fn := range custom {
		if err := Validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

func validateInteractionType(fl validator.FieldLevel) bool {
	return ValidateInteractionType(fl.Field().String()) == nil
}

func validatePlatformType(fl validator.FieldLevel) bool {
	return ValidatePlatformType(fl.Field().String()) == nil
}

func validateNotificationType(fl validator.FieldLevel) bool {
	return ValidateNotificationType(fl.Field().String()) == nil
}

func validateNotificationPriority(fl validator.FieldLevel) bool {
	return ValidateNotificationPriority(fl.Field().String()) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// SanitizeOptionalText sanitizes an optional field. Blank values become nil.
func SanitizeOptionalText(text *string) *string {
	if text == nil {
		return nil
	}
	s := SanitizeText(*text)
	if s == "" {
		return nil
	}
	return &s
}

// ValidateInteractionType validates an InteractionType string value
func ValidateInteractionType(value string) error {
	switch models.InteractionType(value) {
	case models.InteractionCall, models.InteractionText, models.InteractionEmail,
		models.InteractionInPerson, models.InteractionSocialMedia, models.InteractionVideoCall:
		return nil
	default:
		return fmt.Errorf("invalid interaction type: %s", value)
	}
}

// ValidatePlatformType validates a PlatformType string value
func ValidatePlatformType(value string) error {
	switch models.PlatformType(value) {
	case models.PlatformWhatsApp, models.PlatformInstagram, models.PlatformFacebook,
		models.PlatformTwitter, models.PlatformLinkedIn, models.PlatformPhone,
		models.PlatformEmail, models.PlatformInPerson, models.PlatformCustom:
		return nil
	default:
		return fmt.Errorf("invalid platform: %s", value)
	}
}

// ValidateNotificationType validates a NotificationType string value
func ValidateNotificationType(value string) error {
	switch models.NotificationType(value) {
	case models.NotificationReminder, models.NotificationActivity, models.NotificationMilestone, models.NotificationSystem:
		return nil
	default:
		return fmt.Errorf("invalid notification type: %s (must be 'reminder', 'activity', 'milestone', or 'system')", value)
	}
}

// ValidateNotificationPriority validates a NotificationPriority string value
func ValidateNotificationPriority(value string) error {
	switch models.NotificationPriority(value) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return nil
	default:
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', or 'high')", value)
	}
}

// ValidateCloseness checks that a closeness level is within the circle range
func ValidateCloseness(c int) error {
	if c < models.MinCloseness || c > models.MaxCloseness {
		return fmt.Errorf("closeness must be between %d and %d, got %d", models.MinCloseness, models.MaxCloseness, c)
	}
	return nil
}
