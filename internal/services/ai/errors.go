package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrRateLimited indicates the API rate limit was exceeded
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded indicates the API quota was exceeded
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// APIError represents an error from the AI provider API
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool // quota errors are permanent, rate limits are not
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// Unwrap maps the API error onto ErrRateLimited or ErrQuotaExceeded
func (e *APIError) Unwrap() error {
	switch {
	case e.IsPermanent:
		return ErrQuotaExceeded
	case e.StatusCode == http429:
		return ErrRateLimited
	default:
		return nil
	}
}

const http429 = 429

// IsRateLimitError checks if an error is a transient rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http429 && !apiErr.IsPermanent
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "billing")
}

// ExtractAPIError converts a 429 from the SDK into an APIError, or returns nil
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var sdkErr *openai.Error
	if errors.As(err, &sdkErr) && sdkErr.StatusCode == http429 {
		return newRateLimitError(sdkErr.Message, sdkErr.Type, sdkErr.Code)
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "429") {
		return nil
	}

	var details struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	}
	if start := strings.Index(errStr, "{"); start != -1 {
		if end := strings.LastIndex(errStr, "}"); end > start {
			_ = json.Unmarshal([]byte(errStr[start:end+1]), &details)
		}
	}
	if details.Message == "" {
		details.Message = errStr
	}
	if details.Type == "" {
		details.Type = "rate_limit_error"
	}
	return newRateLimitError(details.Message, details.Type, details.Code)
}

func newRateLimitError(message, errType, code string) *APIError {
	apiErr := &APIError{
		StatusCode: http429,
		Message:    message,
		Type:       errType,
		Code:       code,
	}
	retryAfter := time.Minute
	if code == "insufficient_quota" {
		apiErr.IsPermanent = true
		retryAfter = time.Hour
	}
	apiErr.RetryAfter = &retryAfter
	return apiErr
}
