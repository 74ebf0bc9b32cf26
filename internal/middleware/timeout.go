package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds handler execution, including outreach drafts from the model provider
const DefaultRequestTimeout = 30 * time.Second

// timeoutBody is served by http.TimeoutHandler, which cannot set headers
const timeoutBody = `{"success":false,"error":"Service Unavailable","message":"Request timed out"}`

// Timeout cancels the request context after timeout and answers 503 if the handler has not responded
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
