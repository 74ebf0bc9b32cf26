package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/benvon/smart-connections/internal/models"
)

const (
	defaultOrigin     = "http://localhost:3000"
	defaultCORSMaxAge = 86400
)

// FallbackOrigins parses FRONTEND_URL (comma-separated) and always allows the local frontend
func FallbackOrigins(frontendURL string) []string {
	return models.SplitOrigins(defaultOrigin + "," + frontendURL)
}

func corsOptions(origins []string, allowCredentials bool, maxAge int) cors.Options {
	if len(origins) == 0 {
		origins = []string{defaultOrigin}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch,
			http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
}

// CORS creates static CORS middleware for the given origins
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.New(corsOptions(allowedOrigins, true, defaultCORSMaxAge)).Handler
}
