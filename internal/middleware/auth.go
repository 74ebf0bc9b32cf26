package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/benvon/smart-connections/internal/logger"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/request"
)

// TokenAuthenticator verifies a bearer token and returns its claims
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.JWTClaims, error)
}

// UserResolver maps verified claims to a local user, creating it on first login
type UserResolver interface {
	ResolveFromClaims(ctx context.Context, claims *models.JWTClaims) (*models.User, error)
}

// Auth creates authentication middleware that validates bearer tokens and attaches the user to the context
func Auth(authenticator TokenAuthenticator, users UserResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Missing Authorization header", logger)
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
				writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid Authorization header format", logger)
				return
			}

			ctx := r.Context()
			claims, err := authenticator.Authenticate(ctx, strings.TrimSpace(token))
			if err != nil {
				logger.Info("token_verification_failed",
					zap.String("error", logpkg.SanitizeError(err)),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				)
				writeError(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", logger)
				return
			}

			user, err := users.ResolveFromClaims(ctx, claims)
			if err != nil {
				logger.Error("failed_to_resolve_user",
					zap.String("subject", logpkg.SanitizeUserID(claims.Sub)),
					zap.Error(err),
				)
				writeError(w, r, http.StatusInternalServerError, "Internal Server Error", "Failed to load user", logger)
				return
			}

			ctx = request.WithClaims(request.WithUser(ctx, user), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
