package middleware

import (
	"context"

	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/request"
)

// SetUserInContext sets user in context. Exported for handler tests that bypass Auth.
func SetUserInContext(ctx context.Context, user *models.User) context.Context {
	return request.WithUser(ctx, user)
}
