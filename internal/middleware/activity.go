package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/request"
)

// ActivityRecorder records API use for a user
type ActivityRecorder interface {
	UpdateLastInteraction(ctx context.Context, userID uuid.UUID) error
}

// ActivityTracking records the last API interaction of authenticated users.
// Recording resumes background reminder sweeps for users the scheduler paused.
func ActivityTracking(recorder ActivityRecorder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := request.UserFromContext(r); user != nil {
				if err := recorder.UpdateLastInteraction(r.Context(), user.ID); err != nil {
					// Tracking failures never fail the request
					logger.Warn("failed_to_update_user_activity",
						zap.String("user_id", user.ID.String()),
						zap.Error(err),
					)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
