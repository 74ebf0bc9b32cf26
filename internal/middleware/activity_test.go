package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/models"
)

type recordingActivity struct {
	calls []uuid.UUID
	err   error
}

func (r *recordingActivity) UpdateLastInteraction(_ context.Context, userID uuid.UUID) error {
	r.calls = append(r.calls, userID)
	return r.err
}

func TestActivityTracking(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}

	tests := []struct {
		name      string
		user      *models.User
		err       error
		wantCalls int
	}{
		{name: "authenticated", user: user, wantCalls: 1},
		{name: "anonymous", wantCalls: 0},
		{name: "recorder failure does not fail request", user: user, err: errors.New("db down"), wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := &recordingActivity{err: tt.err}
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/people", nil)
			if tt.user != nil {
				req = req.WithContext(SetUserInContext(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			ActivityTracking(recorder, zap.NewNop())(next).ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("status = %d, want 204", w.Code)
			}
			if len(recorder.calls) != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", len(recorder.calls), tt.wantCalls)
			}
			if tt.wantCalls == 1 && recorder.calls[0] != user.ID {
				t.Errorf("recorded %s, want %s", recorder.calls[0], user.ID)
			}
		})
	}
}
