package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestNewJob(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	job := NewJob(JobTypeAnalyticsRefresh, userID, now)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeAnalyticsRefresh {
		t.Errorf("Expected job type to be %s, got %s", JobTypeAnalyticsRefresh, job.Type)
	}
	if job.UserID != userID {
		t.Errorf("Expected user ID to be %s, got %s", userID, job.UserID)
	}
	if !job.CreatedAt.Equal(now) {
		t.Errorf("Expected created at %v, got %v", now, job.CreatedAt)
	}
	if job.Metadata == nil {
		t.Error("Expected metadata to be initialized")
	}
	if job.RetryCount != 0 || job.MaxRetries != 3 {
		t.Errorf("Expected retries 0/3, got %d/%d", job.RetryCount, job.MaxRetries)
	}
	if job.NotBefore != nil || job.NotAfter != nil {
		t.Error("Expected immediate job without a window")
	}
}

func TestNewDebouncedJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	job := NewDebouncedJob(JobTypeAnalyticsRefresh, uuid.New(), now, 5*time.Second, time.Hour)

	if job.NotBefore == nil || !job.NotBefore.Equal(now.Add(5*time.Second)) {
		t.Errorf("NotBefore = %v, want now+5s", job.NotBefore)
	}
	if job.NotAfter == nil || !job.NotAfter.Equal(now.Add(5*time.Second+time.Hour)) {
		t.Errorf("NotAfter = %v, want now+5s+1h", job.NotAfter)
	}
	if job.ShouldProcess(now) {
		t.Error("debounced job should not process before its delay")
	}
	if !job.ShouldProcess(now.Add(6 * time.Second)) {
		t.Error("debounced job should process after its delay")
	}

	noTTL := NewDebouncedJob(JobTypeAnalyticsRefresh, uuid.New(), now, time.Second, 0)
	if noTTL.NotAfter != nil {
		t.Error("zero ttl should leave NotAfter unset")
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{name: "no time constraints", want: true},
		{name: "not before in past", notBefore: timePtr(now.Add(-time.Hour)), want: true},
		{name: "not before in future", notBefore: timePtr(now.Add(time.Hour)), want: false},
		{name: "not after in future", notAfter: timePtr(now.Add(time.Hour)), want: true},
		{name: "not after in past", notAfter: timePtr(now.Add(-time.Hour)), want: false},
		{name: "inside window", notBefore: timePtr(now.Add(-time.Hour)), notAfter: timePtr(now.Add(time.Hour)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeGenerateReminders, NotBefore: tt.notBefore, NotAfter: tt.notAfter}
			if got := job.ShouldProcess(now); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if (&Job{}).IsExpired(now) {
		t.Error("job without NotAfter should never expire")
	}
	if !(&Job{NotAfter: timePtr(now.Add(-time.Second))}).IsExpired(now) {
		t.Error("job past NotAfter should be expired")
	}
	if (&Job{NotAfter: timePtr(now.Add(time.Second))}).IsExpired(now) {
		t.Error("job before NotAfter should not be expired")
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()

	job := NewJob(JobTypeGenerateReminders, uuid.New(), time.Now())
	for i := 0; i < 3; i++ {
		if !job.CanRetry() {
			t.Fatalf("CanRetry() = false after %d retries", i)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("CanRetry() = true after max retries")
	}
}

func TestJob_JSONWireFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	job := NewDebouncedJob(JobTypeAnalyticsRefresh, uuid.New(), now, time.Second, time.Minute)

	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"id", "type", "user_id", "not_before", "not_after", "created_at", "retry_count", "max_retries"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("encoded job missing %q", key)
		}
	}
	if fields["type"] != "analytics_refresh" {
		t.Errorf("type = %v, want analytics_refresh", fields["type"])
	}
}
