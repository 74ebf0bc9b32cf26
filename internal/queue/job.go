package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeAnalyticsRefresh recomputes closeness suggestions for a user and notifies on new high-confidence ones
	JobTypeAnalyticsRefresh JobType = "analytics_refresh"
	// JobTypeGenerateReminders creates overdue-contact reminders for a user
	JobTypeGenerateReminders JobType = "generate_reminders"
)

const defaultMaxRetries = 3

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	UserID     uuid.UUID      `json:"user_id"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a job for immediate processing
func NewJob(jobType JobType, userID uuid.UUID, now time.Time) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		Metadata:   make(map[string]any),
		CreatedAt:  now,
		MaxRetries: defaultMaxRetries,
	}
}

// NewDebouncedJob creates a job that waits delay before running and expires ttl after that
func NewDebouncedJob(jobType JobType, userID uuid.UUID, now time.Time, delay, ttl time.Duration) *Job {
	job := NewJob(jobType, userID, now)
	notBefore := now.Add(delay)
	job.NotBefore = &notBefore
	if ttl > 0 {
		notAfter := notBefore.Add(ttl)
		job.NotAfter = &notAfter
	}
	return job
}

// ShouldProcess checks if the job is inside its processing window at now
func (j *Job) ShouldProcess(now time.Time) bool {
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	return !j.IsExpired(now)
}

// IsExpired checks if the job's window closed before now
func (j *Job) IsExpired(now time.Time) bool {
	if j.NotAfter == nil {
		return false
	}
	return now.After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
