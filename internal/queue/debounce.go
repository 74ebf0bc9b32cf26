package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const debounceKeyPrefix = "jobs:debounce:"

// Debouncer drops repeat enqueues of the same job type for a user while one is already pending.
// A burst of edits yields one delayed job that sees the final state.
type Debouncer struct {
	next   Enqueuer
	client redis.UniversalClient
	window time.Duration
}

var _ Enqueuer = (*Debouncer)(nil)

// NewDebouncer wraps next. A nil client disables debouncing.
func NewDebouncer(next Enqueuer, client redis.UniversalClient, window time.Duration) *Debouncer {
	return &Debouncer{next: next, client: client, window: window}
}

func debounceKey(job *Job) string {
	return debounceKeyPrefix + string(job.Type) + ":" + job.UserID.String()
}

// Enqueue forwards the job unless an identical pending job was enqueued within the window
func (d *Debouncer) Enqueue(ctx context.Context, job *Job) error {
	if d.client == nil || d.window <= 0 {
		return d.next.Enqueue(ctx, job)
	}

	key := debounceKey(job)
	acquired, err := d.client.SetNX(ctx, key, job.ID.String(), d.window).Result()
	if err != nil {
		// Redis trouble must not stop data refreshes.
		return d.next.Enqueue(ctx, job)
	}
	if !acquired {
		return nil
	}

	if err := d.next.Enqueue(ctx, job); err != nil {
		_ = d.client.Del(ctx, key).Err()
		return fmt.Errorf("failed to enqueue debounced job: %w", err)
	}
	return nil
}
