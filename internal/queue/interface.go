package queue

import (
	"context"
	"time"
)

// MessageInterface is a delivered job awaiting settlement. Workers depend on it rather than on Message.
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// Enqueuer publishes jobs. Handlers, the debouncer and the scheduler only publish.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *Job) error
}

// JobQueue is a broker-backed queue of analytics and reminder jobs
type JobQueue interface {
	Enqueuer

	// Consume streams decoded jobs. Each must be acked or nacked by the caller.
	// prefetchCount bounds the unacknowledged jobs held at once.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error
	HealthCheck(ctx context.Context) error
}

// DLQPurger drops dead-lettered jobs older than retention and returns the count
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
