package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/queue"
)

// refreshJobTTL drops refresh jobs the worker could not reach in time; a later edit schedules a new one.
const refreshJobTTL = time.Hour

// AnalyticsRefresher schedules a background recomputation after a user's data changes
type AnalyticsRefresher interface {
	ScheduleRefresh(ctx context.Context, userID uuid.UUID)
}

// QueueRefresher enqueues delayed analytics_refresh jobs. Enqueue failures are logged, never returned:
// the write that triggered the refresh already succeeded.
type QueueRefresher struct {
	queue  queue.Enqueuer
	delay  time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewQueueRefresher creates a refresher. A nil queue disables refreshes.
func NewQueueRefresher(q queue.Enqueuer, delay time.Duration, logger *zap.Logger) *QueueRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueRefresher{queue: q, delay: delay, logger: logger, now: time.Now}
}

// ScheduleRefresh enqueues a debounced analytics_refresh job for userID
func (q *QueueRefresher) ScheduleRefresh(ctx context.Context, userID uuid.UUID) {
	if q == nil || q.queue == nil {
		return
	}

	job := queue.NewDebouncedJob(queue.JobTypeAnalyticsRefresh, userID, q.now(), q.delay, refreshJobTTL)
	if err := q.queue.Enqueue(ctx, job); err != nil {
		q.logger.Error("failed_to_enqueue_analytics_refresh",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return
	}
	q.logger.Debug("enqueued_analytics_refresh",
		zap.String("user_id", userID.String()),
		zap.Duration("debounce_delay", q.delay),
	)
}
