package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OutboxSweepJobName is the scheduler name of the outbox sweep job
const OutboxSweepJobName = "outbox_sweep"

// OutboxDispatcher re-sends staged queue messages. The interface keeps
// the job from importing the service package directly.
type OutboxDispatcher interface {
	DispatchPending(ctx context.Context) (int, error)
	PendingCount(ctx context.Context) (int64, error)
}

// OutboxSweepJob periodically drains unsent outbox rows to the queue.
// The happy path dispatches messages right after a request commits; this
// job only picks up what a crash or a queue outage left behind.
type OutboxSweepJob struct {
	dispatcher OutboxDispatcher
	logger     *zap.Logger
	timeout    time.Duration
}

// NewOutboxSweepJob creates the sweep job
func NewOutboxSweepJob(dispatcher OutboxDispatcher, logger *zap.Logger, timeout time.Duration) *OutboxSweepJob {
	return &OutboxSweepJob{
		dispatcher: dispatcher,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run executes one sweep. Called by the scheduler.
func (j *OutboxSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	pending, err := j.dispatcher.PendingCount(ctx)
	if err != nil {
		j.logger.Error("outbox sweep failed to count pending messages", zap.Error(err))
		return
	}
	if pending == 0 {
		return
	}

	start := time.Now()
	dispatched, err := j.dispatcher.DispatchPending(ctx)
	if err != nil {
		j.logger.Warn("outbox sweep stopped early",
			zap.Int("dispatched", dispatched),
			zap.Int64("pending", pending),
			zap.Error(err),
		)
		return
	}

	j.logger.Info("outbox sweep completed",
		zap.Int("dispatched", dispatched),
		zap.Duration("duration", time.Since(start)),
	)
}

// RegisterOutboxSweepJob wires the sweep job into the scheduler
func RegisterOutboxSweepJob(
	scheduler *Scheduler,
	dispatcher OutboxDispatcher,
	logger *zap.Logger,
	cronExpr string,
	timeout time.Duration,
) error {
	job := NewOutboxSweepJob(dispatcher, logger, timeout)
	return scheduler.AddJob(OutboxSweepJobName, cronExpr, job.Run)
}
