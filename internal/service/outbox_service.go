package service

import (
	"context"
	"fmt"

	"github.com/haugen-io/outbind/internal/queue"
	"github.com/haugen-io/outbind/internal/repository"
	"go.uber.org/zap"
)

// OutboxService drains staged queue messages to the sink.
// Delivery is at-least-once: a row is marked sent only after the queue
// accepted the message, so a crash between enqueue and mark produces a
// duplicate, never a loss.
type OutboxService struct {
	outboxRepo *repository.OutboxRepository
	sink       queue.Sink
	batchSize  int
	logger     *zap.Logger
}

// NewOutboxService creates a new OutboxService instance
func NewOutboxService(
	outboxRepo *repository.OutboxRepository,
	sink queue.Sink,
	batchSize int,
	logger *zap.Logger,
) *OutboxService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxService{
		outboxRepo: outboxRepo,
		sink:       sink,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// DispatchPending sends unsent outbox rows to the queue, oldest first,
// and returns the number delivered. Stops at the first enqueue failure
// to preserve ordering.
func (s *OutboxService) DispatchPending(ctx context.Context) (int, error) {
	messages, err := s.outboxRepo.ListUnsent(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unsent messages: %w", err)
	}

	dispatched := 0
	for _, msg := range messages {
		if err := s.sink.Enqueue(ctx, msg.Payload); err != nil {
			return dispatched, fmt.Errorf("failed to enqueue message %s: %w", msg.ID, err)
		}
		if err := s.outboxRepo.MarkSent(ctx, msg.ID); err != nil {
			// The message is on the queue but still flagged unsent; the
			// sweep will re-send it. At-least-once, not exactly-once.
			return dispatched, fmt.Errorf("failed to mark message %s sent: %w", msg.ID, err)
		}
		dispatched++
	}

	if dispatched > 0 {
		s.logger.Debug("outbox dispatched",
			zap.Int("count", dispatched),
		)
	}

	return dispatched, nil
}

// PendingCount returns the number of unsent outbox rows
func (s *OutboxService) PendingCount(ctx context.Context) (int64, error) {
	return s.outboxRepo.CountUnsent(ctx)
}
