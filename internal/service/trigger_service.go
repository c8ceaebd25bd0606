package service

import (
	"context"
	"fmt"

	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/mapper"
	"github.com/haugen-io/outbind/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Response texts are fixed; existing callers and scripts match on them
// verbatim, so they must not be reworded.
const (
	greetingFormat      = "Hello, %s. This HTTP triggered function executed successfully."
	greetingSavedFormat = "Hello, %s. This HTTP triggered function executed successfully and was saved to SQL."

	// MissingNameHint is returned by the queue trigger when no name is given
	MissingNameHint = "This HTTP triggered function executed successfully. Pass a name in the query string or in the request body for a personalized response."
	// MissingNameError is returned by the SQL trigger when no name is given
	MissingNameError = "Please pass a name in the query string or in the request body."
)

// TriggerService implements the two HTTP triggers: one backed by the
// queue output binding, one by the SQL output binding. Queue messages
// are staged in the outbox inside the same transaction as any row
// insert, then dispatched immediately after commit; the cron sweep picks
// up anything a crash left behind.
type TriggerService struct {
	todoRepo   *repository.TodoRepository
	outboxRepo *repository.OutboxRepository
	outbox     *OutboxService
	queueName  string
	logger     *zap.Logger
	db         *gorm.DB
}

// NewTriggerService creates a new TriggerService instance
func NewTriggerService(
	todoRepo *repository.TodoRepository,
	outboxRepo *repository.OutboxRepository,
	outbox *OutboxService,
	queueName string,
	logger *zap.Logger,
	db *gorm.DB,
) *TriggerService {
	return &TriggerService{
		todoRepo:   todoRepo,
		outboxRepo: outboxRepo,
		outbox:     outbox,
		queueName:  queueName,
		logger:     logger,
		db:         db,
	}
}

// Greet handles the queue-binding trigger: the name is written to the
// queue and the greeting returned.
func (s *TriggerService) Greet(ctx context.Context, name string) (string, error) {
	msg := &domain.OutboxMessage{
		QueueName: s.queueName,
		Payload:   name,
	}
	if err := s.outboxRepo.Append(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to stage queue message: %w", err)
	}

	s.logger.Info("queue trigger processed",
		zap.String("name", name),
		zap.String("queue", s.queueName),
	)

	s.dispatchStaged(ctx)

	return fmt.Sprintf(greetingFormat, name), nil
}

// GreetAndSave handles the SQL-binding trigger: one ToDo row is inserted
// with the name as title, the queue message is staged in the same
// transaction, and the greeting returned.
func (s *TriggerService) GreetAndSave(ctx context.Context, name string) (*domain.ToDoDTO, string, error) {
	item := &domain.ToDoItem{
		Title:     name,
		Completed: false,
		URL:       "",
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.todoRepo.WithTx(tx).Create(ctx, item); err != nil {
			return fmt.Errorf("failed to insert todo row: %w", err)
		}
		msg := &domain.OutboxMessage{
			QueueName: s.queueName,
			Payload:   name,
		}
		if err := s.outboxRepo.WithTx(tx).Append(ctx, msg); err != nil {
			return fmt.Errorf("failed to stage queue message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("sql trigger processed",
		zap.String("name", name),
		zap.String("todo_id", item.ID.String()),
	)

	s.dispatchStaged(ctx)

	dto := mapper.ToToDoDTO(item)
	return &dto, fmt.Sprintf(greetingSavedFormat, name), nil
}

// dispatchStaged pushes committed outbox rows to the queue right away so
// the happy path does not wait for the sweep interval. Failures are only
// logged; the rows stay unsent and the sweep retries them.
func (s *TriggerService) dispatchStaged(ctx context.Context) {
	if s.outbox == nil {
		return
	}
	if _, err := s.outbox.DispatchPending(ctx); err != nil {
		s.logger.Warn("immediate outbox dispatch failed, sweep will retry",
			zap.Error(err),
		)
	}
}
