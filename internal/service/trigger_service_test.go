package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/repository"
	"github.com/haugen-io/outbind/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingSink captures enqueued messages and can be told to fail
type recordingSink struct {
	messages []string
	fail     bool
}

func (s *recordingSink) Enqueue(ctx context.Context, message string) error {
	if s.fail {
		return errors.New("queue unavailable")
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSink) HealthCheck(ctx context.Context) error {
	return nil
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ToDoItem{}, &domain.OutboxMessage{}))
	return db
}

func newTriggerService(t *testing.T, db *gorm.DB, sink *recordingSink) (*service.TriggerService, *repository.OutboxRepository) {
	log := zap.NewNop()
	todoRepo := repository.NewTodoRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	outbox := service.NewOutboxService(outboxRepo, sink, 100, log)
	return service.NewTriggerService(todoRepo, outboxRepo, outbox, "outqueue", log, db), outboxRepo
}

func TestTriggerService_Greet(t *testing.T) {
	db := setupServiceTestDB(t)
	sink := &recordingSink{}
	svc, outboxRepo := newTriggerService(t, db, sink)

	greeting, err := svc.Greet(context.Background(), "Azure")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Azure. This HTTP triggered function executed successfully.", greeting)

	// The message was dispatched immediately and nothing is left staged
	assert.Equal(t, []string{"Azure"}, sink.messages)
	count, err := outboxRepo.CountUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTriggerService_Greet_QueueDown(t *testing.T) {
	db := setupServiceTestDB(t)
	sink := &recordingSink{fail: true}
	svc, outboxRepo := newTriggerService(t, db, sink)

	// A queue outage must not fail the request; the message stays staged
	greeting, err := svc.Greet(context.Background(), "Azure")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Azure. This HTTP triggered function executed successfully.", greeting)

	count, err := outboxRepo.CountUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTriggerService_GreetAndSave(t *testing.T) {
	db := setupServiceTestDB(t)
	sink := &recordingSink{}
	svc, _ := newTriggerService(t, db, sink)

	dto, greeting, err := svc.GreetAndSave(context.Background(), "Azure")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Azure. This HTTP triggered function executed successfully and was saved to SQL.", greeting)

	// The row matches what the SQL output binding wrote
	require.NotNil(t, dto)
	assert.Equal(t, "Azure", dto.Title)
	assert.False(t, dto.Completed)
	assert.Empty(t, dto.URL)
	assert.Nil(t, dto.Order)

	// Row is persisted
	todoRepo := repository.NewTodoRepository(db)
	saved, err := todoRepo.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Azure", saved.Title)

	// Queue message went out alongside the row
	assert.Equal(t, []string{"Azure"}, sink.messages)
}

func TestTriggerService_GreetAndSave_QueueDown(t *testing.T) {
	db := setupServiceTestDB(t)
	sink := &recordingSink{fail: true}
	svc, outboxRepo := newTriggerService(t, db, sink)

	dto, _, err := svc.GreetAndSave(context.Background(), "Azure")
	require.NoError(t, err)

	// Row committed, message staged for the sweep
	todoRepo := repository.NewTodoRepository(db)
	_, err = todoRepo.GetByID(context.Background(), dto.ID)
	require.NoError(t, err)

	count, err := outboxRepo.CountUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Once the queue recovers, the staged message is delivered
	sink.fail = false
	outbox := service.NewOutboxService(outboxRepo, sink, 100, zap.NewNop())
	dispatched, err := outbox.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)
	assert.Equal(t, []string{"Azure"}, sink.messages)
}
