package handler_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/http/handler"
	"github.com/haugen-io/outbind/internal/repository"
	"github.com/haugen-io/outbind/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type captureSink struct {
	messages []string
}

func (s *captureSink) Enqueue(ctx context.Context, message string) error {
	s.messages = append(s.messages, message)
	return nil
}

func (s *captureSink) HealthCheck(ctx context.Context) error {
	return nil
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.ToDoItem{}, &domain.OutboxMessage{}))
	return db
}

func newTriggerHandler(t *testing.T, db *gorm.DB, sink *captureSink) *handler.TriggerHandler {
	log := zap.NewNop()
	todoRepo := repository.NewTodoRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	outbox := service.NewOutboxService(outboxRepo, sink, 100, log)
	svc := service.NewTriggerService(todoRepo, outboxRepo, outbox, "outqueue", log, db)
	return handler.NewTriggerHandler(svc, log)
}

func body(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(b)
}

func TestTriggerHandler_Hello(t *testing.T) {
	db := setupHandlerTestDB(t)
	sink := &captureSink{}
	h := newTriggerHandler(t, db, sink)

	t.Run("name in query string", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/hello?name=Azure", nil)
		rec := httptest.NewRecorder()
		h.Hello(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Hello, Azure. This HTTP triggered function executed successfully.", body(t, rec))
		assert.Equal(t, []string{"Azure"}, sink.messages)
	})

	t.Run("name in JSON body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/hello", strings.NewReader(`{"name":"Bodil"}`))
		rec := httptest.NewRecorder()
		h.Hello(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Hello, Bodil. This HTTP triggered function executed successfully.", body(t, rec))
	})

	t.Run("query string wins over body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/hello?name=Query", strings.NewReader(`{"name":"Body"}`))
		rec := httptest.NewRecorder()
		h.Hello(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, body(t, rec), "Hello, Query.")
	})

	t.Run("missing name returns 200 with hint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
		rec := httptest.NewRecorder()
		h.Hello(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "This HTTP triggered function executed successfully. Pass a name in the query string or in the request body for a personalized response.", body(t, rec))
	})

	t.Run("malformed body treated as missing name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/hello", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()
		h.Hello(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, body(t, rec), "Pass a name in the query string")
	})
}

func TestTriggerHandler_HttpExample(t *testing.T) {
	db := setupHandlerTestDB(t)
	sink := &captureSink{}
	h := newTriggerHandler(t, db, sink)

	t.Run("name saves a todo row", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/HttpExample", strings.NewReader(`{"name":"Azure"}`))
		rec := httptest.NewRecorder()
		h.HttpExample(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Hello, Azure. This HTTP triggered function executed successfully and was saved to SQL.", body(t, rec))

		todoRepo := repository.NewTodoRepository(db)
		items, total, err := todoRepo.List(context.Background(), 1, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "Azure", items[0].Title)
		assert.False(t, items[0].Completed)
	})

	t.Run("missing name returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/HttpExample", nil)
		rec := httptest.NewRecorder()
		h.HttpExample(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Please pass a name in the query string or in the request body.", body(t, rec))
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/HttpExample", strings.NewReader(`not json at all`))
		rec := httptest.NewRecorder()
		h.HttpExample(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
