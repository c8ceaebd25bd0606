package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/http/handler"
	"github.com/haugen-io/outbind/internal/repository"
	"github.com/haugen-io/outbind/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTodoRouter(t *testing.T) (*chi.Mux, *gorm.DB) {
	db := setupHandlerTestDB(t)
	h := handler.NewTodoHandler(service.NewTodoService(repository.NewTodoRepository(db), zap.NewNop()), zap.NewNop())

	r := chi.NewRouter()
	r.Route("/api/todos", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.GetByID)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r, db
}

func createTodo(t *testing.T, r *chi.Mux, body string) domain.ToDoDTO {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/todos/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var dto domain.ToDoDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	return dto
}

func TestTodoHandler_Create(t *testing.T) {
	r, _ := newTodoRouter(t)

	t.Run("creates todo", func(t *testing.T) {
		dto := createTodo(t, r, `{"title":"buy milk","order":1}`)
		assert.NotEqual(t, uuid.Nil, dto.ID)
		assert.Equal(t, "buy milk", dto.Title)
		require.NotNil(t, dto.Order)
		assert.Equal(t, 1, *dto.Order)
		assert.False(t, dto.Completed)
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/todos/", strings.NewReader(`{"order":2}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/todos/", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTodoHandler_GetByID(t *testing.T) {
	r, _ := newTodoRouter(t)
	created := createTodo(t, r, `{"title":"read book"}`)

	t.Run("returns existing todo", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todos/"+created.ID.String(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var dto domain.ToDoDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
		assert.Equal(t, created.ID, dto.ID)
		assert.Equal(t, "read book", dto.Title)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todos/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid uuid returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todos/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTodoHandler_Update(t *testing.T) {
	r, _ := newTodoRouter(t)
	created := createTodo(t, r, `{"title":"water plants"}`)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/todos/"+created.ID.String(), strings.NewReader(`{"completed":true}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var dto domain.ToDoDTO
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
		assert.True(t, dto.Completed)
		assert.Equal(t, "water plants", dto.Title)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/todos/"+uuid.NewString(), strings.NewReader(`{"completed":true}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestTodoHandler_Delete(t *testing.T) {
	r, _ := newTodoRouter(t)
	created := createTodo(t, r, `{"title":"take out trash"}`)

	req := httptest.NewRequest(http.MethodDelete, "/api/todos/"+created.ID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/todos/"+created.ID.String(), nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTodoHandler_List(t *testing.T) {
	r, _ := newTodoRouter(t)
	for i := 0; i < 3; i++ {
		createTodo(t, r, fmt.Sprintf(`{"title":"task %d"}`, i))
	}
	done := createTodo(t, r, `{"title":"done task"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/todos/"+done.ID.String(), strings.NewReader(`{"completed":true}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("lists all with pagination", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todos/?page=1&pageSize=2", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp domain.PaginatedResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(4), resp.Total)
		assert.Equal(t, 2, resp.TotalPages)
	})

	t.Run("filters by completed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/todos/?completed=true", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp domain.PaginatedResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(1), resp.Total)
	})
}
