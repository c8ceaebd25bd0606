package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/repository"
	"github.com/haugen-io/outbind/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTodoService(t *testing.T) (*service.TodoService, *repository.TodoRepository) {
	db := setupServiceTestDB(t)
	repo := repository.NewTodoRepository(db)
	return service.NewTodoService(repo, zap.NewNop()), repo
}

func TestTodoService_Create(t *testing.T) {
	svc, _ := newTodoService(t)

	order := 1
	dto, err := svc.Create(context.Background(), &domain.CreateToDoRequest{
		Title: "write report",
		Order: &order,
		URL:   "https://example.com/report",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, dto.ID)
	assert.Equal(t, "write report", dto.Title)
	require.NotNil(t, dto.Order)
	assert.Equal(t, 1, *dto.Order)
	assert.False(t, dto.Completed)
}

func TestTodoService_GetByID(t *testing.T) {
	svc, _ := newTodoService(t)

	created, err := svc.Create(context.Background(), &domain.CreateToDoRequest{Title: "task"})
	require.NoError(t, err)

	t.Run("existing", func(t *testing.T) {
		dto, err := svc.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, dto.ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, service.ErrTodoNotFound)
	})
}

func TestTodoService_List(t *testing.T) {
	svc, _ := newTodoService(t)

	for _, title := range []string{"a", "b", "c"} {
		_, err := svc.Create(context.Background(), &domain.CreateToDoRequest{Title: title})
		require.NoError(t, err)
	}

	result, err := svc.List(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Equal(t, 2, result.PageSize)
	assert.Equal(t, 2, result.TotalPages)

	dtos, ok := result.Data.([]domain.ToDoDTO)
	require.True(t, ok)
	assert.Len(t, dtos, 2)
}

func TestTodoService_Update(t *testing.T) {
	svc, _ := newTodoService(t)

	created, err := svc.Create(context.Background(), &domain.CreateToDoRequest{Title: "old"})
	require.NoError(t, err)

	t.Run("partial update", func(t *testing.T) {
		completed := true
		dto, err := svc.Update(context.Background(), created.ID, &domain.UpdateToDoRequest{
			Completed: &completed,
		})
		require.NoError(t, err)
		assert.Equal(t, "old", dto.Title, "unset fields are untouched")
		assert.True(t, dto.Completed)
	})

	t.Run("title update", func(t *testing.T) {
		title := "new"
		dto, err := svc.Update(context.Background(), created.ID, &domain.UpdateToDoRequest{
			Title: &title,
		})
		require.NoError(t, err)
		assert.Equal(t, "new", dto.Title)
		assert.True(t, dto.Completed, "previous update survives")
	})

	t.Run("missing item", func(t *testing.T) {
		title := "x"
		_, err := svc.Update(context.Background(), uuid.New(), &domain.UpdateToDoRequest{Title: &title})
		assert.ErrorIs(t, err, service.ErrTodoNotFound)
	})
}

func TestTodoService_Delete(t *testing.T) {
	svc, _ := newTodoService(t)

	created, err := svc.Create(context.Background(), &domain.CreateToDoRequest{Title: "gone"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, service.ErrTodoNotFound)

	// Idempotent
	assert.NoError(t, svc.Delete(context.Background(), created.ID))
}
