package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/mapper"
	"github.com/haugen-io/outbind/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrTodoNotFound is returned when a todo item does not exist
var ErrTodoNotFound = errors.New("todo item not found")

// TodoService handles business logic for the ToDo table
type TodoService struct {
	todoRepo *repository.TodoRepository
	logger   *zap.Logger
}

// NewTodoService creates a new TodoService instance
func NewTodoService(todoRepo *repository.TodoRepository, logger *zap.Logger) *TodoService {
	return &TodoService{
		todoRepo: todoRepo,
		logger:   logger,
	}
}

// Create inserts a new todo item
func (s *TodoService) Create(ctx context.Context, req *domain.CreateToDoRequest) (*domain.ToDoDTO, error) {
	item := &domain.ToDoItem{
		Title: req.Title,
		Order: req.Order,
		URL:   req.URL,
	}

	if err := s.todoRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create todo item: %w", err)
	}

	s.logger.Info("todo item created",
		zap.String("todo_id", item.ID.String()),
		zap.String("title", item.Title),
	)

	dto := mapper.ToToDoDTO(item)
	return &dto, nil
}

// GetByID returns one todo item
func (s *TodoService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ToDoDTO, error) {
	item, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo item: %w", err)
	}

	dto := mapper.ToToDoDTO(item)
	return &dto, nil
}

// List returns a page of todo items, optionally filtered by completion
func (s *TodoService) List(ctx context.Context, page, pageSize int, completed *bool) (*domain.PaginatedResponse, error) {
	items, total, err := s.todoRepo.List(ctx, page, pageSize, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to list todo items: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &domain.PaginatedResponse{
		Data:       mapper.ToToDoDTOs(items),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update applies a partial update to a todo item
func (s *TodoService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateToDoRequest) (*domain.ToDoDTO, error) {
	item, err := s.todoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo item: %w", err)
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Order != nil {
		item.Order = req.Order
	}
	if req.URL != nil {
		item.URL = *req.URL
	}
	if req.Completed != nil {
		item.Completed = *req.Completed
	}

	if err := s.todoRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update todo item: %w", err)
	}

	dto := mapper.ToToDoDTO(item)
	return &dto, nil
}

// Delete removes a todo item. Deleting an absent item is not an error.
func (s *TodoService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.todoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete todo item: %w", err)
	}
	return nil
}
