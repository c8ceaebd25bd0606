package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/haugen-io/outbind/internal/domain"
	"gorm.io/gorm"
)

type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *TodoRepository) WithTx(tx *gorm.DB) *TodoRepository {
	return &TodoRepository{db: tx}
}

func (r *TodoRepository) Create(ctx context.Context, item *domain.ToDoItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *TodoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ToDoItem, error) {
	var item domain.ToDoItem
	err := r.db.WithContext(ctx).First(&item, "Id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *TodoRepository) List(ctx context.Context, page, pageSize int, completed *bool) ([]domain.ToDoItem, int64, error) {
	var items []domain.ToDoItem
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ToDoItem{})

	if completed != nil {
		query = query.Where("completed = ?", *completed)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("title ASC").Find(&items).Error

	return items, total, err
}

func (r *TodoRepository) Update(ctx context.Context, item *domain.ToDoItem) error {
	// Save writes all columns so completed=false round-trips
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *TodoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ToDoItem{}, "Id = ?", id).Error
}
