package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/haugen-io/outbind/internal/domain"
	"gorm.io/gorm"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *OutboxRepository) WithTx(tx *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: tx}
}

func (r *OutboxRepository) Append(ctx context.Context, msg *domain.OutboxMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListUnsent returns the oldest unsent messages, capped at limit
func (r *OutboxRepository) ListUnsent(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	var messages []domain.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("Sent = ?", false).
		Order("CreatedAt ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.OutboxMessage{}).
		Where("Id = ?", id).
		Updates(map[string]interface{}{
			"Sent":   true,
			"SentAt": now,
		}).Error
}

func (r *OutboxRepository) CountUnsent(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.OutboxMessage{}).
		Where("Sent = ?", false).
		Count(&count).Error
	return count, err
}
