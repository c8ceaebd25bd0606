package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haugen-io/outbind/internal/domain"
	"github.com/haugen-io/outbind/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_Append(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOutboxRepository(db)

	msg := &domain.OutboxMessage{
		QueueName: "outqueue",
		Payload:   "Azure",
	}

	err := repo.Append(context.Background(), msg)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero(), "CreatedAt is assigned on append")
	assert.False(t, msg.Sent)
}

func TestOutboxRepository_ListUnsent(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOutboxRepository(db)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, payload := range []string{"first", "second", "third"} {
		msg := &domain.OutboxMessage{
			QueueName: "outqueue",
			Payload:   payload,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Append(context.Background(), msg))
	}

	t.Run("oldest first", func(t *testing.T) {
		messages, err := repo.ListUnsent(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, messages, 3)
		assert.Equal(t, "first", messages[0].Payload)
		assert.Equal(t, "third", messages[2].Payload)
	})

	t.Run("limit applies", func(t *testing.T) {
		messages, err := repo.ListUnsent(context.Background(), 2)
		require.NoError(t, err)
		assert.Len(t, messages, 2)
	})
}

func TestOutboxRepository_MarkSent(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOutboxRepository(db)

	msg := &domain.OutboxMessage{QueueName: "outqueue", Payload: "hello"}
	require.NoError(t, repo.Append(context.Background(), msg))

	require.NoError(t, repo.MarkSent(context.Background(), msg.ID))

	messages, err := repo.ListUnsent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, messages)

	count, err := repo.CountUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestOutboxRepository_CountUnsent(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewOutboxRepository(db)

	for _, payload := range []string{"a", "b"} {
		require.NoError(t, repo.Append(context.Background(), &domain.OutboxMessage{
			QueueName: "outqueue",
			Payload:   payload,
		}))
	}

	count, err := repo.CountUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
