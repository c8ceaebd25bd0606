package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/haugen-io/outbind/internal/config"
	"go.uber.org/zap"
)

// AzureQueueSink delivers messages to an Azure Storage Queue
type AzureQueueSink struct {
	client    *azqueue.QueueClient
	queueName string
	logger    *zap.Logger
}

// NewAzureQueueSink creates a sink backed by an Azure Storage Queue.
// The connection string arrives via the AzureWebJobsStorage setting.
func NewAzureQueueSink(cfg *config.QueueConfig, logger *zap.Logger) (*AzureQueueSink, error) {
	service, err := azqueue.NewServiceClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue service client: %w", err)
	}

	client := service.NewQueueClient(cfg.Name)

	if cfg.CreateIfMissing {
		_, err = client.Create(context.Background(), nil)
		if err != nil && !isQueueAlreadyExists(err) {
			return nil, fmt.Errorf("failed to create queue: %w", err)
		}
	}

	logger.Info("Azure Storage Queue sink initialized",
		zap.String("queue", cfg.Name),
	)

	return &AzureQueueSink{
		client:    client,
		queueName: cfg.Name,
		logger:    logger,
	}, nil
}

// isQueueAlreadyExists reports whether err is the service telling us the
// queue is already there, which Create treats as success.
func isQueueAlreadyExists(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.ErrorCode == "QueueAlreadyExists"
}

// Enqueue delivers one Base64-encoded message to the queue
func (s *AzureQueueSink) Enqueue(ctx context.Context, message string) error {
	resp, err := s.client.EnqueueMessage(ctx, encodeMessage(message), nil)
	if err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}

	fields := []zap.Field{zap.String("queue", s.queueName)}
	if len(resp.Messages) > 0 && resp.Messages[0].MessageID != nil {
		fields = append(fields, zap.String("message_id", *resp.Messages[0].MessageID))
	}
	s.logger.Debug("Message enqueued", fields...)

	return nil
}

// HealthCheck verifies the queue is reachable
func (s *AzureQueueSink) HealthCheck(ctx context.Context) error {
	if _, err := s.client.GetProperties(ctx, nil); err != nil {
		return fmt.Errorf("queue unreachable: %w", err)
	}
	return nil
}
