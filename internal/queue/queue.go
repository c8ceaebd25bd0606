// Package queue implements the Storage Queue output binding: a sink the
// trigger endpoints write single text messages to.
package queue

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/haugen-io/outbind/internal/config"
	"go.uber.org/zap"
)

// Sink accepts a single text message per call, the contract of a
// Storage Queue output binding.
type Sink interface {
	Enqueue(ctx context.Context, message string) error
	HealthCheck(ctx context.Context) error
}

// NewSink creates a sink based on configuration.
// Azure mode writes to a Storage Queue; log mode only logs the message
// and is meant for local development without a storage account.
func NewSink(cfg *config.QueueConfig, logger *zap.Logger) (Sink, error) {
	switch cfg.Mode {
	case "azure":
		if cfg.ConnectionString == "" {
			return nil, fmt.Errorf("storage connection string required for azure queue mode")
		}
		return NewAzureQueueSink(cfg, logger)
	case "log":
		return NewLogSink(cfg.Name, logger), nil
	default:
		return nil, fmt.Errorf("unsupported queue mode: %s", cfg.Mode)
	}
}

// encodeMessage Base64-encodes the message text. The Functions host does
// this for Storage Queue output bindings, and Storage Explorer decodes
// it on display; keeping the encoding means existing consumers see the
// exact same payloads.
func encodeMessage(message string) string {
	return base64.StdEncoding.EncodeToString([]byte(message))
}

// LogSink logs messages instead of delivering them anywhere
type LogSink struct {
	queueName string
	logger    *zap.Logger
}

// NewLogSink creates a log-only sink
func NewLogSink(queueName string, logger *zap.Logger) *LogSink {
	return &LogSink{queueName: queueName, logger: logger}
}

// Enqueue logs the message
func (s *LogSink) Enqueue(ctx context.Context, message string) error {
	s.logger.Info("Queue message (log mode)",
		zap.String("queue", s.queueName),
		zap.String("message", message),
	)
	return nil
}

// HealthCheck always succeeds for the log sink
func (s *LogSink) HealthCheck(ctx context.Context) error {
	return nil
}
