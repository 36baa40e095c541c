package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes ledger events to the primary topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, key, eventType string, value interface{}) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
