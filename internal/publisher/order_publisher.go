package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultTopic = "storefront-orders"

// MessageWriter is implemented by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPublisher carries host outbound payloads to the conversation pipeline.
type OrderPublisher struct {
	timeout time.Duration
	writer  MessageWriter
	logger  *zap.Logger
}

func NewWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewOrderPublisher(writer MessageWriter, logger *zap.Logger) *OrderPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPublisher{timeout: 5 * time.Second, writer: writer, logger: logger}
}

// Publish writes one payload keyed by session, so messages of a session stay ordered.
func (p *OrderPublisher) Publish(ctx context.Context, sessionID string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(sessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(domain.ActionCheckoutOrder)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish order",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return fmt.Errorf("failed to publish order: %w", err)
	}
	p.logger.Info("order published", zap.String("session_id", sessionID))
	return nil
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}
