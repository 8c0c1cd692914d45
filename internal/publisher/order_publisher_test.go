package publisher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type fakeWriter struct {
	messages []kafkaGo.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected a deadline")
	}
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := NewOrderPublisher(w, nil)

	require.NoError(t, p.Publish(context.Background(), "session-1", []byte(`{"action":"checkout_order"}`)))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "session-1", string(msg.Key))
	assert.JSONEq(t, `{"action":"checkout_order"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "checkout_order", string(msg.Headers[0].Value))
}

func TestPublish_WriterError(t *testing.T) {
	p := NewOrderPublisher(&fakeWriter{err: errors.New("leader not available")}, nil)

	err := p.Publish(context.Background(), "session-1", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish order")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewOrderPublisher(w, nil).Close())
	assert.True(t, w.closed)
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestPublish_Kafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka container test in short mode")
	}

	brokerAddr, cleanup := setupKafka(t)
	defer cleanup()
	createTopic(t, brokerAddr, DefaultTopic)
	time.Sleep(5 * time.Second)

	writer := NewWriter(DefaultTopic, brokerAddr)
	p := NewOrderPublisher(writer, nil)
	defer p.Close()

	require.NoError(t, p.Publish(context.Background(), "session-42", []byte(`{"action":"checkout_order","total_amount":"36.75"}`)))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    DefaultTopic,
		GroupID:  "storefront-test",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session-42", string(msg.Key))
	assert.JSONEq(t, `{"action":"checkout_order","total_amount":"36.75"}`, string(msg.Value))
}
