package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBus implements Bus against a Kafka cluster. One writer is shared by
// all publishes; each Subscribe call owns one reader joined to its consumer
// group.
type KafkaBus struct {
	brokers   []string
	clientID  string
	writer    *kafka.Writer
	onFailure FailureHook
	logger    *zap.Logger

	mu      sync.Mutex
	readers []*kafka.Reader
}

// KafkaOption configures a KafkaBus.
type KafkaOption func(*KafkaBus)

// WithFailureHook replaces the default log-and-drop handler failure policy.
func WithFailureHook(hook FailureHook) KafkaOption {
	return func(b *KafkaBus) { b.onFailure = hook }
}

// NewKafkaBus creates a bus client for the given brokers. The returned bus
// publishes immediately; subscriptions are started with Subscribe.
func NewKafkaBus(brokers []string, clientID string, logger *zap.Logger, opts ...KafkaOption) *KafkaBus {
	b := &KafkaBus{
		brokers:  brokers,
		clientID: clientID,
		logger:   logger,
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
	}
	b.onFailure = func(topic string, payload []byte, err error) {
		b.logger.Error("error processing message",
			zap.String("topic", topic), zap.Error(err))
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish serializes v as JSON and appends it to topic. Fails when the
// broker connection is down or the send is rejected; no retry is performed.
func (b *KafkaBus) Publish(ctx context.Context, topic string, v interface{}) error {
	if b.writer == nil {
		return ErrNotConnected
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for topic %s: %w", topic, err)
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}
	b.logger.Info("message sent", zap.String("topic", topic))
	return nil
}

// Subscribe joins the named consumer group, subscribes to topics, and
// dispatches messages sequentially to handler until ctx is cancelled.
// A handler error goes to the failure hook; the message stays consumed.
func (b *KafkaBus) Subscribe(ctx context.Context, group string, topics []string, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     group,
		GroupTopics: topics,
	})
	b.mu.Lock()
	b.readers = append(b.readers, reader)
	b.mu.Unlock()

	b.logger.Info("consumer subscribed",
		zap.String("group", group), zap.Strings("topics", topics))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}
		b.logger.Debug("received message",
			zap.String("topic", msg.Topic), zap.Int("partition", msg.Partition))
		if err := handler(ctx, msg.Topic, msg.Value); err != nil {
			b.onFailure(msg.Topic, msg.Value, err)
		}
	}
}

// Close shuts down the writer and all readers.
func (b *KafkaBus) Close() error {
	var firstErr error
	if b.writer != nil {
		if err := b.writer.Close(); err != nil {
			firstErr = err
		}
		b.writer = nil
	}
	b.mu.Lock()
	readers := b.readers
	b.readers = nil
	b.mu.Unlock()
	for _, r := range readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
