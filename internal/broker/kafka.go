package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// KafkaConfig configures the direct-Kafka backend used when no Dapr
// sidecar is present (local/dev mode). PublishTimeout matches spec §5's
// "broker publish ≤ 5s" deadline.
type KafkaConfig struct {
	Brokers        []string
	ConsumerGroup  string
	PublishTimeout time.Duration
	DialTimeout    time.Duration
}

// DefaultKafkaConfig returns sane defaults for local development.
func DefaultKafkaConfig(brokers []string, consumerGroup string) *KafkaConfig {
	return &KafkaConfig{
		Brokers:        brokers,
		ConsumerGroup:  consumerGroup,
		PublishTimeout: 5 * time.Second,
		DialTimeout:    2 * time.Second,
	}
}

// kafkaBackend is a Backend implementation over segmentio/kafka-go. Writers
// are created lazily, one per topic, partitioned by key (task-id) so that
// within-task ordering is preserved per spec §5's ordering guarantee.
type kafkaBackend struct {
	cfg     *KafkaConfig
	mu      sync.Mutex
	writers map[string]*kafkago.Writer
}

// NewKafkaBackend constructs a Backend backed by real Kafka brokers.
func NewKafkaBackend(cfg *KafkaConfig) Backend {
	return &kafkaBackend{
		cfg:     cfg,
		writers: make(map[string]*kafkago.Writer),
	}
}

func (b *kafkaBackend) writerFor(topic string) *kafkago.Writer {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, ok := b.writers[topic]; ok {
		return w
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(b.cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		WriteTimeout: b.cfg.PublishTimeout,
	}
	b.writers[topic] = w
	return w
}

func (b *kafkaBackend) Publish(ctx context.Context, topic string, key []byte, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.PublishTimeout)
	defer cancel()

	w := b.writerFor(topic)
	err := w.WriteMessages(ctx, kafkago.Message{Key: key, Value: body})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return nil
}

func (b *kafkaBackend) Subscribe(ctx context.Context, topic string, handler func(ctx context.Context, body []byte) error) error {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  b.cfg.Brokers,
		GroupID:  b.cfg.ConsumerGroup,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	go func() {
		defer reader.Close()
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			_ = handler(ctx, msg.Value)
		}
	}()
	return nil
}

func (b *kafkaBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for _, w := range b.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (b *kafkaBackend) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if len(b.cfg.Brokers) == 0 {
		return fmt.Errorf("%w: no brokers configured", ErrUnreachable)
	}
	conn, err := kafkago.DialContext(ctx, "tcp", b.cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer conn.Close()
	return nil
}
