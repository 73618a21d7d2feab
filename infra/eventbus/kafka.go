package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/segmentio/kafka-go"
)

// KafkaEventBusConfig holds configuration for the Kafka event bus.
type KafkaEventBusConfig struct {
	Topic        string
	GroupID      string
	WriteTimeout time.Duration
}

// DefaultKafkaEventBusConfig returns default configuration for KafkaEventBus.
func DefaultKafkaEventBusConfig() *KafkaEventBusConfig {
	return &KafkaEventBusConfig{
		Topic:        "payoutrouter.events",
		GroupID:      "payoutrouter",
		WriteTimeout: 10 * time.Second,
	}
}

// KafkaEventBus publishes every event to one topic keyed by event type.
// Consumers read the topic once and dispatch on the envelope type.
type KafkaEventBus struct {
	brokers   []string
	writer    *kafka.Writer
	config    *KafkaEventBusConfig
	factories map[string]eventbus.Factory
	logger    *slog.Logger

	handlers    map[string][]eventbus.HandlerFunc
	handlersMtx sync.RWMutex
	readerOnce  sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithKafka creates a new Kafka-backed event bus.
// brokers: Comma-separated brokers list (e.g. "localhost:9092,localhost:9093").
func NewWithKafka(
	brokers string,
	factories map[string]eventbus.Factory,
	logger *slog.Logger,
	config *KafkaEventBusConfig,
) (*KafkaEventBus, error) {
	parsed := parseBrokers(brokers)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	defaults := DefaultKafkaEventBusConfig()
	if config == nil {
		config = defaults
	}
	if config.Topic == "" {
		config.Topic = defaults.Topic
	}
	if config.GroupID == "" {
		config.GroupID = defaults.GroupID
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &KafkaEventBus{
		brokers: parsed,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(parsed...),
			Topic:                  config.Topic,
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           config.WriteTimeout,
		},
		config:    config,
		factories: factories,
		logger:    logger.With("bus", "kafka"),
		handlers:  make(map[string][]eventbus.HandlerFunc),
		ctx:       ctx,
		cancel:    cancel,
	}
	bus.logger.Info("🚀 Kafka event bus initialized", "brokers", parsed, "topic", config.Topic)
	return bus, nil
}

// Emit publishes an event to the topic.
func (b *KafkaEventBus) Emit(ctx context.Context, event eventbus.Event) error {
	data, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Type()),
		Value: data,
		Time:  time.Now(),
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	return nil
}

// Register registers an event handler and starts the topic reader on first use.
func (b *KafkaEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.handlersMtx.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.handlersMtx.Unlock()

	b.readerOnce.Do(func() {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  b.brokers,
			GroupID:  b.config.GroupID,
			Topic:    b.config.Topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  time.Second,
		})
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer func() { _ = reader.Close() }()
			b.consumeLoop(reader)
		}()
	})
}

func (b *KafkaEventBus) consumeLoop(reader *kafka.Reader) {
	for {
		msg, err := reader.FetchMessage(b.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || b.ctx.Err() != nil {
				return
			}
			b.logger.Error("kafka consume error", "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		b.dispatch(msg.Value)
		if err := reader.CommitMessages(b.ctx, msg); err != nil {
			b.logger.Error("kafka commit error", "error", err, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

// dispatch decodes one message and runs the handlers of its type. Undecodable
// messages are logged and skipped so the partition keeps moving.
func (b *KafkaEventBus) dispatch(raw []byte) {
	eventType, evt, err := decodeEnvelope(raw, b.factories)
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "event_type", eventType)
		return
	}
	b.handlersMtx.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[eventType]...)
	b.handlersMtx.RUnlock()

	for _, handler := range handlers {
		if err := handler(b.ctx, evt); err != nil {
			b.logger.Error("handler error", "error", err, "event_type", eventType)
		}
	}
}

// Close stops the reader and flushes the writer.
func (b *KafkaEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.writer.Close()
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
