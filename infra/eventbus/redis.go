package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus publishes events to one Redis stream per event type and
// consumes them through a consumer group.
type RedisEventBus struct {
	client    redis.UniversalClient
	prefix    string
	group     string
	factories map[string]eventbus.Factory
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis creates a new Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379")
// prefix: key prefix for the streams, e.g. "payoutrouter:"
func NewWithRedis(
	url, prefix string,
	factories map[string]eventbus.Factory,
	logger *slog.Logger,
) (*RedisEventBus, error) {
	if url == "" {
		return nil, fmt.Errorf("redis event bus: url is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}
	return NewWithRedisClient(client, prefix, factories, logger), nil
}

// NewWithRedisClient wraps an existing client. The bus owns the client and
// closes it on Close.
func NewWithRedisClient(
	client redis.UniversalClient,
	prefix string,
	factories map[string]eventbus.Factory,
	logger *slog.Logger,
) *RedisEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:    client,
		prefix:    prefix,
		group:     prefix + "payoutrouter",
		factories: factories,
		logger:    logger.With("bus", "redis"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (b *RedisEventBus) streamName(eventType string) string {
	return b.prefix + "events:" + eventType
}

func (b *RedisEventBus) dlqStreamName(eventType string) string {
	return b.prefix + "dlq:" + eventType
}

// Emit publishes an event to the stream of its type.
func (b *RedisEventBus) Emit(ctx context.Context, event eventbus.Event) error {
	data, err := encodeEnvelope(event)
	if err != nil {
		return fmt.Errorf("redis event bus: %w", err)
	}
	err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.streamName(event.Type()),
		Values: map[string]any{"event": string(data)},
	}).Err()
	if err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Register starts a consumer for the event type, calling handler for each event.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	stream := b.streamName(eventType)
	err := b.client.XGroupCreateMkStream(b.ctx, stream, b.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		b.logger.Error("failed to create consumer group", "error", err, "stream", stream)
	}
	host, _ := os.Hostname()
	consumer := fmt.Sprintf("%s-%s-%d", host, eventType, time.Now().UnixNano())
	b.logger.Info("registering handler", "event_type", eventType, "consumer", consumer)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(stream, eventType, consumer, handler)
	}()
}

func (b *RedisEventBus) consume(stream, eventType, consumer string, handler eventbus.HandlerFunc) {
	for {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if b.ctx.Err() != nil {
			return
		}
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("error reading from stream", "error", err, "stream", stream)
				time.Sleep(time.Second)
			}
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				b.handle(eventType, msg, handler)
				if err := b.client.XAck(b.ctx, stream, b.group, msg.ID).Err(); err != nil {
					b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
				}
			}
		}
	}
}

func (b *RedisEventBus) handle(eventType string, msg redis.XMessage, handler eventbus.HandlerFunc) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		b.pushToDLQ(eventType, msg.Values)
		return
	}
	_, evt, err := decodeEnvelope([]byte(raw), b.factories)
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "msg_id", msg.ID)
		b.pushToDLQ(eventType, msg.Values)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panic recovered", "panic", r, "event_type", eventType)
			b.pushToDLQ(eventType, msg.Values)
		}
	}()
	if err := handler(b.ctx, evt); err != nil {
		b.logger.Error("handler error", "error", err, "event_type", eventType)
		b.pushToDLQ(eventType, msg.Values)
	}
}

// pushToDLQ keeps the raw message on a dead letter stream for inspection.
func (b *RedisEventBus) pushToDLQ(eventType string, values map[string]any) {
	dlq := b.dlqStreamName(eventType)
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlq)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

// Close stops the consumers and closes the client.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return b.client.Close()
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
