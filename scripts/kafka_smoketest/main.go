package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	infraeventbus "github.com/amirasaad/payoutrouter/infra/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/events"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// RunSmokeTest publishes a TransferRouted event through the Kafka event bus
// and waits for the bus's own consumer to receive it.
func RunSmokeTest() error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))
	if brokers == "" {
		brokers = "localhost:9093,localhost:9092"
	}
	topic := strings.TrimSpace(os.Getenv("KAFKA_TOPIC"))
	if topic == "" {
		topic = "payoutrouter.events.smoketest"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ensureTopic(ctx, strings.Split(brokers, ",")[0], topic); err != nil {
		logger.Error("create topic failed", "topic", topic, "error", err)
		return err
	}
	logger.Info("topic ready", "topic", topic)

	bus, err := infraeventbus.NewWithKafka(brokers, events.Factories(), logger, &infraeventbus.KafkaEventBusConfig{
		Topic:   topic,
		GroupID: "payoutrouter-smoketest-" + uuid.NewString()[:8],
	})
	if err != nil {
		return err
	}
	defer func() { _ = bus.Close() }()

	want := events.TransferRouted{
		TransferEvent: events.TransferEvent{
			TransactionID: uuid.New(),
			Reference:     "SMOKE-1",
			MessageID:     "smoketest",
		},
		Amount:    "7000.00",
		Currency:  "USD",
		Legs:      2,
		Summary:   "all_succeeded",
		Timestamp: time.Now().UTC(),
	}

	received := make(chan events.TransferRouted, 1)
	bus.Register(events.EventTypeTransferRouted, func(_ context.Context, e eventbus.Event) error {
		if got, ok := e.(*events.TransferRouted); ok && got.TransactionID == want.TransactionID {
			select {
			case received <- *got:
			default:
			}
		}
		return nil
	})

	if err := bus.Emit(ctx, want); err != nil {
		logger.Error("publish failed", "error", err)
		return err
	}
	logger.Info("produced", "transaction_id", want.TransactionID)

	select {
	case got := <-received:
		logger.Info("consumed", "transaction_id", got.TransactionID, "summary", got.Summary)
	case <-ctx.Done():
		return fmt.Errorf("no event consumed from %s: %w", topic, ctx.Err())
	}

	logger.Info("kafka smoke test passed")
	return nil
}

func ensureTopic(ctx context.Context, broker, topic string) error {
	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return err
	}
	return nil
}

// main runs the smoke test and exits non-zero on failure.
func main() {
	if err := RunSmokeTest(); err != nil {
		os.Exit(1)
	}
}
