// Package initializer builds the infrastructure the application runs on.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/payoutrouter/infra"
	infracache "github.com/amirasaad/payoutrouter/infra/cache"
	infraeventbus "github.com/amirasaad/payoutrouter/infra/eventbus"
	"github.com/amirasaad/payoutrouter/infra/provider/mockpayment"
	"github.com/amirasaad/payoutrouter/infra/provider/stripepayment"
	infrarepo "github.com/amirasaad/payoutrouter/infra/repository/transaction"
	"github.com/amirasaad/payoutrouter/pkg/app"
	"github.com/amirasaad/payoutrouter/pkg/cache"
	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/events"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/redis/go-redis/v9"
)

// closer is implemented by the buses and clients that hold connections.
type closer interface {
	Close() error
}

// InitializeDependencies initializes all the application dependencies.
// The returned cleanup releases connections and must be called on shutdown.
func InitializeDependencies(cfg *config.App, logger *slog.Logger) (
	deps *app.Deps,
	cleanup func(),
	err error,
) {
	var closers []closer
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i].Close(); cerr != nil {
				logger.Warn("failed to close dependency", "error", cerr)
			}
		}
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	deps = &app.Deps{Logger: logger}

	// Initialize database
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env, infrarepo.Models()...)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		closers = append(closers, sqlDB)
	}
	deps.Ledger = infrarepo.New(db)

	// Initialize payout router
	gateway, err := initGateway(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	policy, err := cfg.PayoutPolicy()
	if err != nil {
		return nil, nil, err
	}
	deps.Router, err = payout.NewRouter(policy, gateway, logger)
	if err != nil {
		return nil, nil, err
	}

	// Redis backs both the delivery tracker and, optionally, the event bus
	var redisClient *redis.Client
	if cfg.Redis != nil && cfg.Redis.URL != "" {
		redisClient, err = newRedisClient(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		closers = append(closers, redisClient)
	}
	deps.Tracker = initTracker(cfg, redisClient, logger)

	// Initialize event bus
	bus, err := initEventBus(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if c, ok := bus.(closer); ok {
		closers = append(closers, c)
	}
	deps.EventBus = bus

	logger.Info("🚀 Dependencies initialized",
		"gateway", cfg.Payout.Gateway,
		"db_driver", cfg.DB.Driver,
		"tracker", fmt.Sprintf("%T", deps.Tracker),
		"event_bus", fmt.Sprintf("%T", bus),
	)
	return deps, cleanup, nil
}

func initGateway(cfg *config.App, logger *slog.Logger) (payout.Gateway, error) {
	switch cfg.Payout.Gateway {
	case config.GatewayStripe:
		return stripepayment.New(cfg.Stripe, logger), nil
	case config.GatewayMock:
		logger.Warn("Using the in-process mock payout gateway; no money will move")
		return mockpayment.NewMockPayoutGateway(), nil
	default:
		return nil, &payout.ConfigurationError{Field: "PAYOUT_GATEWAY", Reason: "must be stripe or mock"}
	}
}

func initTracker(cfg *config.App, client *redis.Client, logger *slog.Logger) cache.DeliveryTracker {
	if client == nil {
		return infracache.NewMemoryDeliveryTracker(cfg.DedupeTTL)
	}
	return infracache.NewRedisDeliveryTracker(client, cfg.Redis.KeyPrefix, cfg.DedupeTTL, logger)
}

// initEventBus picks the transport named by EVENT_BUS_DRIVER. Without an
// explicit driver Kafka wins over Redis, and an unreachable Redis falls back
// to the in-memory bus.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := ""
	if cfg.EventBus != nil {
		driver = cfg.EventBus.Driver
	}
	brokers := ""
	if cfg.Kafka != nil {
		brokers = cfg.Kafka.Brokers
	}
	redisURL, prefix := "", ""
	if cfg.Redis != nil {
		redisURL, prefix = cfg.Redis.URL, cfg.Redis.KeyPrefix
	}

	switch driver {
	case config.EventBusMemory:
		return infraeventbus.NewWithMemory(logger), nil
	case config.EventBusKafka:
		return newKafkaBus(cfg, logger)
	case config.EventBusRedis:
		if redisURL == "" {
			return nil, &payout.ConfigurationError{Field: "REDIS_URL", Reason: "required by the redis event bus"}
		}
		bus, err := infraeventbus.NewWithRedis(redisURL, prefix, events.Factories(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis event bus: %w", err)
		}
		return bus, nil
	case "":
	default:
		return nil, &payout.ConfigurationError{Field: "EVENT_BUS_DRIVER", Reason: "must be memory, redis or kafka"}
	}

	if brokers != "" {
		return newKafkaBus(cfg, logger)
	}
	if redisURL != "" {
		bus, err := infraeventbus.NewWithRedis(redisURL, prefix, events.Factories(), logger)
		if err == nil {
			return bus, nil
		}
		logger.Warn("Redis event bus unavailable; falling back to in-memory bus", "error", err)
	}
	return infraeventbus.NewWithMemory(logger), nil
}

func newKafkaBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	if cfg.Kafka == nil || cfg.Kafka.Brokers == "" {
		return nil, &payout.ConfigurationError{Field: "KAFKA_BROKERS", Reason: "required by the kafka event bus"}
	}
	kcfg := infraeventbus.DefaultKafkaEventBusConfig()
	if cfg.Kafka.Topic != "" {
		kcfg.Topic = cfg.Kafka.Topic
	}
	bus, err := infraeventbus.NewWithKafka(cfg.Kafka.Brokers, events.Factories(), logger, kcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka event bus: %w", err)
	}
	return bus, nil
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(&payout.ConfigurationError{Field: "REDIS_URL", Reason: "invalid URL"}, err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
