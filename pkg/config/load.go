package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	GatewayStripe = "stripe"
	GatewayMock   = "mock"

	EventBusMemory = "memory"
	EventBusRedis  = "redis"
	EventBusKafka  = "kafka"

	defaultSQLitePath = "transactions.db"
)

func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	// If no specific paths provided, try default .env
	if len(envFilePath) == 0 {
		logger.Debug("No environment file specified, trying default .env")
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	// Try each provided path until we find a valid one
	for _, path := range envFilePath {
		logger.Debug("Looking for environment file", "path", path)
		foundPath, err := findEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	logger.Info("No valid environment files found, using default .env")
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found in current directory")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &payout.ConfigurationError{Field: "environment", Reason: err.Error()}
	}
	if err := applyLegacyEnv(&cfg, os.Environ()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.Default()
	logger.Info("App config loaded",
		"env", cfg.Env,
		"db_driver", cfg.DB.Driver,
		"db", maskValue(cfg.DB.Url),
		"webhook_secret", maskValue(cfg.Webhook.SharedSecret),
		"eur_daily_limit", cfg.Payout.EURDailyLimit.String(),
		"destinations", len(cfg.Payout.Destinations),
		"rounding", cfg.Payout.Rounding,
		"gateway", cfg.Payout.Gateway,
		"stripe_api_key", maskValue(cfg.Stripe.ApiKey),
		"redis", maskValue(cfg.Redis.URL),
		"kafka_brokers", cfg.Kafka.Brokers,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
	)
	return &cfg, nil
}

// applyLegacyEnv fills unset values from the variable names of the original receiver.
func applyLegacyEnv(cfg *App, environ []string) error {
	if cfg.Webhook.SharedSecret == "" {
		cfg.Webhook.SharedSecret = os.Getenv(legacySharedSecretEnv)
	}
	if cfg.Stripe.ApiKey == "" {
		cfg.Stripe.ApiKey = os.Getenv(legacyStripeKeyEnv)
	}
	if cfg.Payout.EURDailyLimit.IsZero() && IsEnvSet(legacyDailyLimitEnv) {
		limit, err := decimal.NewFromString(strings.TrimSpace(os.Getenv(legacyDailyLimitEnv)))
		if err != nil {
			return &payout.ConfigurationError{Field: legacyDailyLimitEnv, Reason: "not a decimal"}
		}
		cfg.Payout.EURDailyLimit = limit
	}
	if cfg.DB.Url == "" && cfg.DB.Driver == DriverSQLite {
		cfg.DB.Url = GetEnv(legacyDBPathEnv, defaultSQLitePath)
	}
	if len(cfg.Payout.Destinations) == 0 {
		cfg.Payout.Destinations = legacyDestinations(environ)
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (cfg *App) Validate() error {
	if strings.TrimSpace(cfg.Webhook.SharedSecret) == "" {
		return &payout.ConfigurationError{Field: "WEBHOOK_SHARED_SECRET", Reason: "must be set"}
	}
	if cfg.Webhook.MaxBodyBytes <= 0 {
		return &payout.ConfigurationError{Field: "WEBHOOK_MAX_BODY_BYTES", Reason: "must be positive"}
	}
	if !cfg.Payout.EURDailyLimit.IsPositive() {
		return &payout.ConfigurationError{Field: "PAYOUT_EUR_DAILY_LIMIT", Reason: "must be set to a positive decimal"}
	}
	if _, err := money.ParseRoundingPolicy(string(cfg.Payout.Rounding)); err != nil {
		return &payout.ConfigurationError{Field: "PAYOUT_ROUNDING", Reason: err.Error()}
	}
	if len(cfg.Payout.Descriptor) > payout.MaxDescriptorLength {
		return &payout.ConfigurationError{
			Field:  "PAYOUT_DESCRIPTOR",
			Reason: fmt.Sprintf("longer than %d characters", payout.MaxDescriptorLength),
		}
	}
	switch cfg.Payout.Gateway {
	case GatewayStripe:
		if cfg.Stripe.ApiKey == "" {
			return &payout.ConfigurationError{Field: "STRIPE_API_KEY", Reason: "required by the stripe gateway"}
		}
	case GatewayMock:
	default:
		return &payout.ConfigurationError{Field: "PAYOUT_GATEWAY", Reason: "must be stripe or mock"}
	}
	switch cfg.DB.Driver {
	case DriverPostgres:
		if cfg.DB.Url == "" {
			return &payout.ConfigurationError{Field: "DATABASE_URL", Reason: "required by the postgres driver"}
		}
	case DriverSQLite:
	default:
		return &payout.ConfigurationError{Field: "DATABASE_DRIVER", Reason: "must be postgres or sqlite"}
	}
	if err := cfg.validateEventBus(); err != nil {
		return err
	}
	if _, err := cfg.PayoutDestinations(); err != nil {
		return err
	}
	return nil
}

func (cfg *App) validateEventBus() error {
	if cfg.EventBus == nil {
		return nil
	}
	switch cfg.EventBus.Driver {
	case "", EventBusMemory:
	case EventBusRedis:
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return &payout.ConfigurationError{Field: "REDIS_URL", Reason: "required by the redis event bus"}
		}
	case EventBusKafka:
		if cfg.Kafka == nil || strings.TrimSpace(cfg.Kafka.Brokers) == "" {
			return &payout.ConfigurationError{Field: "KAFKA_BROKERS", Reason: "required by the kafka event bus"}
		}
	default:
		return &payout.ConfigurationError{Field: "EVENT_BUS_DRIVER", Reason: "must be memory, redis or kafka"}
	}
	return nil
}

// PayoutDestinations converts the configured table into a resolver table.
// Entries that normalize to the same currency, such as eur and EUR, are
// rejected because map order would otherwise pick the winner.
func (cfg *App) PayoutDestinations() (payout.Destinations, error) {
	out := make(payout.Destinations, len(cfg.Payout.Destinations))
	for raw, id := range cfg.Payout.Destinations {
		code, err := money.ParseCode(raw)
		if err != nil {
			return nil, &payout.ConfigurationError{
				Field:  "PAYOUT_DESTINATIONS",
				Reason: fmt.Sprintf("invalid currency %q", raw),
			}
		}
		if _, dup := out[code]; dup {
			return nil, &payout.ConfigurationError{
				Field:  "PAYOUT_DESTINATIONS",
				Reason: fmt.Sprintf("currency %s is listed more than once", code),
			}
		}
		out[code] = id
	}
	return out, nil
}

// PayoutPolicy returns the routing policy the router is built with.
func (cfg *App) PayoutPolicy() (payout.Policy, error) {
	destinations, err := cfg.PayoutDestinations()
	if err != nil {
		return payout.Policy{}, err
	}
	return payout.Policy{
		EURDailyLimit: cfg.Payout.EURDailyLimit,
		Destinations:  destinations,
		Rounding:      cfg.Payout.Rounding,
		Descriptor:    cfg.Payout.Descriptor,
	}, nil
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
