package initializer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	infracache "github.com/amirasaad/payoutrouter/infra/cache"
	infraeventbus "github.com/amirasaad/payoutrouter/infra/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/pkg/dto"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.App {
	t.Helper()
	return &config.App{
		Env:       "test",
		DedupeTTL: time.Hour,
		Log:       &config.Log{Format: "text"},
		DB:        &config.DB{Driver: config.DriverSQLite, Url: filepath.Join(t.TempDir(), "ledger.db")},
		Webhook:   &config.Webhook{SharedSecret: "whsec", MaxBodyBytes: 1024},
		Payout: &config.Payout{
			EURDailyLimit: decimal.NewFromInt(5000),
			Destinations:  map[string]string{"EUR": "ba_eur"},
			Gateway:       config.GatewayMock,
		},
		Stripe:    &config.Stripe{Timeout: time.Second},
		Redis:     &config.Redis{KeyPrefix: "payoutrouter:"},
		Kafka:     &config.Kafka{},
		EventBus:  &config.EventBus{},
		RateLimit: &config.RateLimit{MaxRequests: 10, Window: time.Minute},
	}
}

func TestInitializeDependenciesWithLocalDefaults(t *testing.T) {
	deps, cleanup, err := InitializeDependencies(testConfig(t), discardLogger())
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &infracache.MemoryDeliveryTracker{}, deps.Tracker)
	assert.IsType(t, &infraeventbus.MemoryEventBus{}, deps.EventBus)
	assert.True(t, decimal.NewFromInt(5000).Equal(deps.Router.DailyLimit()))

	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, deps.Ledger.Create(ctx, dto.TransactionCreate{
		ID:        id,
		Reference: "INV-1",
		Amount:    decimal.RequireFromString("12.50"),
		Currency:  "EUR",
	}))
	got, err := deps.Ledger.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "INV-1", got.Reference)

	outcomes, err := deps.Router.Route(ctx, decimal.NewFromInt(10), "EUR")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Succeeded(), "mock gateway accepts every payout")
}

func TestInitializeDependenciesRejectsBadDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB = &config.DB{Driver: config.DriverPostgres}

	_, _, err := InitializeDependencies(cfg, discardLogger())
	require.Error(t, err)
}

func TestInitGateway(t *testing.T) {
	cfg := testConfig(t)
	cfg.Payout.Gateway = "paypal"
	_, err := initGateway(cfg, discardLogger())
	var cfgErr *payout.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "PAYOUT_GATEWAY", cfgErr.Field)

	cfg.Payout.Gateway = config.GatewayStripe
	cfg.Stripe.ApiKey = "sk_test_123"
	gw, err := initGateway(cfg, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, gw)
}

func TestInitEventBus(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.App)
		want    any
		wantErr string
	}{
		{
			name:   "defaults to memory",
			mutate: func(*config.App) {},
			want:   &infraeventbus.MemoryEventBus{},
		},
		{
			name:   "brokers select kafka",
			mutate: func(cfg *config.App) { cfg.Kafka.Brokers = "localhost:9092" },
			want:   &infraeventbus.KafkaEventBus{},
		},
		{
			name: "unreachable redis falls back to memory",
			mutate: func(cfg *config.App) {
				cfg.Redis.URL = "redis://127.0.0.1:1/0"
			},
			want: &infraeventbus.MemoryEventBus{},
		},
		{
			name: "explicit memory ignores brokers",
			mutate: func(cfg *config.App) {
				cfg.EventBus.Driver = config.EventBusMemory
				cfg.Kafka.Brokers = "localhost:9092"
			},
			want: &infraeventbus.MemoryEventBus{},
		},
		{
			name:    "explicit redis requires url",
			mutate:  func(cfg *config.App) { cfg.EventBus.Driver = config.EventBusRedis },
			wantErr: "REDIS_URL",
		},
		{
			name:    "explicit redis does not fall back",
			mutate: func(cfg *config.App) {
				cfg.EventBus.Driver = config.EventBusRedis
				cfg.Redis.URL = "redis://127.0.0.1:1/0"
			},
			wantErr: "Redis event bus",
		},
		{
			name:    "explicit kafka requires brokers",
			mutate:  func(cfg *config.App) { cfg.EventBus.Driver = config.EventBusKafka },
			wantErr: "KAFKA_BROKERS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			bus, err := initEventBus(cfg, discardLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, bus)
			if c, ok := bus.(closer); ok {
				assert.NoError(t, c.Close())
			}
		})
	}
}

func TestSetupLoggerFormats(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := setupLogger(&buf, &config.Log{Format: "json", Prefix: "[payoutrouter]"})
	logger.Info("hello", "transaction_id", "tx-1")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"transaction_id":"tx-1"`)
	assert.Contains(t, buf.String(), "[payoutrouter]")
}
