package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WEBHOOK_SHARED_SECRET", "whsec_test_secret")
	t.Setenv("PAYOUT_EUR_DAILY_LIMIT", "5000")
	t.Setenv("PAYOUT_DESTINATIONS", "EUR:ba_eur,gbp:ba_gbp")
	t.Setenv("PAYOUT_GATEWAY", "mock")
	t.Setenv("DATABASE_DRIVER", "sqlite")
}

func TestLoadFromEnv(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PAYOUT_ROUNDING", "truncate")
	t.Setenv("STRIPE_TIMEOUT", "5s")

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.True(t, decimal.NewFromInt(5000).Equal(cfg.Payout.EURDailyLimit))
	assert.Equal(t, money.Truncate, cfg.Payout.Rounding)
	assert.Equal(t, "PrivateLedgerPayout", cfg.Payout.Descriptor)
	assert.Equal(t, 5*time.Second, cfg.Stripe.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.DedupeTTL)
	assert.Equal(t, "transactions.db", cfg.DB.Url)
	assert.Equal(t, "X-Dwin-Signature", cfg.Webhook.SignatureHeader)

	destinations, err := cfg.PayoutDestinations()
	require.NoError(t, err)
	assert.Equal(t, payout.Destinations{money.EUR: "ba_eur", money.GBP: "ba_gbp"}, destinations)

	policy, err := cfg.PayoutPolicy()
	require.NoError(t, err)
	assert.Equal(t, money.Truncate, policy.Rounding)
}

func TestLoadFromEnvLegacyNames(t *testing.T) {
	t.Setenv("DWINSHAREDSECRET", "legacy-secret")
	t.Setenv("EUR_DAILY_LIMIT", "2500.50")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_legacy_key")
	t.Setenv("EUR_BANK_ID", "ba_legacy_eur")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/ledger.db")

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "legacy-secret", cfg.Webhook.SharedSecret)
	assert.Equal(t, "sk_test_legacy_key", cfg.Stripe.ApiKey)
	assert.Equal(t, "2500.5", cfg.Payout.EURDailyLimit.String())
	assert.Equal(t, "/tmp/ledger.db", cfg.DB.Url)
	assert.Equal(t, "ba_legacy_eur", cfg.Payout.Destinations["EUR"])
}

func TestLoadFromEnvRejectsInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{name: "missing secret", key: "WEBHOOK_SHARED_SECRET", value: " ", field: "WEBHOOK_SHARED_SECRET"},
		{name: "zero limit", key: "PAYOUT_EUR_DAILY_LIMIT", value: "0", field: "PAYOUT_EUR_DAILY_LIMIT"},
		{name: "negative limit", key: "PAYOUT_EUR_DAILY_LIMIT", value: "-10", field: "PAYOUT_EUR_DAILY_LIMIT"},
		{name: "bad currency in table", key: "PAYOUT_DESTINATIONS", value: "EURO:ba_1", field: "PAYOUT_DESTINATIONS"},
		{name: "duplicate currency in table", key: "PAYOUT_DESTINATIONS", value: "EUR:ba_1,eur:ba_2", field: "PAYOUT_DESTINATIONS"},
		{name: "long descriptor", key: "PAYOUT_DESCRIPTOR", value: "ThisDescriptorIsWayTooLong", field: "PAYOUT_DESCRIPTOR"},
		{name: "unknown gateway", key: "PAYOUT_GATEWAY", value: "paypal", field: "PAYOUT_GATEWAY"},
		{name: "unknown driver", key: "DATABASE_DRIVER", value: "mysql", field: "DATABASE_DRIVER"},
		{name: "unknown event bus", key: "EVENT_BUS_DRIVER", value: "nats", field: "EVENT_BUS_DRIVER"},
		{name: "redis bus without url", key: "EVENT_BUS_DRIVER", value: "redis", field: "REDIS_URL"},
		{name: "kafka bus without brokers", key: "EVENT_BUS_DRIVER", value: "kafka", field: "KAFKA_BROKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := loadFromEnv()
			require.Error(t, err)
			assert.Nil(t, cfg)

			var cfgErr *payout.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %T", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoadFromEnvStripeRequiresKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PAYOUT_GATEWAY", "stripe")
	t.Setenv("STRIPE_API_KEY", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := loadFromEnv()
	var cfgErr *payout.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "STRIPE_API_KEY", cfgErr.Field)
}

func TestLoadFromEnvRejectsUnknownRounding(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PAYOUT_ROUNDING", "banker")

	_, err := loadFromEnv()
	var cfgErr *payout.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLegacyDestinations(t *testing.T) {
	got := legacyDestinations([]string{
		"EUR_BANK_ID=ba_1",
		"GBP_BANK_ID=",
		"LONGER_BANK_ID=ba_x",
		"PATH=/usr/bin",
	})
	assert.Equal(t, map[string]string{"EUR": "ba_1"}, got)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "", maskValue(""))
	assert.Equal(t, "****", maskValue("short"))
	assert.Equal(t, "sk****cdef", maskValue("sk_test_abcdef"))
}

func TestFindEnvFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "cmd", "server")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	envPath := filepath.Join(root, ".env.test")
	require.NoError(t, os.WriteFile(envPath, []byte("APP_ENV=test\n"), 0o600))
	t.Chdir(nested)

	found, err := findEnvFile(".env.test")
	require.NoError(t, err)
	assert.Equal(t, "APP_ENV=test\n", string(mustRead(t, found)))

	_, err = findEnvFile(".env.missing")
	assert.ErrorIs(t, err, os.ErrNotExist)

	abs, err := findEnvFile(envPath)
	require.NoError(t, err)
	assert.Equal(t, envPath, abs)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}
