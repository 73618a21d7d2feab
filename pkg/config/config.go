package config

import (
	"time"

	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/shopspring/decimal"
)

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[payoutrouter]"`
}

type DB struct {
	Url    string `envconfig:"URL"`
	Driver string `envconfig:"DRIVER" default:"postgres"`
}

type Webhook struct {
	SharedSecret    string `envconfig:"SHARED_SECRET"`
	SignatureHeader string `envconfig:"SIGNATURE_HEADER" default:"X-Dwin-Signature"`
	MaxBodyBytes    int    `envconfig:"MAX_BODY_BYTES" default:"65536"`
}

type Payout struct {
	EURDailyLimit decimal.Decimal      `envconfig:"EUR_DAILY_LIMIT"`
	Destinations  map[string]string    `envconfig:"DESTINATIONS"`
	Rounding      money.RoundingPolicy `envconfig:"ROUNDING" default:"half_up"`
	Descriptor    string               `envconfig:"DESCRIPTOR" default:"PrivateLedgerPayout"`
	Gateway       string               `envconfig:"GATEWAY" default:"stripe"`
}

//revive:disable
type Stripe struct {
	ApiKey  string        `envconfig:"API_KEY"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

//revive:enable

type Redis struct {
	URL       string `envconfig:"URL"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"payoutrouter:"`
}

type Kafka struct {
	Brokers string `envconfig:"BROKERS"`
	Topic   string `envconfig:"TOPIC" default:"payoutrouter.events"`
}

// EventBus selects the event transport. An empty driver picks Kafka when
// brokers are configured, then Redis, then the in-memory bus.
type EventBus struct {
	Driver string `envconfig:"DRIVER"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type App struct {
	Env       string        `envconfig:"APP_ENV" default:"development"`
	DedupeTTL time.Duration `envconfig:"DEDUPE_TTL" default:"24h"`
	Server    *Server       `envconfig:"SERVER"`
	Log       *Log          `envconfig:"LOG"`
	DB        *DB           `envconfig:"DATABASE"`
	Webhook   *Webhook      `envconfig:"WEBHOOK"`
	Payout    *Payout       `envconfig:"PAYOUT"`
	Stripe    *Stripe       `envconfig:"STRIPE"`
	Redis     *Redis        `envconfig:"REDIS"`
	Kafka     *Kafka        `envconfig:"KAFKA"`
	EventBus  *EventBus     `envconfig:"EVENT_BUS"`
	RateLimit *RateLimit    `envconfig:"RATE_LIMIT"`
}
