// Package testutils provides an HTTP test suite running the full webhook
// pipeline against an sqlite ledger and the in-process payout gateway.
package testutils

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"time"

	infra "github.com/amirasaad/payoutrouter/infra"
	infracache "github.com/amirasaad/payoutrouter/infra/cache"
	infraeventbus "github.com/amirasaad/payoutrouter/infra/eventbus"
	"github.com/amirasaad/payoutrouter/infra/provider/mockpayment"
	infrarepo "github.com/amirasaad/payoutrouter/infra/repository/transaction"
	"github.com/amirasaad/payoutrouter/pkg/app"
	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/pkg/iso20022"
	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/amirasaad/payoutrouter/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// Secret signs every request made through SignedRequest.
const Secret = "whsec_e2e"

// E2ETestSuite wires the application the way cmd/server does, with a
// throwaway sqlite database per test.
type E2ETestSuite struct {
	suite.Suite
	App     *fiber.App
	DB      *gorm.DB
	Gateway *mockpayment.MockPayoutGateway
	Bus     *infraeventbus.MemoryEventBus
	Cfg     *config.App
}

// NewTestConfig returns a valid configuration for the mock gateway.
func NewTestConfig(dbPath string) *config.App {
	return &config.App{
		Env:       "test",
		DedupeTTL: time.Hour,
		Server:    &config.Server{Scheme: "http", Host: "localhost", Port: 3000},
		Log:       &config.Log{Format: "text"},
		DB:        &config.DB{Driver: config.DriverSQLite, Url: dbPath},
		Webhook: &config.Webhook{
			SharedSecret:    Secret,
			SignatureHeader: "X-Dwin-Signature",
			MaxBodyBytes:    4096,
		},
		Payout: &config.Payout{
			EURDailyLimit: decimal.NewFromInt(5000),
			Destinations:  map[string]string{"EUR": "ba_eur", "GBP": "ba_gbp"},
			Rounding:      money.RoundHalfUp,
			Descriptor:    payout.DefaultDescriptor,
			Gateway:       config.GatewayMock,
		},
		Stripe:    &config.Stripe{Timeout: time.Second},
		Redis:     &config.Redis{KeyPrefix: "payoutrouter:"},
		Kafka:     &config.Kafka{},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
	}
}

func (s *E2ETestSuite) SetupTest() {
	s.Cfg = NewTestConfig(filepath.Join(s.T().TempDir(), "ledger.db"))

	db, err := infra.NewDBConnection(s.Cfg.DB, s.Cfg.Env, infrarepo.Models()...)
	s.Require().NoError(err)
	s.DB = db
	s.Rebuild()
}

// Rebuild recreates the gateway, bus and fiber app from s.Cfg, keeping the
// database. Suites that tweak the configuration call it after SetupTest.
func (s *E2ETestSuite) Rebuild() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	policy, err := s.Cfg.PayoutPolicy()
	s.Require().NoError(err)
	s.Gateway = mockpayment.NewMockPayoutGateway()
	router, err := payout.NewRouter(policy, s.Gateway, logger)
	s.Require().NoError(err)

	s.Bus = infraeventbus.NewWithMemory(logger)
	application, err := app.New(&app.Deps{
		Router:   router,
		Ledger:   infrarepo.New(s.DB),
		Tracker:  infracache.NewMemoryDeliveryTracker(s.Cfg.DedupeTTL),
		EventBus: s.Bus,
		Logger:   logger,
	}, s.Cfg)
	s.Require().NoError(err)
	s.App = webapi.SetupApp(application)
}

func (s *E2ETestSuite) TearDownTest() {
	if s.DB == nil {
		return
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// MakeRequest performs a request against the suite's app.
func (s *E2ETestSuite) MakeRequest(method, path, body string, headers map[string]string) *http.Response {
	return MakeRequestWithApp(s.App, method, path, body, headers)
}

// SignedRequest posts body to /webhook with a valid signature.
func (s *E2ETestSuite) SignedRequest(body string) *http.Response {
	return s.MakeRequest(fiber.MethodPost, "/webhook", body, map[string]string{
		s.Cfg.Webhook.SignatureHeader: iso20022.Sign([]byte(Secret), []byte(body)),
	})
}

// CountRows returns the number of rows in table.
func (s *E2ETestSuite) CountRows(table string) int64 {
	var n int64
	s.Require().NoError(s.DB.Table(table).Count(&n).Error)
	return n
}

// MakeRequestWithApp performs a request against app and returns the response.
func MakeRequestWithApp(app *fiber.App, method, path, body string, headers map[string]string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		panic(fmt.Sprintf("request %s %s: %v", method, path, err))
	}
	return resp
}

// Transfer renders one CdtTrfTxInf entry.
func Transfer(amount, currency, reference string) string {
	return fmt.Sprintf(
		`{"Amt":{"InstdAmt":{"Ccy":%q,"value":%q}},"Cdtr":{"Nm":"Private Ledger Ltd"},"RmtInf":{"Ustrd":%q}}`,
		currency, amount, reference,
	)
}

// Message renders a credit-transfer document holding the given transfers.
func Message(msgID string, transfers ...string) string {
	return `{"Document":{"CstmrCdtTrfInitn":{"GrpHdr":{"MsgId":"` + msgID + `"},"PmtInf":{"CdtTrfTxInf":[` +
		strings.Join(transfers, ",") + `]}}}}`
}
