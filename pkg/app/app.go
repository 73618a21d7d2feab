// Package app wires the payout services on top of the initialized dependencies.
package app

import (
	"log/slog"

	"github.com/amirasaad/payoutrouter/pkg/cache"
	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/amirasaad/payoutrouter/pkg/repository/transaction"
	"github.com/amirasaad/payoutrouter/pkg/service/ingest"
)

// Deps contains the infrastructure the services are built from.
type Deps struct {
	Router   *payout.Router
	Ledger   transaction.Repository
	Tracker  cache.DeliveryTracker
	EventBus eventbus.Bus
	Logger   *slog.Logger
}

type App struct {
	Deps          *Deps
	Config        *config.App
	IngestService *ingest.Service
}

// New builds the application services and registers the event subscribers.
func New(deps *Deps, cfg *config.App) (*App, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	svc, err := ingest.New(ingest.Deps{
		Secret:  []byte(cfg.Webhook.SharedSecret),
		Router:  deps.Router,
		Ledger:  deps.Ledger,
		Tracker: deps.Tracker,
		Bus:     deps.EventBus,
		Logger:  deps.Logger,
	})
	if err != nil {
		return nil, err
	}
	app.IngestService = svc
	return app, nil
}

func (a *App) setupEventBus() {
	if a.Deps.EventBus == nil {
		return
	}
	ingest.RegisterFailureLogger(a.Deps.EventBus, a.Deps.Logger)
}
