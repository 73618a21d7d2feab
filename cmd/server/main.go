package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/payoutrouter/infra/initializer"
	"github.com/amirasaad/payoutrouter/pkg/app"
	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	logger := initializer.SetupLogger(cfg.Log)

	fiberApp, cleanup, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- fiberApp.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("🛑 Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return fiberApp.ShutdownWithContext(shutdownCtx)
	}
}

// newServer wires the dependencies and returns the HTTP app together with
// the cleanup that releases them.
func newServer(cfg *config.App, logger *slog.Logger) (*fiber.App, func(), error) {
	deps, cleanup, err := initializer.InitializeDependencies(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	application, err := app.New(deps, cfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build application: %w", err)
	}
	return webapi.SetupApp(application), cleanup, nil
}
