// Package webapi provides the HTTP ingress of the payout router.
// It is organized into sub-packages:
// - webhook: the signed credit-transfer webhook
// - payout: dry runs of the routing plan
// - common: problem details and response helpers
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/payoutrouter/pkg/app"
	"github.com/amirasaad/payoutrouter/webapi/common"
	payoutweb "github.com/amirasaad/payoutrouter/webapi/payout"
	"github.com/amirasaad/payoutrouter/webapi/webhook"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	cfg := app.Config

	fiberApp := fiber.New(fiber.Config{
		AppName:     "payoutrouter",
		BodyLimit:   cfg.Webhook.MaxBodyBytes,
		JSONEncoder: sonic.Marshal,
		JSONDecoder: sonic.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	fiberApp.Use(limiter.New(limiter.Config{
		Max:          cfg.RateLimit.MaxRequests,
		Expiration:   cfg.RateLimit.Window,
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get(
		"/",
		func(c *fiber.Ctx) error {
			return c.SendString("Payout router is running! 🚀")
		},
	)

	webhook.Routes(fiberApp, app.IngestService, cfg.Webhook)
	payoutweb.Routes(fiberApp, app.Deps.Router)
	return fiberApp
}

// clientKey identifies the caller for rate limiting. Behind a proxy the
// first X-Forwarded-For hop wins, then X-Real-IP, then the peer address.
func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
