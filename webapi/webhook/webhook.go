// Package webhook exposes the credit-transfer webhook endpoint.
package webhook

import (
	"errors"

	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/amirasaad/payoutrouter/pkg/service/ingest"
	"github.com/amirasaad/payoutrouter/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the webhook endpoint.
func Routes(app *fiber.App, svc *ingest.Service, cfg *config.Webhook) {
	app.Post("/webhook", Handler(svc, cfg.SignatureHeader))
}

// Handler verifies, records and routes one webhook delivery.
//
// Processor rejections of single legs are part of a 200 response (see the
// per-transfer summary). An unexpected fault while routing answers 500 with
// the legs that were already submitted in the problem's errors member.
func Handler(svc *ingest.Service, signatureHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Process(c.UserContext(), c.Body(), c.Get(signatureHeader))
		if err != nil {
			var partial *payout.PartialExecutionError
			if errors.As(err, &partial) && res != nil {
				return common.ErrorResponseJSON(
					c,
					fiber.StatusInternalServerError,
					"Payout routing interrupted",
					res,
				)
			}
			return common.ProblemDetailsJSON(c, titleFor(err), err)
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

func titleFor(err error) string {
	switch common.ErrorToStatusCode(err) {
	case fiber.StatusUnauthorized:
		return "Invalid signature"
	case fiber.StatusBadRequest:
		return "Malformed message"
	case fiber.StatusUnprocessableEntity:
		return "Invalid transfer"
	case fiber.StatusConflict:
		return "Delivery in progress"
	default:
		return "Internal Server Error"
	}
}
