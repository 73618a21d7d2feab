// Package payout exposes a dry run of the routing plan.
package payout

import (
	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/amirasaad/payoutrouter/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the payout endpoints.
func Routes(app *fiber.App, router *payout.Router) {
	group := app.Group("/payouts")
	group.Get("/plan", Plan(router))
}

// Plan returns the instructions the router would submit for an amount,
// without submitting anything.
func Plan(router *payout.Router) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.QueryAndValidate[PlanQuery](c)
		if input == nil {
			return err
		}
		amount, err := money.ParseAmount(input.Amount)
		if err != nil {
			return common.ErrorResponseJSON(
				c, fiber.StatusUnprocessableEntity, "Invalid amount", err.Error(),
			)
		}
		instructions, err := router.Plan(amount, input.Currency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid payout request", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Payout plan", PlanResponse{
			Amount:       amount.String(),
			Currency:     input.Currency,
			DailyLimit:   router.DailyLimit().String(),
			Instructions: instructions,
		})
	}
}
