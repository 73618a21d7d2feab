package payout

import "github.com/amirasaad/payoutrouter/pkg/payout"

// PlanQuery is the query string of GET /payouts/plan.
type PlanQuery struct {
	Amount   string `query:"amount" validate:"required"`
	Currency string `query:"currency" validate:"required,len=3,alpha"`
}

type PlanResponse struct {
	Amount       string               `json:"amount"`
	Currency     string               `json:"currency"`
	DailyLimit   string               `json:"daily_limit"`
	Instructions []payout.Instruction `json:"instructions"`
}
