package payout

import "encoding/json"

// Receipt is what the gateway returns for an accepted payout.
type Receipt struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Outcome is the result of submitting one Instruction. Exactly one of Receipt
// and Err is set.
type Outcome struct {
	Leg         int
	Instruction Instruction
	Receipt     *Receipt
	Err         *GatewayError
}

// Succeeded reports whether the processor accepted the leg.
func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.Receipt != nil
}

// MarshalJSON renders a success as {id,status,amount,currency} and a failure
// as {error}, both tagged with the leg index.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if !o.Succeeded() {
		msg := "unknown failure"
		code := ""
		if o.Err != nil {
			msg = o.Err.Message
			code = o.Err.Code
		}
		return json.Marshal(struct {
			Leg   int    `json:"leg"`
			Error string `json:"error"`
			Code  string `json:"code,omitempty"`
		}{o.Leg, msg, code})
	}
	return json.Marshal(struct {
		Leg int `json:"leg"`
		Receipt
	}{o.Leg, *o.Receipt})
}

// Summary classifies a routing result for callers that must act on partial failures.
type Summary string

const (
	SummaryNone            Summary = "none"
	SummaryAllSucceeded    Summary = "all_succeeded"
	SummaryPartiallyFailed Summary = "partially_failed"
	SummaryAllFailed       Summary = "all_failed"
)

// Summarize inspects every outcome.
func Summarize(outcomes []Outcome) Summary {
	if len(outcomes) == 0 {
		return SummaryNone
	}
	failed := 0
	for _, o := range outcomes {
		if !o.Succeeded() {
			failed++
		}
	}
	switch failed {
	case 0:
		return SummaryAllSucceeded
	case len(outcomes):
		return SummaryAllFailed
	default:
		return SummaryPartiallyFailed
	}
}
