// Package payout holds the payout routing and limit-splitting engine.
//
// Given an inbound amount and currency the Router decides how many payout
// instructions to issue, in which currency, to which destination and in what
// order, then submits them one after another through a Gateway.
//
// Policy cascade (first match wins):
//   - USD is re-evaluated as EUR, once.
//   - EUR up to the daily limit (inclusive) is paid as one EUR leg. Above the
//     limit it is paid as the limit in EUR followed by the remainder in GBP.
//     The remainder keeps its numeric value; no rate is applied.
//   - Any other currency is paid as one leg in that currency.
package payout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/shopspring/decimal"
)

// Gateway executes a single payout instruction against the processor.
// Processor rejections must be returned as *GatewayError; any other error is
// treated as an unexpected fault and stops the routing loop.
type Gateway interface {
	Submit(ctx context.Context, instruction Instruction) (*Receipt, error)
}

// Policy is the routing configuration, read once at startup.
type Policy struct {
	EURDailyLimit decimal.Decimal
	Destinations  Destinations
	Rounding      money.RoundingPolicy
	Descriptor    string
}

// Router is safe for concurrent use; it holds no per-request state.
type Router struct {
	limit    decimal.Decimal
	resolver *Resolver
	builder  *Builder
	gateway  Gateway
	logger   *slog.Logger
}

// NewRouter validates the policy and returns a Router.
func NewRouter(policy Policy, gateway Gateway, logger *slog.Logger) (*Router, error) {
	if !policy.EURDailyLimit.IsPositive() {
		return nil, &ConfigurationError{
			Field:  "PAYOUT_EUR_DAILY_LIMIT",
			Reason: "must be greater than zero",
		}
	}
	if len(policy.Descriptor) > MaxDescriptorLength {
		return nil, &ConfigurationError{
			Field:  "PAYOUT_DESCRIPTOR",
			Reason: fmt.Sprintf("must be at most %d characters", MaxDescriptorLength),
		}
	}
	if gateway == nil {
		return nil, &ConfigurationError{Field: "gateway", Reason: "payout gateway is required"}
	}
	resolver, err := NewResolver(policy.Destinations)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		limit:    policy.EURDailyLimit,
		resolver: resolver,
		builder:  NewBuilder(policy.Rounding, policy.Descriptor),
		gateway:  gateway,
		logger:   logger.With("component", "payout-router"),
	}, nil
}

// DailyLimit returns the EUR per-event cap.
func (r *Router) DailyLimit() decimal.Decimal {
	return r.limit
}

type leg struct {
	amount decimal.Decimal
	code   money.Code
}

// Plan validates the input and returns the instructions Route would submit,
// in submission order. It performs no I/O.
func (r *Router) Plan(amount decimal.Decimal, currency string) ([]Instruction, error) {
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("%w: currency is required", ErrInvalidInput)
	}
	code, err := money.ParseCode(currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := money.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	instructions := make([]Instruction, 0, 2)
	for i, l := range r.legs(amount, code) {
		destination, _ := r.resolver.Resolve(l.code)
		ins := r.builder.Build(l.amount, l.code, destination)
		if ins.AmountMinorUnits < 1 {
			if i == 0 {
				return nil, fmt.Errorf(
					"%w: %s %s is below the smallest currency unit",
					ErrInvalidInput, amount.String(), code,
				)
			}
			r.logger.Warn("dropping payout leg below the smallest currency unit",
				"leg", i,
				"amount", l.amount.String(),
				"currency", l.code,
			)
			continue
		}
		instructions = append(instructions, ins)
	}
	return instructions, nil
}

// legs applies the policy cascade.
func (r *Router) legs(amount decimal.Decimal, code money.Code) []leg {
	if code == money.USD {
		code = money.EUR
	}
	if code != money.EUR {
		return []leg{{amount: amount, code: code}}
	}
	if amount.LessThanOrEqual(r.limit) {
		return []leg{{amount: amount, code: money.EUR}}
	}
	return []leg{
		{amount: r.limit, code: money.EUR},
		{amount: amount.Sub(r.limit), code: money.GBP},
	}
}

// RouteOption customizes a single Route call.
type RouteOption func(*routeOptions)

type routeOptions struct {
	idempotencyPrefix string
}

// WithIdempotencyKey makes every submitted leg carry "<key>:<leg>" so that a
// redelivered message cannot pay out twice at the processor.
func WithIdempotencyKey(key string) RouteOption {
	return func(o *routeOptions) {
		o.idempotencyPrefix = key
	}
}

// Route plans and submits the payout legs sequentially. The returned outcomes
// preserve submission order. Gateway rejections are recorded inline; an
// unexpected fault stops the loop and is returned as *PartialExecutionError.
func (r *Router) Route(
	ctx context.Context,
	amount decimal.Decimal,
	currency string,
	opts ...RouteOption,
) ([]Outcome, error) {
	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}

	log := r.logger.With(
		"amount", amount.String(),
		"currency", currency,
	)

	instructions, err := r.Plan(amount, currency)
	if err != nil {
		log.Warn("rejected payout request", "error", err)
		return nil, err
	}
	log.Info("💸 [START] Routing payout", "legs", len(instructions))

	outcomes := make([]Outcome, 0, len(instructions))
	for i, ins := range instructions {
		if err := ctx.Err(); err != nil {
			if i == 0 {
				return nil, fmt.Errorf("payout routing cancelled: %w", err)
			}
			log.Error("payout routing interrupted", "submitted", i, "error", err)
			return outcomes, &PartialExecutionError{Outcomes: outcomes, Err: err}
		}
		if o.idempotencyPrefix != "" {
			ins = ins.withIdempotencyKey(fmt.Sprintf("%s:%d", o.idempotencyPrefix, i))
		}

		receipt, err := r.gateway.Submit(ctx, ins)
		if err != nil {
			var gwErr *GatewayError
			if !errors.As(err, &gwErr) {
				log.Error("unexpected gateway fault", "leg", i, "error", err)
				return outcomes, &PartialExecutionError{Outcomes: outcomes, Err: err}
			}
			failure := *gwErr
			failure.Leg = i
			log.Warn("payout leg rejected",
				"leg", i,
				"leg_currency", ins.Currency,
				"leg_amount", ins.AmountMinorUnits,
				"error", failure.Message,
			)
			outcomes = append(outcomes, Outcome{Leg: i, Instruction: ins, Err: &failure})
			continue
		}
		log.Info("payout leg submitted",
			"leg", i,
			"payout_id", receipt.ID,
			"status", receipt.Status,
			"leg_currency", ins.Currency,
			"leg_amount", ins.AmountMinorUnits,
		)
		outcomes = append(outcomes, Outcome{Leg: i, Instruction: ins, Receipt: receipt})
	}

	log.Info("✅ [END] Routing payout", "summary", Summarize(outcomes))
	return outcomes, nil
}
