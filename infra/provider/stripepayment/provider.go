package stripepayment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/config"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/stripe/stripe-go/v82"
)

const defaultTimeout = 30 * time.Second

// StripePayoutGateway submits payout instructions as Stripe payouts.
type StripePayoutGateway struct {
	client  *stripe.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a gateway talking to the Stripe API with the configured key.
// Network retries are disabled: a failed leg is reported, never retried.
func New(cfg *config.Stripe, logger *slog.Logger) *StripePayoutGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
	})
	return NewWithBackends(cfg.ApiKey, timeout, backends, logger)
}

// NewWithBackends creates a gateway on custom backends, e.g. a stub server in tests.
func NewWithBackends(
	apiKey string,
	timeout time.Duration,
	backends *stripe.Backends,
	logger *slog.Logger,
) *StripePayoutGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &StripePayoutGateway{
		client:  stripe.NewClient(apiKey, stripe.WithBackends(backends)),
		timeout: timeout,
		logger:  logger.With("gateway", "stripe"),
	}
}

// Submit implements payout.Gateway.
func (g *StripePayoutGateway) Submit(
	ctx context.Context,
	ins payout.Instruction,
) (*payout.Receipt, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	params := payoutParams(ins)
	logger := g.logger.With(
		"amount", ins.AmountMinorUnits,
		"currency", ins.Currency,
		"destination", ins.Destination,
	)
	logger.Info("Creating payout")

	po, err := g.client.V1Payouts.Create(ctx, params)
	if err != nil {
		if gwErr := toGatewayError(err); gwErr != nil {
			logger.Warn("Payout rejected", "code", gwErr.Code, "error", gwErr.Message)
			return nil, gwErr
		}
		logger.Error("Payout request failed", "error", err)
		return nil, fmt.Errorf("stripe payout: %w", err)
	}

	logger.Info("Payout created", "payout_id", po.ID, "status", po.Status)
	return &payout.Receipt{
		ID:       po.ID,
		Status:   string(po.Status),
		Amount:   po.Amount,
		Currency: string(po.Currency),
	}, nil
}

func payoutParams(ins payout.Instruction) *stripe.PayoutCreateParams {
	params := &stripe.PayoutCreateParams{
		Amount:              stripe.Int64(ins.AmountMinorUnits),
		Currency:            stripe.String(ins.Currency),
		Method:              stripe.String(ins.Method),
		StatementDescriptor: stripe.String(ins.Descriptor),
	}
	if ins.Destination != "" {
		params.Destination = stripe.String(ins.Destination)
	}
	if ins.IdempotencyKey != "" {
		params.SetIdempotencyKey(ins.IdempotencyKey)
	}
	return params
}

// toGatewayError maps an API error returned by Stripe to a leg rejection.
// Transport errors and context errors are not mapped.
func toGatewayError(err error) *payout.GatewayError {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return nil
	}
	code := string(stripeErr.Code)
	if code == "" {
		code = string(stripeErr.Type)
	}
	msg := stripeErr.Msg
	if msg == "" {
		msg = http.StatusText(stripeErr.HTTPStatusCode)
	}
	return &payout.GatewayError{Code: code, Message: msg}
}

var _ payout.Gateway = (*StripePayoutGateway)(nil)
