// Package ingest processes credit-transfer webhook deliveries: it verifies
// the signature, records each transfer in the ledger, routes its payouts and
// publishes what happened.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/amirasaad/payoutrouter/pkg/cache"
	"github.com/amirasaad/payoutrouter/pkg/dto"
	"github.com/amirasaad/payoutrouter/pkg/eventbus"
	"github.com/amirasaad/payoutrouter/pkg/iso20022"
	"github.com/amirasaad/payoutrouter/pkg/payout"
	"github.com/amirasaad/payoutrouter/pkg/repository"
	"github.com/amirasaad/payoutrouter/pkg/repository/transaction"
	"github.com/google/uuid"
)

// Status classifies a processed delivery.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusIgnored   Status = "ignored"
	StatusDuplicate Status = "duplicate"
)

// TransferStatus classifies one transfer of a delivery.
type TransferStatus string

const (
	TransferRouted          TransferStatus = "routed"
	TransferAlreadyRecorded TransferStatus = "already_recorded"
)

// transactionNamespace seeds the deterministic transaction ids, so a
// redelivered message maps onto the ledger rows of its first delivery.
var transactionNamespace = uuid.MustParse("6f1c3b0e-4c1a-5d7e-9b1e-2f61d1f0a8c4")

// TransferResult reports how one transfer was handled.
type TransferResult struct {
	TransactionID uuid.UUID        `json:"transaction_id"`
	Reference     string           `json:"reference"`
	Recipient     string           `json:"recipient"`
	Amount        string           `json:"amount"`
	Currency      string           `json:"currency"`
	Status        TransferStatus   `json:"status"`
	Summary       payout.Summary   `json:"summary"`
	Payouts       []payout.Outcome `json:"payouts"`
	LedgerError   string           `json:"ledger_error,omitempty"`
}

// Result is the outcome of Process.
type Result struct {
	Status    Status           `json:"status"`
	MessageID string           `json:"message_id,omitempty"`
	Transfers []TransferResult `json:"transfers,omitempty"`
}

// Deps are the collaborators of the service.
type Deps struct {
	Secret  []byte
	Router  *payout.Router
	Ledger  transaction.Repository
	Tracker cache.DeliveryTracker
	Bus     eventbus.Bus
	Logger  *slog.Logger
	Now     func() time.Time
}

// Service processes webhook deliveries. It is safe for concurrent use.
type Service struct {
	secret  []byte
	router  *payout.Router
	ledger  transaction.Repository
	tracker cache.DeliveryTracker
	bus     eventbus.Bus
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Service with the provided dependencies.
func New(deps Deps) (*Service, error) {
	switch {
	case len(deps.Secret) == 0:
		return nil, &payout.ConfigurationError{Field: "WEBHOOK_SHARED_SECRET", Reason: "must be set"}
	case deps.Router == nil:
		return nil, &payout.ConfigurationError{Field: "router", Reason: "payout router is required"}
	case deps.Ledger == nil:
		return nil, &payout.ConfigurationError{Field: "ledger", Reason: "transaction repository is required"}
	case deps.Tracker == nil:
		return nil, &payout.ConfigurationError{Field: "tracker", Reason: "delivery tracker is required"}
	case deps.Bus == nil:
		return nil, &payout.ConfigurationError{Field: "bus", Reason: "event bus is required"}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		secret:  deps.Secret,
		router:  deps.Router,
		ledger:  deps.Ledger,
		tracker: deps.Tracker,
		bus:     deps.Bus,
		logger:  deps.Logger.With("service", "ingest"),
		now:     deps.Now,
	}, nil
}

// Process handles one webhook delivery.
//
// A bad signature returns iso20022.ErrInvalidSignature and a payload that is
// not a valid credit-transfer message returns iso20022.ErrMalformedMessage.
// A transfer the router refuses (non-positive amount, unusable currency)
// fails the whole delivery with payout.ErrInvalidInput. In all three cases
// nothing is recorded or paid.
//
// An unexpected routing fault returns the partial result together with a
// *payout.PartialExecutionError.
func (s *Service) Process(ctx context.Context, payload []byte, signature string) (*Result, error) {
	if err := iso20022.VerifySignature(s.secret, payload, signature); err != nil {
		s.logger.Warn("rejected webhook delivery", "error", err)
		return nil, err
	}

	msg, err := iso20022.Parse(payload)
	if err != nil {
		return nil, err
	}
	transfers, err := msg.Transfers()
	if err != nil {
		return nil, err
	}

	result := &Result{MessageID: msg.MessageID()}
	log := s.logger.With("message_id", result.MessageID, "transfers", len(transfers))
	if len(transfers) == 0 {
		log.Info("webhook carried no transfers")
		result.Status = StatusIgnored
		return result, nil
	}
	for i, t := range transfers {
		if _, err := s.router.Plan(t.Amount, string(t.Currency)); err != nil {
			return nil, fmt.Errorf("transfer %d (%s): %w", i, t.Reference, err)
		}
	}

	digest := sha256.Sum256(payload)
	deliveryKey := hex.EncodeToString(digest[:])

	duplicate, err := s.tracker.Do(ctx, deliveryKey, func(ctx context.Context) (bool, error) {
		return s.processTransfers(ctx, log, deliveryKey, result, transfers)
	})
	if duplicate && err == nil {
		log.Info("🔁 [SKIP] Webhook delivery already processed", "delivery", deliveryKey)
		return &Result{Status: StatusDuplicate, MessageID: result.MessageID}, nil
	}
	if err != nil {
		// Waiters that shared another run's error hold no transfers of their own.
		var partial *payout.PartialExecutionError
		if errors.As(err, &partial) && len(result.Transfers) > 0 {
			result.Status = StatusProcessed
			return result, err
		}
		return nil, err
	}
	result.Status = StatusProcessed
	return result, nil
}

// processTransfers records and routes every transfer in order. It commits
// only when every transfer was handled; after any failure the delivery stays
// open so a redelivery can finish the remaining transfers, while transfers
// already in the ledger come back as already_recorded.
func (s *Service) processTransfers(
	ctx context.Context,
	log *slog.Logger,
	deliveryKey string,
	result *Result,
	transfers []iso20022.Transfer,
) (bool, error) {
	for i, t := range transfers {
		txID := uuid.NewSHA1(transactionNamespace, []byte(deliveryKey+":"+strconv.Itoa(i)))
		tr := TransferResult{
			TransactionID: txID,
			Reference:     t.Reference,
			Recipient:     t.Recipient,
			Amount:        t.Amount.String(),
			Currency:      string(t.Currency),
			Payouts:       []payout.Outcome{},
		}
		tlog := log.With("transaction_id", txID, "reference", t.Reference)

		err := s.ledger.Create(ctx, dto.TransactionCreate{
			ID:        txID,
			Reference: t.Reference,
			Recipient: t.Recipient,
			Amount:    t.Amount,
			Currency:  string(t.Currency),
		})
		if errors.Is(err, repository.ErrAlreadyExists) {
			tlog.Warn("transfer already recorded by an earlier delivery; not routing it again")
			tr.Status = TransferAlreadyRecorded
			tr.Summary = payout.SummaryNone
			result.Transfers = append(result.Transfers, tr)
			continue
		}
		if err != nil {
			tlog.Error("failed to record transfer", "error", err)
			return false, fmt.Errorf("record transfer %d: %w", i, err)
		}

		outcomes, routeErr := s.router.Route(ctx, t.Amount, string(t.Currency), payout.WithIdempotencyKey(txID.String()))
		var partial *payout.PartialExecutionError
		if errors.As(routeErr, &partial) {
			outcomes = partial.Outcomes
		}
		tr.Status = TransferRouted
		tr.Payouts = append(tr.Payouts, outcomes...)
		tr.Summary = payout.Summarize(outcomes)
		tlog.Info("💸 Transfer routed", "legs", len(outcomes), "summary", tr.Summary)

		if err := s.ledger.RecordPayouts(ctx, txID, payoutsToDTO(outcomes)); err != nil {
			tlog.Error("failed to record payout legs; processor state is authoritative", "error", err)
			tr.LedgerError = err.Error()
		}
		s.publish(ctx, tlog, result.MessageID, t, tr)
		result.Transfers = append(result.Transfers, tr)

		if routeErr != nil {
			return false, fmt.Errorf("route transfer %d: %w", i, routeErr)
		}
	}
	return true, nil
}

func (s *Service) publish(
	ctx context.Context,
	log *slog.Logger,
	messageID string,
	t iso20022.Transfer,
	tr TransferResult,
) {
	for _, e := range transferEvents(messageID, t, tr, s.now()) {
		if err := s.bus.Emit(ctx, e); err != nil {
			log.Warn("failed to publish event", "event_type", e.Type(), "error", err)
		}
	}
}

func payoutsToDTO(outcomes []payout.Outcome) []dto.PayoutCreate {
	out := make([]dto.PayoutCreate, 0, len(outcomes))
	for _, o := range outcomes {
		p := dto.PayoutCreate{
			Leg:              o.Leg,
			AmountMinorUnits: o.Instruction.AmountMinorUnits,
			Currency:         o.Instruction.Currency,
			Destination:      o.Instruction.Destination,
		}
		if o.Succeeded() {
			p.PayoutID = o.Receipt.ID
			p.Status = o.Receipt.Status
		} else {
			p.Status = "failed"
			if o.Err != nil {
				p.ErrorCode = o.Err.Code
				p.Error = o.Err.Message
			}
		}
		out = append(out, p)
	}
	return out
}
