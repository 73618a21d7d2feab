package mockpayment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/amirasaad/payoutrouter/pkg/payout"
)

// MockPayoutGateway simulates the payout processor for tests and local development.
//
// Usage:
//   - Every accepted instruction gets a receipt with status "pending".
//   - Resubmitting an idempotency key returns the first receipt, as Stripe does.
//   - RejectCurrency makes every payout in that currency fail with a *payout.GatewayError.
//
// This is NOT for production use.
type MockPayoutGateway struct {
	mu         sync.Mutex
	seq        int
	submitted  []payout.Instruction
	byKey      map[string]*payout.Receipt
	rejections map[string]*payout.GatewayError
}

// NewMockPayoutGateway creates a new instance of MockPayoutGateway.
func NewMockPayoutGateway() *MockPayoutGateway {
	return &MockPayoutGateway{
		byKey:      make(map[string]*payout.Receipt),
		rejections: make(map[string]*payout.GatewayError),
	}
}

// RejectCurrency makes payouts in currency fail with the given code.
func (m *MockPayoutGateway) RejectCurrency(currency, code, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections[strings.ToLower(currency)] = &payout.GatewayError{Code: code, Message: message}
}

// Submit implements payout.Gateway.
func (m *MockPayoutGateway) Submit(ctx context.Context, ins payout.Instruction) (*payout.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if ins.IdempotencyKey != "" {
		if r, ok := m.byKey[ins.IdempotencyKey]; ok {
			copied := *r
			return &copied, nil
		}
	}
	m.submitted = append(m.submitted, ins)

	if rej, ok := m.rejections[ins.Currency]; ok {
		failure := *rej
		return nil, &failure
	}

	m.seq++
	receipt := &payout.Receipt{
		ID:       fmt.Sprintf("po_mock_%d", m.seq),
		Status:   "pending",
		Amount:   ins.AmountMinorUnits,
		Currency: ins.Currency,
	}
	if ins.IdempotencyKey != "" {
		m.byKey[ins.IdempotencyKey] = receipt
	}
	copied := *receipt
	return &copied, nil
}

// Submitted returns the instructions that reached the gateway, in order.
func (m *MockPayoutGateway) Submitted() []payout.Instruction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payout.Instruction(nil), m.submitted...)
}

var _ payout.Gateway = (*MockPayoutGateway)(nil)
