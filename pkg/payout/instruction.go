package payout

import (
	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	// MethodStandard is the only payout speed this service requests.
	MethodStandard = "standard"
	// DefaultDescriptor is the statement descriptor shown on the receiving account.
	DefaultDescriptor = "PrivateLedgerPayout"
	// MaxDescriptorLength is the processor limit for statement descriptors.
	MaxDescriptorLength = 22
)

// Instruction is one normalized payout request for the gateway.
type Instruction struct {
	AmountMinorUnits int64  `json:"amount"`
	Currency         string `json:"currency"`
	Method           string `json:"method"`
	Destination      string `json:"destination,omitempty"`
	Descriptor       string `json:"statement_descriptor"`

	// IdempotencyKey is forwarded to the processor when set. It is not part
	// of the routing decision.
	IdempotencyKey string `json:"-"`
}

func (i Instruction) withIdempotencyKey(key string) Instruction {
	i.IdempotencyKey = key
	return i
}

// Builder turns a major-unit amount into an Instruction.
type Builder struct {
	rounding   money.RoundingPolicy
	descriptor string
}

// NewBuilder returns a Builder. Empty arguments select the defaults.
func NewBuilder(rounding money.RoundingPolicy, descriptor string) *Builder {
	if rounding == "" {
		rounding = money.DefaultRoundingPolicy
	}
	if descriptor == "" {
		descriptor = DefaultDescriptor
	}
	return &Builder{rounding: rounding, descriptor: descriptor}
}

// Build is a pure transform; amount must already be validated as positive.
// The destination is left empty when none is configured so that the gateway
// falls back to the default linked account.
func (b *Builder) Build(amount decimal.Decimal, code money.Code, destination string) Instruction {
	return Instruction{
		AmountMinorUnits: money.ToMinorUnits(amount, b.rounding),
		Currency:         code.Wire(),
		Method:           MethodStandard,
		Destination:      destination,
		Descriptor:       b.descriptor,
	}
}

// Rounding returns the configured rounding policy.
func (b *Builder) Rounding() money.RoundingPolicy {
	return b.rounding
}
