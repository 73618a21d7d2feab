// Package iso20022 parses the customer credit-transfer initiation webhooks
// (pain.001 style) delivered by the bank and extracts the transfers to pay out.
package iso20022

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirasaad/payoutrouter/pkg/money"
	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrMalformedMessage is returned when the payload is not a credit-transfer document.
var ErrMalformedMessage = errors.New("malformed credit transfer message")

var validate = validator.New()

// Message is the webhook envelope.
type Message struct {
	Document *Document `json:"Document" validate:"required"`
}

// Document wraps the customer credit-transfer initiation.
type Document struct {
	CstmrCdtTrfInitn *CustomerCreditTransferInitiation `json:"CstmrCdtTrfInitn" validate:"required"`
}

// CustomerCreditTransferInitiation holds one or more payment information blocks.
type CustomerCreditTransferInitiation struct {
	GrpHdr *GroupHeader       `json:"GrpHdr,omitempty"`
	PmtInf PaymentInformation `json:"PmtInf" validate:"required,min=1,dive"`
}

// GroupHeader identifies the message.
type GroupHeader struct {
	MsgId   string `json:"MsgId"`
	CreDtTm string `json:"CreDtTm"`
	NbOfTxs string `json:"NbOfTxs"`
}

// PaymentInformation accepts both a single PmtInf object and an array of them.
type PaymentInformation []PaymentInfo

// UnmarshalJSON implements json.Unmarshaler.
func (p *PaymentInformation) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var many []PaymentInfo
		if err := sonic.Unmarshal(data, &many); err != nil {
			return err
		}
		*p = many
		return nil
	}
	var one PaymentInfo
	if err := sonic.Unmarshal(data, &one); err != nil {
		return err
	}
	*p = PaymentInformation{one}
	return nil
}

// PaymentInfo groups credit transfer transactions.
type PaymentInfo struct {
	PmtInfId    string                          `json:"PmtInfId,omitempty"`
	CdtTrfTxInf []CreditTransferTransactionInfo `json:"CdtTrfTxInf" validate:"required,dive"`
}

// CreditTransferTransactionInfo is a single transfer.
type CreditTransferTransactionInfo struct {
	PmtId    *PaymentIdentification `json:"PmtId,omitempty"`
	Amt      Amount                 `json:"Amt" validate:"required"`
	Cdtr     Party                  `json:"Cdtr" validate:"required"`
	CdtrAcct *Account               `json:"CdtrAcct,omitempty"`
	RmtInf   RemittanceInformation  `json:"RmtInf" validate:"required"`
}

// PaymentIdentification carries the end-to-end id.
type PaymentIdentification struct {
	EndToEndId string `json:"EndToEndId"`
}

// Amount holds the instructed amount.
type Amount struct {
	InstdAmt InstructedAmount `json:"InstdAmt" validate:"required"`
}

// InstructedAmount is an amount with its currency, as sent on the wire.
type InstructedAmount struct {
	Ccy   string `json:"Ccy" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// Party identifies the creditor.
type Party struct {
	Nm string `json:"Nm" validate:"required"`
}

// Account is the creditor account.
type Account struct {
	Id struct {
		IBAN string `json:"IBAN,omitempty"`
	} `json:"Id"`
}

// RemittanceInformation carries the unstructured reference.
type RemittanceInformation struct {
	Ustrd string `json:"Ustrd" validate:"required"`
}

// Transfer is the flattened view handed to the ledger and the router.
type Transfer struct {
	Reference string
	Recipient string
	IBAN      string
	Amount    decimal.Decimal
	Currency  money.Code
}

// Parse decodes and validates a webhook payload.
func Parse(payload []byte) (*Message, error) {
	var msg Message
	if err := sonic.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return &msg, nil
}

// MessageID returns the group header message id, if present.
func (m *Message) MessageID() string {
	if m.Document.CstmrCdtTrfInitn.GrpHdr == nil {
		return ""
	}
	return m.Document.CstmrCdtTrfInitn.GrpHdr.MsgId
}

// Transfers flattens every payment information block. The whole message is
// rejected if any transfer has an unparsable amount or currency, so nothing
// is recorded or paid for a partially valid document.
func (m *Message) Transfers() ([]Transfer, error) {
	var transfers []Transfer
	for i, info := range m.Document.CstmrCdtTrfInitn.PmtInf {
		for j, tx := range info.CdtTrfTxInf {
			amount, err := money.ParseAmount(tx.Amt.InstdAmt.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: PmtInf[%d].CdtTrfTxInf[%d]: %v", ErrMalformedMessage, i, j, err)
			}
			code, err := money.ParseCode(tx.Amt.InstdAmt.Ccy)
			if err != nil {
				return nil, fmt.Errorf("%w: PmtInf[%d].CdtTrfTxInf[%d]: %v", ErrMalformedMessage, i, j, err)
			}
			t := Transfer{
				Reference: tx.RmtInf.Ustrd,
				Recipient: tx.Cdtr.Nm,
				Amount:    amount,
				Currency:  code,
			}
			if tx.CdtrAcct != nil {
				t.IBAN = tx.CdtrAcct.Id.IBAN
			}
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}
