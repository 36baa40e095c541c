package transaction

import (
	"strings"
	"time"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const resourceName = "transaction"

// Transaction is an immutable-once-terminal record of one movement on a card.
// Amount is the signed net effect on CardID.
type Transaction struct {
	ID                 uuid.UUID                `json:"id"`
	CardID             uuid.UUID                `json:"card_id"`
	OwnerID            string                   `json:"owner_id"`
	Type               shared.TransactionType   `json:"type"`
	Amount             decimal.Decimal          `json:"amount"`
	Currency           string                   `json:"currency"`
	Status             shared.TransactionStatus `json:"status"`
	Fee                decimal.Decimal          `json:"fee"`
	ParentID           *uuid.UUID               `json:"parent_id,omitempty"`
	CounterpartyCardID *uuid.UUID               `json:"counterparty_card_id,omitempty"`
	CounterpartyLabel  string                   `json:"counterparty_label,omitempty"`
	Method             string                   `json:"method,omitempty"`
	MethodDetails      map[string]string        `json:"method_details,omitempty"`
	Reference          string                   `json:"reference"`
	ConfirmationID     string                   `json:"confirmation_id,omitempty"`
	FailureReason      string                   `json:"failure_reason,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	ConfirmedAt        *time.Time               `json:"confirmed_at,omitempty"`
}

// ReferenceFor derives the human-facing reference of a record from its id
func ReferenceFor(prefix string, id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return prefix + "-" + strings.ToUpper(hex[:8])
}

// NewPendingDeposit records an inbound escrow deposit awaiting confirmation
func NewPendingDeposit(c *card.Card, amount decimal.Decimal, method string, details map[string]string, now time.Time) *Transaction {
	id := uuid.New()
	return &Transaction{
		ID:            id,
		CardID:        c.ID,
		OwnerID:       c.OwnerID,
		Type:          shared.TransactionTypeDeposit,
		Amount:        amount,
		Currency:      c.Currency,
		Status:        shared.TransactionStatusPending,
		Fee:           decimal.Zero,
		Method:        method,
		MethodDetails: details,
		Reference:     ReferenceFor("DEP", id),
		CreatedAt:     now,
	}
}

// NewWithdrawal records a completed payout of amount; fee is informational
func NewWithdrawal(c *card.Card, amount, fee decimal.Decimal, method string, details map[string]string, now time.Time) *Transaction {
	id := uuid.New()
	return &Transaction{
		ID:            id,
		CardID:        c.ID,
		OwnerID:       c.OwnerID,
		Type:          shared.TransactionTypeWithdrawal,
		Amount:        amount.Neg(),
		Currency:      c.Currency,
		Status:        shared.TransactionStatusCompleted,
		Fee:           fee,
		Method:        method,
		MethodDetails: details,
		Reference:     ReferenceFor("WDR", id),
		CreatedAt:     now,
		ConfirmedAt:   &now,
	}
}

// NewFee records the fee charged for parent
func NewFee(parent *Transaction, fee decimal.Decimal, now time.Time) *Transaction {
	id := uuid.New()
	parentID := parent.ID
	return &Transaction{
		ID:          id,
		CardID:      parent.CardID,
		OwnerID:     parent.OwnerID,
		Type:        shared.TransactionTypeFee,
		Amount:      fee.Neg(),
		Currency:    parent.Currency,
		Status:      shared.TransactionStatusCompleted,
		Fee:         decimal.Zero,
		ParentID:    &parentID,
		Method:      parent.Method,
		Reference:   ReferenceFor("FEE", id),
		CreatedAt:   now,
		ConfirmedAt: &now,
	}
}

// NewTransferPair records the outgoing row on source and the linked incoming row on recipient
func NewTransferPair(source, recipient *card.Card, amount decimal.Decimal, label string, now time.Time) (*Transaction, *Transaction) {
	outID := uuid.New()
	inID := uuid.New()
	sourceID := source.ID
	recipientID := recipient.ID
	reference := ReferenceFor("TRF", outID)

	outgoing := &Transaction{
		ID:                 outID,
		CardID:             source.ID,
		OwnerID:            source.OwnerID,
		Type:               shared.TransactionTypeTransfer,
		Amount:             amount.Neg(),
		Currency:           source.Currency,
		Status:             shared.TransactionStatusCompleted,
		Fee:                decimal.Zero,
		CounterpartyCardID: &recipientID,
		CounterpartyLabel:  label,
		Reference:          reference,
		CreatedAt:          now,
		ConfirmedAt:        &now,
	}
	incoming := &Transaction{
		ID:                 inID,
		CardID:             recipient.ID,
		OwnerID:            recipient.OwnerID,
		Type:               shared.TransactionTypeTransfer,
		Amount:             amount,
		Currency:           recipient.Currency,
		Status:             shared.TransactionStatusCompleted,
		Fee:                decimal.Zero,
		ParentID:           &outID,
		CounterpartyCardID: &sourceID,
		Reference:          reference,
		CreatedAt:          now,
		ConfirmedAt:        &now,
	}
	return outgoing, incoming
}

// Complete moves a pending record to completed
func (t *Transaction) Complete(confirmationID string, now time.Time) error {
	switch t.Status {
	case shared.TransactionStatusCompleted:
		return shared.ConflictError{Resource: string(t.Type), ID: t.ID.String(), Reason: "already completed"}
	case shared.TransactionStatusFailed:
		return t.invalidState("failed records cannot be completed")
	}

	t.Status = shared.TransactionStatusCompleted
	t.ConfirmationID = confirmationID
	t.ConfirmedAt = &now
	return nil
}

// Fail moves a pending record to failed
func (t *Transaction) Fail(reason string, now time.Time) error {
	switch t.Status {
	case shared.TransactionStatusFailed:
		return shared.ConflictError{Resource: string(t.Type), ID: t.ID.String(), Reason: "already failed"}
	case shared.TransactionStatusCompleted:
		return t.invalidState("completed records cannot be failed")
	}

	t.Status = shared.TransactionStatusFailed
	t.FailureReason = reason
	t.ConfirmedAt = &now
	return nil
}

// IsDeposit checks the record type
func (t *Transaction) IsDeposit() bool {
	return t.Type == shared.TransactionTypeDeposit
}

func (t *Transaction) invalidState(reason string) error {
	return shared.InvalidStateError{
		Resource: resourceName,
		ID:       t.ID.String(),
		State:    string(t.Status),
		Reason:   reason,
	}
}
