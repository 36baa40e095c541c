package card

import (
	"strings"
	"time"

	"github.com/cardledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card represents a stored-value card and its spendable balance
type Card struct {
	ID        uuid.UUID         `json:"id"`
	OwnerID   string            `json:"owner_id"`
	Balance   decimal.Decimal   `json:"balance"`
	Currency  string            `json:"currency"`
	Status    shared.CardStatus `json:"status"`
	Version   int               `json:"version"` // For optimistic locking
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewCard issues an active card with the given opening balance
func NewCard(ownerID string, initialBalance decimal.Decimal, currency string) (*Card, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, shared.ValidationError{Field: "owner_id", Reason: "is required"}
	}
	code, err := shared.NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	if initialBalance.IsNegative() {
		return nil, shared.ValidationError{Field: "initial_balance", Reason: "must not be negative"}
	}
	if !initialBalance.Equal(initialBalance.Truncate(shared.MoneyScale)) {
		return nil, shared.ValidationError{Field: "initial_balance", Reason: "must have at most 2 decimal places"}
	}

	now := time.Now().UTC()
	return &Card{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Balance:   initialBalance,
		Currency:  code,
		Status:    shared.CardStatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsActive reports whether the card accepts new movements
func (c *Card) IsActive() bool {
	return c.Status == shared.CardStatusActive
}

// ApplyDelta adds a signed delta to the balance. A result below zero is rejected
// and leaves the card unchanged.
func (c *Card) ApplyDelta(delta decimal.Decimal, now time.Time) error {
	next := c.Balance.Add(delta)
	if next.IsNegative() {
		return shared.InsufficientFundsError{CardID: c.ID, Balance: c.Balance, Required: delta.Neg()}
	}

	c.Balance = next
	c.UpdatedAt = now
	c.Version++
	return nil
}

// CanDebit checks if the balance covers amount
func (c *Card) CanDebit(amount decimal.Decimal) bool {
	return c.Balance.GreaterThanOrEqual(amount)
}

// Deactivate blocks further movements on the card
func (c *Card) Deactivate(now time.Time) error {
	if !c.IsActive() {
		return shared.InvalidStateError{
			Resource: "card",
			ID:       c.ID.String(),
			State:    string(c.Status),
			Reason:   "card is already inactive",
		}
	}

	c.Status = shared.CardStatusInactive
	c.UpdatedAt = now
	c.Version++
	return nil
}
