package ledger

import (
	"context"
	"time"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Precondition is checked against a locked card before delta is applied
type Precondition func(c *card.Card, delta decimal.Decimal) error

// SufficientFunds rejects debits larger than the balance. Equality passes.
func SufficientFunds(c *card.Card, delta decimal.Decimal) error {
	if delta.IsNegative() && !c.CanDebit(delta.Neg()) {
		return shared.InsufficientFundsError{CardID: c.ID, Balance: c.Balance, Required: delta.Neg()}
	}
	return nil
}

// CardActive rejects movements on deactivated cards
func CardActive(c *card.Card, _ decimal.Decimal) error {
	if !c.IsActive() {
		return shared.InvalidStateError{
			Resource: "card",
			ID:       c.ID.String(),
			State:    string(c.Status),
			Reason:   "card is not active",
		}
	}
	return nil
}

// All composes preconditions, stopping at the first failure
func All(preconditions ...Precondition) Precondition {
	return func(c *card.Card, delta decimal.Decimal) error {
		for _, pre := range preconditions {
			if err := pre(c, delta); err != nil {
				return err
			}
		}
		return nil
	}
}

// ApplyBalanceDelta is the only path through which a card balance changes.
// It locks cardID within uow, checks pre, applies delta and persists the card.
func ApplyBalanceDelta(ctx context.Context, uow UnitOfWork, cardID uuid.UUID, delta decimal.Decimal, pre Precondition) (*card.Card, error) {
	cards, err := uow.LockCards(ctx, cardID)
	if err != nil {
		return nil, err
	}
	c, ok := cards[cardID]
	if !ok {
		return nil, shared.NotFoundError{Resource: "card", ID: cardID.String()}
	}

	if pre != nil {
		if err := pre(c, delta); err != nil {
			return nil, err
		}
	}

	if err := c.ApplyDelta(delta, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := uow.SaveCard(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
