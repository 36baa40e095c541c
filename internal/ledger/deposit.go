package ledger

import (
	"context"

	"github.com/cardledger/internal/domain/payment"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositRequest asks to fund a card through an external escrow channel
type DepositRequest struct {
	CardID        uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Details       payment.Details
	CorrelationID string
}

// DepositReceipt is returned once the pending deposit is recorded
type DepositReceipt struct {
	DepositID           uuid.UUID                `json:"deposit_id"`
	CardID              uuid.UUID                `json:"card_id"`
	Amount              decimal.Decimal          `json:"amount"`
	Currency            string                   `json:"currency"`
	Method              payment.Method           `json:"method"`
	Status              shared.TransactionStatus `json:"status"`
	Reference           string                   `json:"reference"`
	PaymentInstructions string                   `json:"payment_instructions"`
}

// DepositConfirmation is returned when escrow funds are credited
type DepositConfirmation struct {
	ConfirmationID string                   `json:"confirmation_id"`
	DepositID      uuid.UUID                `json:"deposit_id"`
	CardID         uuid.UUID                `json:"card_id"`
	NewBalance     decimal.Decimal          `json:"new_balance"`
	Status         shared.TransactionStatus `json:"status"`
}

// CreateDeposit records a pending deposit. The balance is untouched until ConfirmDeposit.
func (e *Engine) CreateDeposit(ctx context.Context, req DepositRequest) (receipt *DepositReceipt, err error) {
	defer func() { e.observer.ObserveOperation(OpDepositCreate, err) }()
	logger := e.loggerFor(req.CorrelationID)

	if err := shared.ValidateAmount("amount", req.Amount, e.limits.DepositMax); err != nil {
		return nil, err
	}
	currency, err := shared.NormalizeCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if req.Details == nil {
		return nil, shared.ValidationError{Field: "method", Reason: "is required"}
	}
	if err := req.Details.Validate(); err != nil {
		return nil, err
	}

	var deposit *transaction.Transaction
	err = e.store.ExecuteTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		cards, err := uow.LockCards(ctx, req.CardID)
		if err != nil {
			return err
		}
		c, err := requireCard(cards, req.CardID)
		if err != nil {
			return err
		}
		if err := requireActive(c); err != nil {
			return err
		}
		if c.Currency != currency {
			return shared.ValidationError{Field: "currency", Reason: "must match card currency " + c.Currency}
		}

		deposit = transaction.NewPendingDeposit(c, req.Amount, string(req.Details.Method()), payment.Metadata(req.Details), e.now())
		return uow.InsertTransaction(ctx, deposit)
	})
	if err != nil {
		logger.Warn("Deposit rejected", "card_id", req.CardID.String(), "error", err)
		return nil, err
	}

	logger.Info("Deposit pending", "deposit_id", deposit.ID.String(), "card_id", req.CardID.String(), "reference", deposit.Reference)

	return &DepositReceipt{
		DepositID:           deposit.ID,
		CardID:              deposit.CardID,
		Amount:              deposit.Amount,
		Currency:            deposit.Currency,
		Method:              req.Details.Method(),
		Status:              deposit.Status,
		Reference:           deposit.Reference,
		PaymentInstructions: e.instructions.DepositInstructions(deposit, req.Details),
	}, nil
}

// ConfirmDeposit completes a pending deposit and credits its card exactly once.
// A repeated confirmation returns ConflictError without touching the balance.
func (e *Engine) ConfirmDeposit(ctx context.Context, depositID uuid.UUID, correlationID string) (confirmation *DepositConfirmation, err error) {
	defer func() { e.observer.ObserveOperation(OpDepositConfirm, err) }()
	logger := e.loggerFor(correlationID)

	err = e.store.ExecuteTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		deposit, err := uow.LockTransaction(ctx, depositID)
		if err != nil {
			return err
		}
		if !deposit.IsDeposit() {
			return shared.InvalidStateError{
				Resource: "transaction",
				ID:       depositID.String(),
				State:    string(deposit.Type),
				Reason:   "only deposits can be confirmed",
			}
		}

		confirmationID := transaction.ReferenceFor("CNF", uuid.New())
		if err := deposit.Complete(confirmationID, e.now()); err != nil {
			return err
		}

		c, err := ApplyBalanceDelta(ctx, uow, deposit.CardID, deposit.Amount, nil)
		if err != nil {
			return err
		}
		if err := uow.UpdateTransaction(ctx, deposit); err != nil {
			return err
		}

		confirmation = &DepositConfirmation{
			ConfirmationID: confirmationID,
			DepositID:      deposit.ID,
			CardID:         c.ID,
			NewBalance:     c.Balance,
			Status:         deposit.Status,
		}
		return nil
	})
	if err != nil {
		logger.Warn("Deposit confirmation rejected", "deposit_id", depositID.String(), "error", err)
		return nil, err
	}

	logger.Info("Deposit confirmed",
		"deposit_id", depositID.String(),
		"card_id", confirmation.CardID.String(),
		"confirmation_id", confirmation.ConfirmationID,
	)
	return confirmation, nil
}

// FailDeposit terminalizes a pending deposit whose escrow funds were rejected
func (e *Engine) FailDeposit(ctx context.Context, depositID uuid.UUID, reason, correlationID string) (deposit *transaction.Transaction, err error) {
	defer func() { e.observer.ObserveOperation(OpDepositFail, err) }()
	logger := e.loggerFor(correlationID)

	if reason == "" {
		reason = "rejected by escrow channel"
	}

	err = e.store.ExecuteTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		locked, err := uow.LockTransaction(ctx, depositID)
		if err != nil {
			return err
		}
		if !locked.IsDeposit() {
			return shared.InvalidStateError{
				Resource: "transaction",
				ID:       depositID.String(),
				State:    string(locked.Type),
				Reason:   "only deposits can be failed",
			}
		}
		if err := locked.Fail(reason, e.now()); err != nil {
			return err
		}
		deposit = locked
		return uow.UpdateTransaction(ctx, locked)
	})
	if err != nil {
		logger.Warn("Deposit failure rejected", "deposit_id", depositID.String(), "error", err)
		return nil, err
	}

	logger.Info("Deposit failed", "deposit_id", depositID.String(), "reason", reason)
	return deposit, nil
}
