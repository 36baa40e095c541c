package ledger

import (
	"context"

	"github.com/cardledger/internal/domain/payment"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalRequest asks to pay out card funds through an external method
type WithdrawalRequest struct {
	CardID        uuid.UUID
	Amount        decimal.Decimal
	Details       payment.Details
	CorrelationID string
}

type WithdrawalReceipt struct {
	WithdrawalID           uuid.UUID                `json:"withdrawal_id"`
	CardID                 uuid.UUID                `json:"card_id"`
	Amount                 decimal.Decimal          `json:"amount"`
	Fee                    decimal.Decimal          `json:"fee"`
	TotalDeducted          decimal.Decimal          `json:"total_deducted"`
	NewBalance             decimal.Decimal          `json:"new_balance"`
	Method                 payment.Method           `json:"method"`
	Status                 shared.TransactionStatus `json:"status"`
	Reference              string                   `json:"reference"`
	ProcessingInstructions string                   `json:"processing_instructions"`
}

// Withdraw debits amount plus the method fee in one unit and records the
// withdrawal and its fee
func (e *Engine) Withdraw(ctx context.Context, req WithdrawalRequest) (receipt *WithdrawalReceipt, err error) {
	defer func() { e.observer.ObserveOperation(OpWithdrawal, err) }()
	logger := e.loggerFor(req.CorrelationID)

	if err := shared.ValidateAmount("amount", req.Amount, e.limits.WithdrawalMax); err != nil {
		return nil, err
	}
	if req.Details == nil {
		return nil, shared.ValidationError{Field: "method", Reason: "is required"}
	}
	if err := req.Details.Validate(); err != nil {
		return nil, err
	}

	method := req.Details.Method()
	fee := e.fees.Calculate(method, req.Amount)
	total := req.Amount.Add(fee)

	var withdrawal *transaction.Transaction
	var newBalance decimal.Decimal
	err = e.store.ExecuteTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		c, err := ApplyBalanceDelta(ctx, uow, req.CardID, total.Neg(), All(CardActive, SufficientFunds))
		if err != nil {
			return err
		}
		newBalance = c.Balance

		now := e.now()
		withdrawal = transaction.NewWithdrawal(c, req.Amount, fee, string(method), payment.Metadata(req.Details), now)
		if err := uow.InsertTransaction(ctx, withdrawal); err != nil {
			return err
		}
		if fee.IsPositive() {
			return uow.InsertTransaction(ctx, transaction.NewFee(withdrawal, fee, now))
		}
		return nil
	})
	if err != nil {
		logger.Warn("Withdrawal rejected", "card_id", req.CardID.String(), "error", err)
		return nil, err
	}

	logger.Info("Withdrawal completed",
		"withdrawal_id", withdrawal.ID.String(),
		"card_id", req.CardID.String(),
		"amount", req.Amount.StringFixed(2),
		"fee", fee.StringFixed(2),
	)

	return &WithdrawalReceipt{
		WithdrawalID:           withdrawal.ID,
		CardID:                 req.CardID,
		Amount:                 req.Amount,
		Fee:                    fee,
		TotalDeducted:          total,
		NewBalance:             newBalance,
		Method:                 method,
		Status:                 withdrawal.Status,
		Reference:              withdrawal.Reference,
		ProcessingInstructions: e.instructions.WithdrawalInstructions(withdrawal, req.Details),
	}, nil
}
