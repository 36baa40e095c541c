package ledger

import (
	"context"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRequest moves funds between two cards of the same currency
type TransferRequest struct {
	SourceCardID    uuid.UUID
	RecipientCardID uuid.UUID
	Amount          decimal.Decimal
	RecipientLabel  string
	CorrelationID   string
}

type TransferReceipt struct {
	TransferID          uuid.UUID                `json:"transfer_id"`
	SourceCardID        uuid.UUID                `json:"source_card_id"`
	RecipientCardID     uuid.UUID                `json:"recipient_card_id"`
	Amount              decimal.Decimal          `json:"amount"`
	NewBalance          decimal.Decimal          `json:"new_balance"`
	RecipientNewBalance decimal.Decimal          `json:"recipient_new_balance"`
	Status              shared.TransactionStatus `json:"status"`
	Reference           string                   `json:"reference"`
}

// Transfer debits the source and credits the recipient in one unit. Both cards
// are locked in canonical order before either balance is read.
func (e *Engine) Transfer(ctx context.Context, req TransferRequest) (receipt *TransferReceipt, err error) {
	defer func() { e.observer.ObserveOperation(OpTransfer, err) }()
	logger := e.loggerFor(req.CorrelationID)

	if err := shared.ValidateAmount("amount", req.Amount, e.limits.TransferMax); err != nil {
		return nil, err
	}
	if req.SourceCardID == req.RecipientCardID {
		return nil, shared.ValidationError{Field: "recipient_card_id", Reason: "must differ from the source card"}
	}

	var outgoing *transaction.Transaction
	var sourceBalance, recipientBalance decimal.Decimal
	err = e.store.ExecuteTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		cards, err := uow.LockCards(ctx, SortIDs([]uuid.UUID{req.SourceCardID, req.RecipientCardID})...)
		if err != nil {
			return err
		}
		source, err := requireCard(cards, req.SourceCardID)
		if err != nil {
			return err
		}
		recipient, err := requireCard(cards, req.RecipientCardID)
		if err != nil {
			return err
		}
		if err := requireActive(source); err != nil {
			return err
		}
		if err := requireActive(recipient); err != nil {
			return err
		}
		if source.Currency != recipient.Currency {
			return shared.ValidationError{Field: "recipient_card_id", Reason: "recipient card currency differs from source card"}
		}

		source, err = ApplyBalanceDelta(ctx, uow, req.SourceCardID, req.Amount.Neg(), SufficientFunds)
		if err != nil {
			return err
		}
		recipient, err = ApplyBalanceDelta(ctx, uow, req.RecipientCardID, req.Amount, nil)
		if err != nil {
			return err
		}
		sourceBalance = source.Balance
		recipientBalance = recipient.Balance

		var incoming *transaction.Transaction
		outgoing, incoming = transaction.NewTransferPair(source, recipient, req.Amount, req.RecipientLabel, e.now())
		if err := uow.InsertTransaction(ctx, outgoing); err != nil {
			return err
		}
		return uow.InsertTransaction(ctx, incoming)
	})
	if err != nil {
		logger.Warn("Transfer rejected",
			"source_card_id", req.SourceCardID.String(),
			"recipient_card_id", req.RecipientCardID.String(),
			"error", err,
		)
		return nil, err
	}

	logger.Info("Transfer completed",
		"transfer_id", outgoing.ID.String(),
		"source_card_id", req.SourceCardID.String(),
		"recipient_card_id", req.RecipientCardID.String(),
		"amount", req.Amount.StringFixed(2),
	)

	return &TransferReceipt{
		TransferID:          outgoing.ID,
		SourceCardID:        req.SourceCardID,
		RecipientCardID:     req.RecipientCardID,
		Amount:              req.Amount,
		NewBalance:          sourceBalance,
		RecipientNewBalance: recipientBalance,
		Status:              outgoing.Status,
		Reference:           outgoing.Reference,
	}, nil
}
