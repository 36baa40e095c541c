package service

import (
	"context"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardService defines the interface for card registry operations
type CardService interface {
	// IssueCard opens an active card; initialBalance may be zero
	IssueCard(ctx context.Context, ownerID, currency string, initialBalance decimal.Decimal) (*card.Card, error)

	// GetCard returns shared.NotFoundError if the card doesn't exist
	GetCard(ctx context.Context, id uuid.UUID) (*card.Card, error)

	// DeactivateCard returns shared.InvalidStateError if the card is already inactive
	DeactivateCard(ctx context.Context, id uuid.UUID) (*card.Card, error)
}

// LedgerService executes balance-affecting operations; *ledger.Engine implements it
type LedgerService interface {
	CreateDeposit(ctx context.Context, req ledger.DepositRequest) (*ledger.DepositReceipt, error)
	ConfirmDeposit(ctx context.Context, depositID uuid.UUID, correlationID string) (*ledger.DepositConfirmation, error)
	FailDeposit(ctx context.Context, depositID uuid.UUID, reason, correlationID string) (*transaction.Transaction, error)
	Withdraw(ctx context.Context, req ledger.WithdrawalRequest) (*ledger.WithdrawalReceipt, error)
	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferReceipt, error)
}

// TransactionService defines the interface for transaction queries
type TransactionService interface {
	// GetTransactionByID returns shared.NotFoundError if the record doesn't exist
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// GetTransactionsByCardID returns one page of a card's history, newest first,
	// and the total number of records
	GetTransactionsByCardID(ctx context.Context, cardID uuid.UUID, page, perPage int) ([]*transaction.Transaction, int64, error)
}

// CardLedger is the part of the engine the card and query services read through
type CardLedger interface {
	IssueCard(ctx context.Context, ownerID, currency string, initialBalance decimal.Decimal) (*card.Card, error)
	GetCard(ctx context.Context, id uuid.UUID) (*card.Card, error)
	DeactivateCard(ctx context.Context, id uuid.UUID) (*card.Card, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
}
