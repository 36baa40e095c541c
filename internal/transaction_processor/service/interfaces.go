package service

import (
	"context"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/ledger"
	"github.com/google/uuid"
)

// Result describes what applying a settlement notice did to the ledger
type Result string

const (
	ResultApplied   Result = "applied"
	ResultDuplicate Result = "duplicate"
)

// SettlementService applies escrow settlement notices to pending deposits.
// A returned error is either terminal (the notice can never apply) or
// retryable per shared.IsRetryable.
type SettlementService interface {
	ProcessNotice(ctx context.Context, notice *shared.SettlementNotice) (Result, error)
}

// NoticeValidator rejects notices that can never be applied
type NoticeValidator interface {
	Validate(ctx context.Context, notice *shared.SettlementNotice) error
}

// DepositSettler terminalizes pending deposits; ledger.Engine satisfies it
type DepositSettler interface {
	ConfirmDeposit(ctx context.Context, depositID uuid.UUID, correlationID string) (*ledger.DepositConfirmation, error)
	FailDeposit(ctx context.Context, depositID uuid.UUID, reason, correlationID string) (*transaction.Transaction, error)
}
