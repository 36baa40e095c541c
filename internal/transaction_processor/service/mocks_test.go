package service

import (
	"context"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/ledger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockNoticeValidator struct {
	mock.Mock
}

func (m *MockNoticeValidator) Validate(ctx context.Context, notice *shared.SettlementNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

type MockDepositSettler struct {
	mock.Mock
}

func (m *MockDepositSettler) ConfirmDeposit(ctx context.Context, depositID uuid.UUID, correlationID string) (*ledger.DepositConfirmation, error) {
	args := m.Called(ctx, depositID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.DepositConfirmation), args.Error(1)
}

func (m *MockDepositSettler) FailDeposit(ctx context.Context, depositID uuid.UUID, reason, correlationID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, depositID, reason, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) ProcessNotice(ctx context.Context, notice *shared.SettlementNotice) (Result, error) {
	args := m.Called(ctx, notice)
	return args.Get(0).(Result), args.Error(1)
}
