package components

import (
	"context"
	"log/slog"
	"testing"

	"github.com/cardledger/internal/config"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/ledger"
	"github.com/cardledger/internal/transaction_processor/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSettler struct {
	confirmed []uuid.UUID
}

func (s *stubSettler) ConfirmDeposit(_ context.Context, depositID uuid.UUID, _ string) (*ledger.DepositConfirmation, error) {
	s.confirmed = append(s.confirmed, depositID)
	return &ledger.DepositConfirmation{DepositID: depositID, Status: shared.TransactionStatusCompleted}, nil
}

func (s *stubSettler) FailDeposit(_ context.Context, depositID uuid.UUID, _, _ string) (*transaction.Transaction, error) {
	return &transaction.Transaction{ID: depositID, Status: shared.TransactionStatusFailed}, nil
}

func TestCreateSettlementService(t *testing.T) {
	logger := slog.Default()

	t.Run("creates worker pool service with valid config", func(t *testing.T) {
		settler := &stubSettler{}
		cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 5}}

		svc, pool := CreateSettlementService(settler, logger, cfg)
		require.NotNil(t, pool)
		defer pool.Shutdown()
		assert.IsType(t, &service.WorkerPoolSettlementService{}, svc)

		depositID := uuid.New()
		result, err := svc.ProcessNotice(context.Background(), &shared.SettlementNotice{DepositID: depositID, Outcome: shared.SettlementOutcomeSettled})
		require.NoError(t, err)
		assert.Equal(t, service.ResultApplied, result)
		assert.Equal(t, []uuid.UUID{depositID}, settler.confirmed)
	})

	t.Run("falls back to base service with invalid config", func(t *testing.T) {
		cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 0}}

		svc, pool := CreateSettlementService(&stubSettler{}, logger, cfg)
		assert.Nil(t, pool)
		assert.IsType(t, &service.SettlementServiceImpl{}, svc)
	})

	t.Run("invalid notices never reach the ledger", func(t *testing.T) {
		settler := &stubSettler{}
		cfg := &config.Config{WorkerPool: config.WorkerPoolConfig{Size: 0}}

		svc, _ := CreateSettlementService(settler, logger, cfg)
		_, err := svc.ProcessNotice(context.Background(), &shared.SettlementNotice{Outcome: shared.SettlementOutcomeSettled})
		var validationErr shared.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Empty(t, settler.confirmed)
	})
}
