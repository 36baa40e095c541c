package service

import (
	"context"
	"log/slog"

	"github.com/cardledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// WorkerPoolSettlementService runs settlements on a bounded ants pool
type WorkerPoolSettlementService struct {
	baseService SettlementService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

type settlementOutcome struct {
	result Result
	err    error
}

func NewWorkerPoolSettlementService(
	baseService SettlementService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolSettlementService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolSettlementService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ProcessNotice submits the notice to the pool and waits for its result
func (s *WorkerPoolSettlementService) ProcessNotice(ctx context.Context, notice *shared.SettlementNotice) (Result, error) {
	logger := s.logger
	if notice.CorrelationID != "" {
		logger = s.logger.With("correlation_id", notice.CorrelationID)
	}

	logger.Debug("Submitting settlement notice to worker pool", "deposit_id", notice.DepositID.String())

	resultChan := make(chan settlementOutcome, 1)
	noticeCopy := *notice

	err := s.pool.Submit(func() {
		result, err := s.baseService.ProcessNotice(ctx, &noticeCopy)
		resultChan <- settlementOutcome{result: result, err: err}
	})
	if err != nil {
		logger.Error("Failed to submit settlement notice to worker pool",
			"deposit_id", notice.DepositID.String(),
			"error", err,
		)
		return "", shared.StorageError{Op: "submit settlement", Err: err}
	}

	select {
	case outcome := <-resultChan:
		return outcome.result, outcome.err
	case <-ctx.Done():
		return "", shared.StorageError{Op: "await settlement", Err: ctx.Err()}
	}
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolSettlementService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolSettlementService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolSettlementService) Capacity() int {
	return s.pool.Cap()
}
