package components

import (
	"log/slog"

	"github.com/cardledger/internal/config"
	"github.com/cardledger/internal/transaction_processor/service"
)

// CreateSettlementService wires the validator and the worker pool around settler.
// It returns the pool as a second value so callers can shut it down; the pool is
// nil when the base service had to be used instead.
func CreateSettlementService(
	settler service.DepositSettler,
	logger *slog.Logger,
	cfg *config.Config,
) (service.SettlementService, *service.WorkerPoolSettlementService) {
	validator := NewNoticeValidator(logger)
	baseService := service.NewSettlementService(validator, settler, logger)

	if cfg.WorkerPool.Size <= 0 {
		logger.Warn("Worker pool size not positive, using base settlement service", "pool_size", cfg.WorkerPool.Size)
		return baseService, nil
	}

	workerPoolService, err := service.NewWorkerPoolSettlementService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService, nil
	}

	logger.Info("Created worker pool settlement service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService, workerPoolService
}
