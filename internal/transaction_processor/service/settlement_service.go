package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cardledger/internal/domain/shared"
)

type SettlementServiceImpl struct {
	validator NoticeValidator
	settler   DepositSettler
	logger    *slog.Logger
}

func NewSettlementService(validator NoticeValidator, settler DepositSettler, logger *slog.Logger) SettlementService {
	return &SettlementServiceImpl{
		validator: validator,
		settler:   settler,
		logger:    logger,
	}
}

// ProcessNotice confirms or fails the deposit named by the notice. A deposit
// that already reached the requested state is reported as ResultDuplicate.
func (s *SettlementServiceImpl) ProcessNotice(ctx context.Context, notice *shared.SettlementNotice) (Result, error) {
	logger := s.logger
	if notice.CorrelationID != "" {
		logger = s.logger.With("correlation_id", notice.CorrelationID)
	}

	if err := s.validator.Validate(ctx, notice); err != nil {
		logger.Error("Settlement notice validation failed", "deposit_id", notice.DepositID.String(), "error", err)
		return "", err
	}

	logger.Info("Processing settlement notice", "deposit_id", notice.DepositID.String(), "outcome", notice.Outcome)

	var err error
	switch notice.Outcome {
	case shared.SettlementOutcomeSettled:
		_, err = s.settler.ConfirmDeposit(ctx, notice.DepositID, notice.CorrelationID)
	case shared.SettlementOutcomeRejected:
		_, err = s.settler.FailDeposit(ctx, notice.DepositID, notice.Reason, notice.CorrelationID)
	default:
		return "", shared.ValidationError{Field: "outcome", Reason: fmt.Sprintf("unsupported value %q", notice.Outcome)}
	}

	var conflictErr shared.ConflictError
	if errors.As(err, &conflictErr) {
		logger.Info("Settlement already applied, acknowledging", "deposit_id", notice.DepositID.String(), "reason", conflictErr.Reason)
		return ResultDuplicate, nil
	}
	if err != nil {
		return "", fmt.Errorf("settling deposit %s failed: %w", notice.DepositID.String(), err)
	}

	logger.Info("Settlement applied", "deposit_id", notice.DepositID.String(), "outcome", notice.Outcome)
	return ResultApplied, nil
}
