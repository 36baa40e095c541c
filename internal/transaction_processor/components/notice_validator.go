package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/transaction_processor/service"
	"github.com/google/uuid"
)

const maxReasonLength = 500

type NoticeValidatorImpl struct {
	logger *slog.Logger
}

func NewNoticeValidator(logger *slog.Logger) service.NoticeValidator {
	return &NoticeValidatorImpl{logger: logger}
}

// Validate checks that a notice names a deposit and a known outcome
func (v *NoticeValidatorImpl) Validate(ctx context.Context, notice *shared.SettlementNotice) error {
	logger := v.logger
	if notice.CorrelationID != "" {
		logger = v.logger.With("correlation_id", notice.CorrelationID)
	}

	if notice.DepositID == uuid.Nil {
		logger.Error("Settlement notice without deposit id")
		return shared.ValidationError{Field: "deposit_id", Reason: "is required"}
	}

	switch notice.Outcome {
	case shared.SettlementOutcomeSettled, shared.SettlementOutcomeRejected:
	default:
		logger.Error("Unknown settlement outcome", "deposit_id", notice.DepositID.String(), "outcome", notice.Outcome)
		return shared.ValidationError{Field: "outcome", Reason: fmt.Sprintf("must be %q or %q", shared.SettlementOutcomeSettled, shared.SettlementOutcomeRejected)}
	}

	if len(notice.Reason) > maxReasonLength {
		return shared.ValidationError{Field: "reason", Reason: fmt.Sprintf("must be at most %d characters", maxReasonLength)}
	}

	return nil
}
