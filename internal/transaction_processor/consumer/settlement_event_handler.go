package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/platform/messaging/producers"
	"github.com/cardledger/internal/transaction_processor/service"
)

// Settlement results reported to the SettlementObserver
const (
	ResultDeadLettered = "dead_lettered"
	ResultRetry        = "retry"
	ResultDropped      = "dropped"
)

// SettlementObserver records how each notice was handled
type SettlementObserver interface {
	ObserveSettlement(outcome shared.SettlementOutcome, result string)
}

type nopObserver struct{}

func (nopObserver) ObserveSettlement(shared.SettlementOutcome, string) {}

// SettlementEventHandler handles escrow settlement notices from Kafka.
// It returns an error only when the notice should be redelivered.
type SettlementEventHandler struct {
	settlementService service.SettlementService
	producer          producers.DeadLetterPublisher
	observer          SettlementObserver
	logger            *slog.Logger
}

func NewSettlementEventHandler(
	logger *slog.Logger,
	settlementService service.SettlementService,
	producer producers.DeadLetterPublisher,
	observer SettlementObserver,
) *SettlementEventHandler {
	if observer == nil {
		observer = nopObserver{}
	}
	return &SettlementEventHandler{
		settlementService: settlementService,
		producer:          producer,
		observer:          observer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages
func (h *SettlementEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var notice shared.SettlementNotice
	if err := json.Unmarshal(value, &notice); err != nil {
		h.logger.Error("Failed to unmarshal settlement notice from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.deadLetter(ctx, key, value, "", fmt.Sprintf("undecodable settlement notice: %s", err.Error()))
	}

	logger := h.logger
	if notice.CorrelationID != "" {
		logger = h.logger.With("correlation_id", notice.CorrelationID)
	}

	logger.Info("Received settlement notice",
		"deposit_id", notice.DepositID.String(),
		"outcome", notice.Outcome,
	)

	result, err := h.settlementService.ProcessNotice(ctx, &notice)
	if err == nil {
		h.observer.ObserveSettlement(notice.Outcome, string(result))
		return nil
	}

	if shared.IsRetryable(err) {
		logger.Warn("Settlement failed with transient error, message will be redelivered",
			"deposit_id", notice.DepositID.String(),
			"error", err,
		)
		h.observer.ObserveSettlement(notice.Outcome, ResultRetry)
		return fmt.Errorf("processing settlement for deposit %s failed: %w", notice.DepositID.String(), err)
	}

	logger.Error("Settlement notice can never be applied",
		"deposit_id", notice.DepositID.String(),
		"error", err,
	)
	return h.deadLetter(ctx, key, value, notice.Outcome, err.Error())
}

// deadLetter parks the message; a nil return acknowledges it
func (h *SettlementEventHandler) deadLetter(ctx context.Context, key, value []byte, outcome shared.SettlementOutcome, reason string) error {
	err := producers.ErrDLQDisabled
	if h.producer != nil {
		err = h.producer.PublishToDLQ(ctx, string(key), value, reason)
	}
	switch {
	case err == nil:
		h.logger.Info("Published unprocessable settlement notice to DLQ", "message_key", string(key), "reason", reason)
		h.observer.ObserveSettlement(outcome, ResultDeadLettered)
		return nil
	case errors.Is(err, producers.ErrDLQDisabled):
		h.logger.Warn("DLQ disabled, dropping unprocessable settlement notice", "message_key", string(key), "reason", reason)
		h.observer.ObserveSettlement(outcome, ResultDropped)
		return nil
	default:
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"message_key", string(key),
		)
		h.observer.ObserveSettlement(outcome, ResultRetry)
		return fmt.Errorf("dead-lettering message %s failed: %w", string(key), err)
	}
}
