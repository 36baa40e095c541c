package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardledger/internal/domain/outbox"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/platform/messaging/producers"
)

// ErrUndecodablePayload marks an outbox message that can never be published
var ErrUndecodablePayload = errors.New("undecodable outbox payload")

// LedgerPublisher projects one outbox message into history and the event stream
type LedgerPublisher interface {
	PublishToLedger(ctx context.Context, message *outbox.Message) error
}

// HistoryWriter stores the latest snapshot of a transaction record
type HistoryWriter interface {
	Upsert(ctx context.Context, txn *transaction.Transaction) error
}

// LedgerEvent is the value published to the ledger events topic
type LedgerEvent struct {
	EventType   string                   `json:"event_type"`
	OutboxID    int64                    `json:"outbox_id"`
	OccurredAt  time.Time                `json:"occurred_at"`
	Transaction *transaction.Transaction `json:"transaction"`
}

// LedgerPublisherImpl implements LedgerPublisher
type LedgerPublisherImpl struct {
	outboxRepo outbox.Repository
	history    HistoryWriter
	events     producers.EventPublisher
	logger     *slog.Logger
}

func NewLedgerPublisher(
	outboxRepo outbox.Repository,
	history HistoryWriter,
	events producers.EventPublisher,
	logger *slog.Logger,
) LedgerPublisher {
	return &LedgerPublisherImpl{
		outboxRepo: outboxRepo,
		history:    history,
		events:     events,
		logger:     logger,
	}
}

// PublishToLedger upserts the history projection, publishes the ledger event
// keyed by card id, then marks the message PROCESSED. Both sinks tolerate
// redelivery, so a failure at any step is retried from the start.
func (p *LedgerPublisherImpl) PublishToLedger(ctx context.Context, message *outbox.Message) error {
	txn, err := message.GetTransaction()
	if err != nil {
		p.logger.Error("Failed to unmarshal transaction from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("outbox %d: %w: %v", message.ID, ErrUndecodablePayload, err)
	}

	logger := p.logger.With("outbox_id", message.ID, "transaction_id", txn.ID.String())
	logger.Debug("Publishing outbox message", "event_type", message.EventType, "status", txn.Status)

	if err := p.history.Upsert(ctx, txn); err != nil {
		logger.Error("Failed to upsert transaction history", "error", err)
		return fmt.Errorf("failed to project transaction %s into history: %w", txn.ID, err)
	}

	event := LedgerEvent{
		EventType:   message.EventType,
		OutboxID:    message.ID,
		OccurredAt:  message.CreatedAt,
		Transaction: txn,
	}
	if err := p.events.PublishEvent(ctx, txn.CardID.String(), message.EventType, event); err != nil {
		logger.Error("Failed to publish ledger event", "error", err)
		return fmt.Errorf("failed to publish ledger event for transaction %s: %w", txn.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("ledger event for %s published, but failed to mark outbox %d as PROCESSED: %w", txn.ID, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "event_type", message.EventType)
	return nil
}
