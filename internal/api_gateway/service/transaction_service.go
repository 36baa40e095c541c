package service

import (
	"context"
	"log/slog"

	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	ledger  CardLedger
	history transaction.HistoryReader
	logger  *slog.Logger
}

// NewTransactionService reads single records from the ledger and card history from history
func NewTransactionService(logger *slog.Logger, ledger CardLedger, history transaction.HistoryReader) TransactionService {
	return &TransactionServiceImpl{
		ledger:  ledger,
		history: history,
		logger:  logger,
	}
}

func (s *TransactionServiceImpl) GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.ledger.GetTransaction(ctx, id)
}

// GetTransactionsByCardID retrieves a page of history. An unknown card is a
// NotFoundError rather than an empty page.
func (s *TransactionServiceImpl) GetTransactionsByCardID(ctx context.Context, cardID uuid.UUID, page, perPage int) ([]*transaction.Transaction, int64, error) {
	if _, err := s.ledger.GetCard(ctx, cardID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage

	txns, err := s.history.ListByCard(ctx, cardID, perPage, offset)
	if err != nil {
		s.logger.Error("Failed to list card history", "card_id", cardID.String(), "error", err)
		return nil, 0, err
	}

	total, err := s.history.CountByCard(ctx, cardID)
	if err != nil {
		s.logger.Error("Failed to count card history", "card_id", cardID.String(), "error", err)
		return nil, 0, err
	}

	return txns, total, nil
}
