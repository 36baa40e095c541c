package service

import (
	"context"
	"log/slog"

	"github.com/cardledger/internal/domain/card"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardServiceImpl implements the CardService interface
type CardServiceImpl struct {
	ledger CardLedger
	logger *slog.Logger
}

func NewCardService(logger *slog.Logger, ledger CardLedger) CardService {
	return &CardServiceImpl{
		ledger: ledger,
		logger: logger,
	}
}

func (s *CardServiceImpl) IssueCard(ctx context.Context, ownerID, currency string, initialBalance decimal.Decimal) (*card.Card, error) {
	c, err := s.ledger.IssueCard(ctx, ownerID, currency, initialBalance)
	if err != nil {
		s.logger.Warn("Failed to issue card", "owner_id", ownerID, "currency", currency, "error", err)
		return nil, err
	}
	return c, nil
}

func (s *CardServiceImpl) GetCard(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	return s.ledger.GetCard(ctx, id)
}

func (s *CardServiceImpl) DeactivateCard(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	c, err := s.ledger.DeactivateCard(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to deactivate card", "card_id", id.String(), "error", err)
		return nil, err
	}
	return c, nil
}
