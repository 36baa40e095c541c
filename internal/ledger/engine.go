package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation names reported to the Observer
const (
	OpCardIssue      = "card_issue"
	OpCardDeactivate = "card_deactivate"
	OpDepositCreate  = "deposit_create"
	OpDepositConfirm = "deposit_confirm"
	OpDepositFail    = "deposit_fail"
	OpWithdrawal     = "withdrawal"
	OpTransfer       = "transfer"
)

// Observer is notified of the outcome of every mutating operation
type Observer interface {
	ObserveOperation(op string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveOperation(string, error) {}

// Config tunes the engine
type Config struct {
	Limits       Limits
	Fees         FeeSchedule
	Instructions InstructionGenerator
	Observer     Observer
}

// Engine executes deposits, withdrawals and transfers against a Store
type Engine struct {
	store        Store
	limits       Limits
	fees         FeeSchedule
	instructions InstructionGenerator
	observer     Observer
	logger       *slog.Logger
	now          func() time.Time
}

func NewEngine(store Store, cfg Config, logger *slog.Logger) *Engine {
	defaults := DefaultLimits()
	if cfg.Limits.DepositMax.IsZero() {
		cfg.Limits.DepositMax = defaults.DepositMax
	}
	if cfg.Limits.WithdrawalMax.IsZero() {
		cfg.Limits.WithdrawalMax = defaults.WithdrawalMax
	}
	if cfg.Limits.TransferMax.IsZero() {
		cfg.Limits.TransferMax = defaults.TransferMax
	}
	if cfg.Fees == nil {
		cfg.Fees = DefaultFeeSchedule()
	}
	if cfg.Instructions == nil {
		cfg.Instructions = NewEscrowInstructions(EscrowAccounts{})
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	return &Engine{
		store:        store,
		limits:       cfg.Limits,
		fees:         cfg.Fees,
		instructions: cfg.Instructions,
		observer:     cfg.Observer,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// IssueCard creates an active card owned by ownerID
func (e *Engine) IssueCard(ctx context.Context, ownerID, currency string, initialBalance decimal.Decimal) (c *card.Card, err error) {
	defer func() { e.observer.ObserveOperation(OpCardIssue, err) }()

	c, err = card.NewCard(ownerID, initialBalance, currency)
	if err != nil {
		return nil, err
	}

	err = e.store.ExecuteTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		return uow.InsertCard(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Card issued", "card_id", c.ID.String(), "owner_id", ownerID, "currency", c.Currency)
	return c, nil
}

func (e *Engine) GetCard(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	return e.store.GetCard(ctx, id)
}

// DeactivateCard blocks further movements on a card
func (e *Engine) DeactivateCard(ctx context.Context, id uuid.UUID) (c *card.Card, err error) {
	defer func() { e.observer.ObserveOperation(OpCardDeactivate, err) }()

	err = e.store.ExecuteTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		cards, err := uow.LockCards(ctx, id)
		if err != nil {
			return err
		}
		c, err = requireCard(cards, id)
		if err != nil {
			return err
		}
		if err := c.Deactivate(e.now()); err != nil {
			return err
		}
		return uow.SaveCard(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Card deactivated", "card_id", id.String())
	return c, nil
}

func (e *Engine) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return e.store.GetTransaction(ctx, id)
}

// loggerFor scopes the engine logger to a request's correlation id
func (e *Engine) loggerFor(correlationID string) *slog.Logger {
	if correlationID == "" {
		return e.logger
	}
	return e.logger.With("correlation_id", correlationID)
}

func requireActive(c *card.Card) error {
	return CardActive(c, decimal.Zero)
}

func requireCard(cards map[uuid.UUID]*card.Card, id uuid.UUID) (*card.Card, error) {
	c, ok := cards[id]
	if !ok {
		return nil, shared.NotFoundError{Resource: "card", ID: id.String()}
	}
	return c, nil
}
