package postgres

import (
	"context"
	"log/slog"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/outbox"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/ledger"
	"github.com/cardledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store implements ledger.Store on PostgreSQL. Every unit of work is one
// database transaction; each transaction record written through it also
// enqueues an outbox message in that same transaction.
type Store struct {
	db     persistence.TxBeginner
	cards  card.Repository
	txns   transaction.Repository
	outbox outbox.Repository
	logger *slog.Logger
}

var _ ledger.Store = (*Store)(nil)

func NewStore(logger *slog.Logger, db *persistence.PostgresDB) *Store {
	return &Store{
		db:     db.Pool(),
		cards:  NewCardRepository(logger, db),
		txns:   NewTransactionRepository(logger, db),
		outbox: NewOutboxRepository(logger, db),
		logger: logger,
	}
}

// ExecuteTx runs fn inside a database transaction. Errors outside the ledger
// taxonomy, including commit failures, are reported as StorageError.
func (s *Store) ExecuteTx(ctx context.Context, fn func(ctx context.Context, uow ledger.UnitOfWork) error) error {
	err := persistence.RunInTx(ctx, s.db, func(tx pgx.Tx) error {
		uow := &unitOfWork{
			cards:  s.cards.WithTx(tx),
			txns:   s.txns.WithTx(tx),
			outbox: s.outbox.WithTx(tx),
			locked: make(map[uuid.UUID]*card.Card),
		}
		return fn(ctx, uow)
	})
	return shared.WrapStorage("execute_tx", err)
}

func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	c, err := s.cards.GetByID(ctx, id)
	return c, shared.WrapStorage("get_card", err)
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	txn, err := s.txns.GetByID(ctx, id)
	return txn, shared.WrapStorage("get_transaction", err)
}

type unitOfWork struct {
	cards  card.Repository
	txns   transaction.Repository
	outbox outbox.Repository
	locked map[uuid.UUID]*card.Card
}

func (u *unitOfWork) LockCards(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*card.Card, error) {
	result := make(map[uuid.UUID]*card.Card, len(ids))
	var missing []uuid.UUID
	for _, id := range ids {
		if c, ok := u.locked[id]; ok {
			result[id] = c
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	locked, err := u.cards.LockForUpdate(ctx, missing...)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		c, ok := locked[id]
		if !ok {
			return nil, shared.NotFoundError{Resource: "card", ID: id.String()}
		}
		u.locked[id] = c
		result[id] = c
	}
	return result, nil
}

func (u *unitOfWork) SaveCard(ctx context.Context, c *card.Card) error {
	if err := u.cards.Update(ctx, c); err != nil {
		return err
	}
	u.locked[c.ID] = c
	return nil
}

func (u *unitOfWork) InsertCard(ctx context.Context, c *card.Card) error {
	return u.cards.Create(ctx, c)
}

func (u *unitOfWork) LockTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return u.txns.LockForUpdate(ctx, id)
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, txn *transaction.Transaction) error {
	if err := u.txns.Create(ctx, txn); err != nil {
		return err
	}
	return u.enqueue(ctx, outbox.EventTransactionRecorded, txn)
}

func (u *unitOfWork) UpdateTransaction(ctx context.Context, txn *transaction.Transaction) error {
	if err := u.txns.UpdateStatus(ctx, txn); err != nil {
		return err
	}
	return u.enqueue(ctx, outbox.EventTransactionSettled, txn)
}

func (u *unitOfWork) enqueue(ctx context.Context, eventType string, txn *transaction.Transaction) error {
	message, err := outbox.NewMessage(eventType, txn)
	if err != nil {
		return err
	}
	return u.outbox.Create(ctx, message)
}
