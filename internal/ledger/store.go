package ledger

import (
	"bytes"
	"context"
	"sort"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
)

// UnitOfWork is the set of reads and writes that commit or roll back together.
// Rows locked through it stay locked until the unit ends.
type UnitOfWork interface {
	// LockCards locks every card in ids, which must be in ascending byte order.
	// Cards already locked by this unit are returned without re-acquiring.
	LockCards(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*card.Card, error)
	SaveCard(ctx context.Context, c *card.Card) error
	InsertCard(ctx context.Context, c *card.Card) error

	LockTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	InsertTransaction(ctx context.Context, txn *transaction.Transaction) error
	UpdateTransaction(ctx context.Context, txn *transaction.Transaction) error
}

// Store persists cards and transactions with atomic multi-record units
type Store interface {
	// ExecuteTx runs fn in one unit of work. Any error from fn rolls back every write.
	ExecuteTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
	GetCard(ctx context.Context, id uuid.UUID) (*card.Card, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
}

// SortIDs orders ids canonically for lock acquisition
func SortIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	return sorted
}
