package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages transaction record persistence
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// LockForUpdate acquires a row lock on a pending record before its transition
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// UpdateStatus persists a status transition; only pending rows are updated
	UpdateStatus(ctx context.Context, txn *Transaction) error
	WithTx(tx pgx.Tx) Repository
}

// HistoryReader serves a card's transaction history, newest first
type HistoryReader interface {
	ListByCard(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountByCard(ctx context.Context, cardID uuid.UUID) (int64, error)
}
