package card

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines card persistence operations
type Repository interface {
	Create(ctx context.Context, card *Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*Card, error)

	// LockForUpdate acquires row locks on every id, in ascending id order
	LockForUpdate(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*Card, error)

	// Update persists a card whose Version was bumped once since it was read
	Update(ctx context.Context, card *Card) error
	WithTx(tx pgx.Tx) Repository
}
