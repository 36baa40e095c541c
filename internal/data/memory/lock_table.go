package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// lockTable hands out one exclusive lock per id. Locks are channels so that
// waiting honours context cancellation.
type lockTable struct {
	mu    sync.Mutex
	locks map[uuid.UUID]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[uuid.UUID]chan struct{})}
}

func (t *lockTable) acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	t.mu.Lock()
	lock, ok := t.locks[id]
	if !ok {
		lock = make(chan struct{}, 1)
		t.locks[id] = lock
	}
	t.mu.Unlock()

	select {
	case lock <- struct{}{}:
		return func() { <-lock }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
