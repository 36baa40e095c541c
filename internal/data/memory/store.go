package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/ledger"
	"github.com/google/uuid"
)

// ErrLockOrder is returned when a unit of work locks a card with a lower id
// than one it already holds
var ErrLockOrder = errors.New("card locks must be acquired in ascending id order")

// ErrLockNotHeld is returned when a unit of work writes a row it has not locked
var ErrLockNotHeld = errors.New("row written without holding its lock")

// Store is an in-process ledger store. Row locks are per-id channels held
// until the owning unit of work ends; writes are staged and applied on commit.
type Store struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]*card.Card
	txns  map[uuid.UUID]*storedTransaction
	seq   int64

	cardLocks *lockTable
	txnLocks  *lockTable
}

type storedTransaction struct {
	txn *transaction.Transaction
	seq int64
}

func NewStore() *Store {
	return &Store{
		cards:     make(map[uuid.UUID]*card.Card),
		txns:      make(map[uuid.UUID]*storedTransaction),
		cardLocks: newLockTable(),
		txnLocks:  newLockTable(),
	}
}

var (
	_ ledger.Store              = (*Store)(nil)
	_ transaction.HistoryReader = (*Store)(nil)
)

func (s *Store) ExecuteTx(ctx context.Context, fn func(ctx context.Context, uow ledger.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return shared.StorageError{Op: "begin", Err: err}
	}

	uow := newUnitOfWork(s)
	defer uow.release()

	if err := fn(ctx, uow); err != nil {
		return err
	}
	return uow.commit()
}

func (s *Store) GetCard(_ context.Context, id uuid.UUID) (*card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[id]
	if !ok {
		return nil, shared.NotFoundError{Resource: "card", ID: id.String()}
	}
	cp := *c
	return &cp, nil
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.txns[id]
	if !ok {
		return nil, shared.NotFoundError{Resource: "transaction", ID: id.String()}
	}
	cp := *stored.txn
	return &cp, nil
}

// ListByCard returns a card's transactions, newest first
func (s *Store) ListByCard(_ context.Context, cardID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	matches := make([]storedTransaction, 0)
	for _, stored := range s.txns {
		if stored.txn.CardID == cardID {
			cp := *stored.txn
			matches = append(matches, storedTransaction{txn: &cp, seq: stored.seq})
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.txn.CreatedAt.Equal(b.txn.CreatedAt) {
			return a.txn.CreatedAt.After(b.txn.CreatedAt)
		}
		return a.seq > b.seq
	})

	if offset >= len(matches) {
		return []*transaction.Transaction{}, nil
	}
	end := len(matches)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	result := make([]*transaction.Transaction, 0, end-offset)
	for _, stored := range matches[offset:end] {
		result = append(result, stored.txn)
	}
	return result, nil
}

func (s *Store) CountByCard(_ context.Context, cardID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, stored := range s.txns {
		if stored.txn.CardID == cardID {
			count++
		}
	}
	return count, nil
}

type unitOfWork struct {
	store *Store

	cards      map[uuid.UUID]*card.Card
	version    map[uuid.UUID]int
	dirtyCards map[uuid.UUID]bool
	newCards   []*card.Card
	maxCard    *uuid.UUID

	txns      map[uuid.UUID]*transaction.Transaction
	dirtyTxns map[uuid.UUID]bool
	newTxns   []*transaction.Transaction

	unlocks []func()
}

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{
		store:      s,
		cards:      make(map[uuid.UUID]*card.Card),
		version:    make(map[uuid.UUID]int),
		dirtyCards: make(map[uuid.UUID]bool),
		txns:       make(map[uuid.UUID]*transaction.Transaction),
		dirtyTxns:  make(map[uuid.UUID]bool),
	}
}

func (u *unitOfWork) LockCards(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*card.Card, error) {
	result := make(map[uuid.UUID]*card.Card, len(ids))
	for i, id := range ids {
		if c, ok := u.cards[id]; ok {
			result[id] = c
			continue
		}
		if i > 0 && bytes.Compare(ids[i-1][:], id[:]) > 0 {
			return nil, shared.StorageError{Op: "lock_cards", Err: fmt.Errorf("%w: %s requested after %s", ErrLockOrder, id, ids[i-1])}
		}
		if u.maxCard != nil && bytes.Compare(u.maxCard[:], id[:]) > 0 {
			return nil, shared.StorageError{Op: "lock_cards", Err: fmt.Errorf("%w: %s requested while holding %s", ErrLockOrder, id, *u.maxCard)}
		}

		unlock, err := u.store.cardLocks.acquire(ctx, id)
		if err != nil {
			return nil, shared.StorageError{Op: "lock_cards", Err: err}
		}
		u.unlocks = append(u.unlocks, unlock)

		u.store.mu.RLock()
		stored, ok := u.store.cards[id]
		var cp card.Card
		if ok {
			cp = *stored
		}
		u.store.mu.RUnlock()
		if !ok {
			return nil, shared.NotFoundError{Resource: "card", ID: id.String()}
		}

		lockedID := id
		u.maxCard = &lockedID
		u.cards[id] = &cp
		u.version[id] = cp.Version
		result[id] = &cp
	}
	return result, nil
}

func (u *unitOfWork) SaveCard(_ context.Context, c *card.Card) error {
	if _, ok := u.cards[c.ID]; !ok {
		return shared.StorageError{Op: "save_card", Err: fmt.Errorf("%w: card %s", ErrLockNotHeld, c.ID)}
	}
	cp := *c
	u.cards[c.ID] = &cp
	u.dirtyCards[c.ID] = true
	return nil
}

func (u *unitOfWork) InsertCard(_ context.Context, c *card.Card) error {
	cp := *c
	u.newCards = append(u.newCards, &cp)
	return nil
}

func (u *unitOfWork) LockTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	if txn, ok := u.txns[id]; ok {
		return txn, nil
	}

	unlock, err := u.store.txnLocks.acquire(ctx, id)
	if err != nil {
		return nil, shared.StorageError{Op: "lock_transaction", Err: err}
	}
	u.unlocks = append(u.unlocks, unlock)

	u.store.mu.RLock()
	stored, ok := u.store.txns[id]
	var cp transaction.Transaction
	if ok {
		cp = *stored.txn
	}
	u.store.mu.RUnlock()
	if !ok {
		return nil, shared.NotFoundError{Resource: "transaction", ID: id.String()}
	}

	u.txns[id] = &cp
	return &cp, nil
}

func (u *unitOfWork) InsertTransaction(_ context.Context, txn *transaction.Transaction) error {
	cp := *txn
	u.newTxns = append(u.newTxns, &cp)
	return nil
}

func (u *unitOfWork) UpdateTransaction(_ context.Context, txn *transaction.Transaction) error {
	if _, ok := u.txns[txn.ID]; !ok {
		return shared.StorageError{Op: "update_transaction", Err: fmt.Errorf("%w: transaction %s", ErrLockNotHeld, txn.ID)}
	}
	cp := *txn
	u.txns[txn.ID] = &cp
	u.dirtyTxns[txn.ID] = true
	return nil
}

func (u *unitOfWork) commit() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range u.newCards {
		if _, exists := s.cards[c.ID]; exists {
			return shared.ConflictError{Resource: "card", ID: c.ID.String(), Reason: "already exists"}
		}
	}
	for _, txn := range u.newTxns {
		if _, exists := s.txns[txn.ID]; exists {
			return shared.ConflictError{Resource: "transaction", ID: txn.ID.String(), Reason: "already exists"}
		}
	}
	for id := range u.dirtyCards {
		if s.cards[id].Version != u.version[id] {
			return shared.StorageError{Op: "save_card", Err: shared.ErrConcurrentModification}
		}
	}

	for _, c := range u.newCards {
		s.cards[c.ID] = c
	}
	for id := range u.dirtyCards {
		s.cards[id] = u.cards[id]
	}
	for _, txn := range u.newTxns {
		s.seq++
		s.txns[txn.ID] = &storedTransaction{txn: txn, seq: s.seq}
	}
	for id := range u.dirtyTxns {
		s.txns[id].txn = u.txns[id]
	}
	return nil
}

// release frees every row lock in reverse acquisition order
func (u *unitOfWork) release() {
	for i := len(u.unlocks) - 1; i >= 0; i-- {
		u.unlocks[i]()
	}
	u.unlocks = nil
}
