// Package postgres provides PostgreSQL implementations of the domain repositories
// and the ledger store built on them.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const cardColumns = `id, owner_id, balance, currency, status, version, created_at, updated_at`

// CardRepository implements the card.Repository interface for PostgreSQL
type CardRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewCardRepository creates a new PostgreSQL card repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewCardRepository(logger *slog.Logger, db *persistence.PostgresDB) card.Repository {
	return &CardRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx
func (r *CardRepository) WithTx(tx pgx.Tx) card.Repository {
	return &CardRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *CardRepository) Create(ctx context.Context, c *card.Card) error {
	query := `
		INSERT INTO cards (id, owner_id, balance, currency, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.OwnerID,
		c.Balance,
		c.Currency,
		c.Status,
		c.Version,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create card", "card_id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByID retrieves a card without locking it
func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE id = $1
	`

	c, err := scanCard(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFoundError{Resource: "card", ID: id.String()}
		}
		r.logger.Error("Failed to get card", "card_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return c, nil
}

// LockForUpdate locks every requested card row. Rows are locked in id order so
// concurrent multi-card units cannot deadlock. Missing ids are simply absent
// from the result.
func (r *CardRepository) LockForUpdate(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*card.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := r.querier.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error("Failed to lock cards for update", "card_ids", ids, "error", err)
		return nil, fmt.Errorf("failed to lock cards for update: %w", err)
	}
	defer rows.Close()

	cards := make(map[uuid.UUID]*card.Card, len(ids))
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			r.logger.Error("Failed to scan locked card", "error", err)
			return nil, fmt.Errorf("failed to scan locked card: %w", err)
		}
		cards[c.ID] = c
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over locked cards", "error", err)
		return nil, fmt.Errorf("error iterating over locked cards: %w", err)
	}

	return cards, nil
}

// Update persists balance and status using optimistic locking on version
func (r *CardRepository) Update(ctx context.Context, c *card.Card) error {
	query := `
		UPDATE cards
		SET balance = $1, status = $2, version = $3, updated_at = $4
		WHERE id = $5 AND version = $6
	`

	result, err := r.querier.Exec(ctx, query,
		c.Balance,
		c.Status,
		c.Version,
		c.UpdatedAt,
		c.ID,
		c.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update card", "card_id", c.ID.String(), "error", err)
		return fmt.Errorf("failed to update card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", c.ID, shared.ErrConcurrentModification)
	}

	return nil
}

func scanCard(row pgx.Row) (*card.Card, error) {
	var c card.Card
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Balance,
		&c.Currency,
		&c.Status,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
