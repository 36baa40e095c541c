package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var cardColumnNames = []string{"id", "owner_id", "balance", "currency", "status", "version", "created_at", "updated_at"}

func testCard() *card.Card {
	now := time.Now().UTC()
	return &card.Card{
		ID:        uuid.New(),
		OwnerID:   "owner-1",
		Balance:   decimal.RequireFromString("1000.00"),
		Currency:  "USD",
		Status:    shared.CardStatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func cardRow(rows *pgxmock.Rows, c *card.Card) *pgxmock.Rows {
	return rows.AddRow(c.ID, c.OwnerID, c.Balance, c.Currency, c.Status, c.Version, c.CreatedAt, c.UpdatedAt)
}

func TestCardRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &CardRepository{querier: mock, logger: newTestLogger()}
	c := testCard()

	query := `
		INSERT INTO cards \(id, owner_id, balance, currency, status, version, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(c.ID, c.OwnerID, c.Balance, c.Currency, c.Status, c.Version, c.CreatedAt, c.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, c)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(c.ID, c.OwnerID, c.Balance, c.Currency, c.Status, c.Version, c.CreatedAt, c.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, c)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create card")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCardRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &CardRepository{querier: mock, logger: newTestLogger()}
	expected := testCard()
	query := `SELECT id, owner_id, balance, currency, status, version, created_at, updated_at\s+FROM cards\s+WHERE id = \$1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnRows(cardRow(pgxmock.NewRows(cardColumnNames), expected))

		c, err := repo.GetByID(ctx, expected.ID)
		assert.NoError(t, err)
		assert.Equal(t, expected, c)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(pgx.ErrNoRows)

		c, err := repo.GetByID(ctx, expected.ID)
		assert.Nil(t, c)
		var notFound shared.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, expected.ID.String(), notFound.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(dbErr)

		c, err := repo.GetByID(ctx, expected.ID)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to get card")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCardRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &CardRepository{querier: mock, logger: newTestLogger()}
	first, second := testCard(), testCard()
	ids := []uuid.UUID{first.ID, second.ID}
	query := `FROM cards\s+WHERE id = ANY\(\$1\)\s+ORDER BY id\s+FOR UPDATE`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(cardColumnNames)
		cardRow(rows, first)
		cardRow(rows, second)
		mock.ExpectQuery(query).WithArgs(ids).WillReturnRows(rows)

		cards, err := repo.LockForUpdate(ctx, ids...)
		require.NoError(t, err)
		assert.Len(t, cards, 2)
		assert.Equal(t, first, cards[first.ID])
		assert.Equal(t, second, cards[second.ID])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing rows are absent", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(ids).WillReturnRows(cardRow(pgxmock.NewRows(cardColumnNames), first))

		cards, err := repo.LockForUpdate(ctx, ids...)
		require.NoError(t, err)
		assert.Len(t, cards, 1)
		assert.NotContains(t, cards, second.ID)
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("lock timeout")
		mock.ExpectQuery(query).WithArgs(ids).WillReturnError(dbErr)

		cards, err := repo.LockForUpdate(ctx, ids...)
		assert.Nil(t, cards)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestCardRepository_Update(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &CardRepository{querier: mock, logger: newTestLogger()}
	c := testCard()
	require.NoError(t, c.ApplyDelta(decimal.NewFromInt(-100), time.Now().UTC()))

	query := `
		UPDATE cards
		SET balance = \$1, status = \$2, version = \$3, updated_at = \$4
		WHERE id = \$5 AND version = \$6
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(c.Balance, c.Status, c.Version, c.UpdatedAt, c.ID, c.Version-1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Update(ctx, c))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent modification", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(c.Balance, c.Status, c.Version, c.UpdatedAt, c.ID, c.Version-1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, c)
		assert.ErrorIs(t, err, shared.ErrConcurrentModification)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCardRepository_WithTx(t *testing.T) {
	repo := &CardRepository{querier: nil, logger: slog.Default()}

	mockTx := pgx.Tx(nil)
	txRepo := repo.WithTx(mockTx)

	cardRepo, ok := txRepo.(*CardRepository)
	require.True(t, ok)
	assert.Equal(t, mockTx, cardRepo.querier)
	assert.Equal(t, repo.logger, cardRepo.logger)
}
