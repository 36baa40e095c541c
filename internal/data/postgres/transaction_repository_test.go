package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionColumnNames = []string{
	"id", "card_id", "owner_id", "type", "amount", "currency", "status", "fee", "parent_id",
	"counterparty_card_id", "counterparty_label", "method", "method_details", "reference",
	"confirmation_id", "failure_reason", "created_at", "confirmed_at",
}

func transactionRow(rows *pgxmock.Rows, txn *transaction.Transaction) *pgxmock.Rows {
	return rows.AddRow(
		txn.ID, txn.CardID, txn.OwnerID, txn.Type, txn.Amount, txn.Currency, txn.Status, txn.Fee, txn.ParentID,
		txn.CounterpartyCardID, txn.CounterpartyLabel, txn.Method, txn.MethodDetails, txn.Reference,
		txn.ConfirmationID, txn.FailureReason, txn.CreatedAt, txn.ConfirmedAt,
	)
}

func testDeposit() *transaction.Transaction {
	return transaction.NewPendingDeposit(testCard(), decimal.RequireFromString("500.00"), "mobile_money",
		map[string]string{"mobile_number": "255712345678"}, time.Now().UTC())
}

func TestTransactionRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	txn := testDeposit()
	query := `INSERT INTO transactions \(id, card_id, owner_id, type, amount`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(
				txn.ID, txn.CardID, txn.OwnerID, txn.Type, txn.Amount, txn.Currency, txn.Status, txn.Fee, txn.ParentID,
				txn.CounterpartyCardID, txn.CounterpartyLabel, txn.Method, txn.MethodDetails, txn.Reference,
				txn.ConfirmationID, txn.FailureReason, txn.CreatedAt, txn.ConfirmedAt,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, txn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nil method details stored as empty object", func(t *testing.T) {
		fee := transaction.NewFee(txn, decimal.NewFromInt(2), time.Now().UTC())
		args := make([]interface{}, 18)
		for i := range args {
			args[i] = pgxmock.AnyArg()
		}
		args[12] = map[string]string{}
		mock.ExpectExec(query).WithArgs(args...).WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, repo.Create(ctx, fee))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("duplicate key")
		mock.ExpectExec(query).WillReturnError(dbErr)

		err := repo.Create(ctx, txn)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to create transaction")
	})
}

func TestTransactionRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	expected := testDeposit()
	query := `FROM transactions\s+WHERE id = \$1\s*$`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).
			WillReturnRows(transactionRow(pgxmock.NewRows(transactionColumnNames), expected))

		txn, err := repo.GetByID(ctx, expected.ID)
		require.NoError(t, err)
		assert.Equal(t, expected, txn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(pgx.ErrNoRows)

		txn, err := repo.GetByID(ctx, expected.ID)
		assert.Nil(t, txn)
		var notFound shared.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestTransactionRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	expected := testDeposit()
	query := `FROM transactions\s+WHERE id = \$1\s+FOR UPDATE`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expected.ID).
			WillReturnRows(transactionRow(pgxmock.NewRows(transactionColumnNames), expected))

		txn, err := repo.LockForUpdate(ctx, expected.ID)
		require.NoError(t, err)
		assert.Equal(t, expected.Reference, txn.Reference)
		assert.True(t, expected.Amount.Equal(txn.Amount))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		missing := uuid.New()
		mock.ExpectQuery(query).WithArgs(missing).WillReturnError(pgx.ErrNoRows)

		_, err := repo.LockForUpdate(ctx, missing)
		var notFound shared.NotFoundError
		assert.ErrorAs(t, err, &notFound)
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(dbErr)

		_, err := repo.LockForUpdate(ctx, expected.ID)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestTransactionRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TransactionRepository{querier: mock, logger: newTestLogger()}
	txn := testDeposit()
	require.NoError(t, txn.Complete("CNF-1", time.Now().UTC()))

	query := `
		UPDATE transactions
		SET status = \$1, confirmation_id = \$2, failure_reason = \$3, confirmed_at = \$4
		WHERE id = \$5 AND status = \$6
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(txn.Status, txn.ConfirmationID, txn.FailureReason, txn.ConfirmedAt, txn.ID, shared.TransactionStatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.UpdateStatus(ctx, txn))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already terminal", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(txn.Status, txn.ConfirmationID, txn.FailureReason, txn.ConfirmedAt, txn.ID, shared.TransactionStatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, txn)
		assert.ErrorIs(t, err, shared.ErrConcurrentModification)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
