package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, card_id, owner_id, type, amount, currency, status, fee, parent_id,
		counterparty_card_id, counterparty_label, method, method_details, reference,
		confirmation_id, failure_reason, created_at, confirmed_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.CardID,
		txn.OwnerID,
		txn.Type,
		txn.Amount,
		txn.Currency,
		txn.Status,
		txn.Fee,
		txn.ParentID,
		txn.CounterpartyCardID,
		txn.CounterpartyLabel,
		txn.Method,
		methodDetails(txn),
		txn.Reference,
		txn.ConfirmationID,
		txn.FailureReason,
		txn.CreatedAt,
		txn.ConfirmedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFoundError{Resource: "transaction", ID: id.String()}
		}
		r.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// LockForUpdate obtains a pessimistic lock on the transaction row
func (r *TransactionRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
		FOR UPDATE
	`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.NotFoundError{Resource: "transaction", ID: id.String()}
		}
		r.logger.Error("Failed to lock transaction for update", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock transaction for update: %w", err)
	}

	return txn, nil
}

// UpdateStatus writes a terminal status. Only pending rows are eligible, so a
// terminal record is never rewritten.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, confirmation_id = $2, failure_reason = $3, confirmed_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := r.querier.Exec(ctx, query,
		txn.Status,
		txn.ConfirmationID,
		txn.FailureReason,
		txn.ConfirmedAt,
		txn.ID,
		shared.TransactionStatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction status", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, shared.ErrConcurrentModification)
	}

	return nil
}

func methodDetails(txn *transaction.Transaction) map[string]string {
	if txn.MethodDetails == nil {
		return map[string]string{}
	}
	return txn.MethodDetails
}

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.CardID,
		&txn.OwnerID,
		&txn.Type,
		&txn.Amount,
		&txn.Currency,
		&txn.Status,
		&txn.Fee,
		&txn.ParentID,
		&txn.CounterpartyCardID,
		&txn.CounterpartyLabel,
		&txn.Method,
		&txn.MethodDetails,
		&txn.Reference,
		&txn.ConfirmationID,
		&txn.FailureReason,
		&txn.CreatedAt,
		&txn.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(txn.MethodDetails) == 0 {
		txn.MethodDetails = nil
	}
	return &txn, nil
}
