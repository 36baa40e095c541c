// Package mongo holds the MongoDB projection of card transaction history.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// HistoryCollectionName is the name of the transaction history collection in MongoDB
	HistoryCollectionName = "transaction_history"
)

// HistoryRepository projects committed transaction records into MongoDB and
// serves the per-card history from there
type HistoryRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

var _ transaction.HistoryReader = (*HistoryRepository)(nil)

func NewHistoryRepository(logger *slog.Logger, db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{
		collection: db.Collection(HistoryCollectionName),
		logger:     logger,
	}
}

// EnsureIndexes creates the index backing ListByCard
func (r *HistoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "card_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}
	return nil
}

// Upsert writes the latest state of a record. Only pending documents are
// replaced, so a late delivery of an older state never overwrites a terminal one.
func (r *HistoryRepository) Upsert(ctx context.Context, txn *transaction.Transaction) error {
	doc, err := toDocument(txn)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": doc.ID, "status": shared.TransactionStatusPending}
	_, err = r.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Debug("History entry already terminal, skipping",
				"transaction_id", doc.ID,
				"status", string(txn.Status))
			return nil
		}
		r.logger.Error("Failed to upsert history entry",
			"transaction_id", doc.ID,
			"error", err)
		return fmt.Errorf("failed to upsert history entry: %w", err)
	}

	return nil
}

// ListByCard returns a page of a card's records, newest first
func (r *HistoryRepository) ListByCard(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"card_id": cardID.String()}, opts)
	if err != nil {
		r.logger.Error("Failed to list history entries",
			"card_id", cardID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []historyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode history entries",
			"card_id", cardID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}

	txns := make([]*transaction.Transaction, 0, len(docs))
	for i := range docs {
		txn, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// CountByCard counts all history entries for a card
func (r *HistoryRepository) CountByCard(ctx context.Context, cardID uuid.UUID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"card_id": cardID.String()})
	if err != nil {
		r.logger.Error("Failed to count history entries",
			"card_id", cardID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}
	return count, nil
}
