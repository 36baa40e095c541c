package mongo

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testCard() *card.Card {
	c, _ := card.NewCard("owner-1", decimal.RequireFromString("1000.00"), "USD")
	return c
}

func toBSON(t *testing.T, txn *transaction.Transaction) bson.D {
	t.Helper()
	doc, err := toDocument(txn)
	require.NoError(t, err)
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func TestDocumentConversion(t *testing.T) {
	source, recipient := testCard(), testCard()
	now := time.Now().UTC().Truncate(time.Millisecond)
	out, in := transaction.NewTransferPair(source, recipient, decimal.RequireFromString("250.50"), "rent", now)

	t.Run("transfer leg keeps links and signed amount", func(t *testing.T) {
		doc, err := toDocument(in)
		require.NoError(t, err)
		assert.Equal(t, out.ID.String(), doc.ParentID)
		assert.Equal(t, source.ID.String(), doc.CounterpartyCardID)

		back, err := fromDocument(doc)
		require.NoError(t, err)
		assert.Equal(t, in.ID, back.ID)
		assert.Equal(t, *in.ParentID, *back.ParentID)
		assert.True(t, in.Amount.Equal(back.Amount))
		assert.Equal(t, in.Reference, back.Reference)
	})

	t.Run("negative amounts survive decimal128", func(t *testing.T) {
		doc, err := toDocument(out)
		require.NoError(t, err)
		assert.Empty(t, doc.ParentID)

		back, err := fromDocument(doc)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("-250.50").Equal(back.Amount))
		assert.Nil(t, back.ParentID)
	})

	t.Run("corrupt ids are reported", func(t *testing.T) {
		doc, err := toDocument(out)
		require.NoError(t, err)
		doc.CardID = "not-a-uuid"

		_, err = fromDocument(doc)
		assert.Error(t, err)
	})
}

func TestHistoryRepository_Upsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	deposit := transaction.NewPendingDeposit(testCard(), decimal.RequireFromString("500.00"), "mobile_money", nil, time.Now().UTC())

	mt.Run("writes the record", func(mt *mtest.T) {
		repo := &HistoryRepository{collection: mt.Coll, logger: newTestLogger()}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(t, repo.Upsert(context.Background(), deposit))
	})

	mt.Run("terminal entry is left alone", func(mt *mtest.T) {
		repo := &HistoryRepository{collection: mt.Coll, logger: newTestLogger()}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		assert.NoError(t, repo.Upsert(context.Background(), deposit))
	})

	mt.Run("command failure", func(mt *mtest.T) {
		repo := &HistoryRepository{collection: mt.Coll, logger: newTestLogger()}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := repo.Upsert(context.Background(), deposit)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upsert history entry")
	})
}

func TestHistoryRepository_ListByCard(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	c := testCard()
	now := time.Now().UTC().Truncate(time.Millisecond)
	newer := transaction.NewPendingDeposit(c, decimal.RequireFromString("20.00"), "cash_pickup", nil, now)
	older := transaction.NewPendingDeposit(c, decimal.RequireFromString("10.00"), "bank_transfer",
		map[string]string{"bank_name": "CRDB"}, now.Add(-time.Minute))
	require.NoError(t, older.Complete("CNF-1", now))

	mt.Run("decodes a page", func(mt *mtest.T) {
		repo := &HistoryRepository{collection: mt.Coll, logger: newTestLogger()}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ledger.transaction_history", mtest.FirstBatch,
			toBSON(t, newer), toBSON(t, older)))

		txns, err := repo.ListByCard(context.Background(), c.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, newer.ID, txns[0].ID)
		assert.Equal(t, shared.TransactionStatusCompleted, txns[1].Status)
		assert.Equal(t, "CNF-1", txns[1].ConfirmationID)
		assert.Equal(t, "CRDB", txns[1].MethodDetails["bank_name"])
		assert.True(t, older.Amount.Equal(txns[1].Amount))
	})

	mt.Run("empty page", func(mt *mtest.T) {
		repo := &HistoryRepository{collection: mt.Coll, logger: newTestLogger()}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ledger.transaction_history", mtest.FirstBatch))

		txns, err := repo.ListByCard(context.Background(), uuid.New(), 10, 0)
		require.NoError(t, err)
		assert.Empty(t, txns)
	})

	mt.Run("find failure", func(mt *mtest.T) {
		repo := &HistoryRepository{collection: mt.Coll, logger: newTestLogger()}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad"}))

		_, err := repo.ListByCard(context.Background(), c.ID, 10, 0)
		assert.ErrorContains(t, err, "failed to list history entries")
	})
}

func TestHistoryRepository_CountByCard(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := &HistoryRepository{collection: mt.Coll, logger: newTestLogger()}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "ledger.transaction_history", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))

		count, err := repo.CountByCard(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
