package mongo

import (
	"fmt"
	"time"

	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type historyDocument struct {
	ID                 string                   `bson:"_id"`
	CardID             string                   `bson:"card_id"`
	OwnerID            string                   `bson:"owner_id"`
	Type               shared.TransactionType   `bson:"type"`
	Amount             primitive.Decimal128     `bson:"amount"`
	Currency           string                   `bson:"currency"`
	Status             shared.TransactionStatus `bson:"status"`
	Fee                primitive.Decimal128     `bson:"fee"`
	ParentID           string                   `bson:"parent_id,omitempty"`
	CounterpartyCardID string                   `bson:"counterparty_card_id,omitempty"`
	CounterpartyLabel  string                   `bson:"counterparty_label,omitempty"`
	Method             string                   `bson:"method,omitempty"`
	MethodDetails      map[string]string        `bson:"method_details,omitempty"`
	Reference          string                   `bson:"reference"`
	ConfirmationID     string                   `bson:"confirmation_id,omitempty"`
	FailureReason      string                   `bson:"failure_reason,omitempty"`
	CreatedAt          time.Time                `bson:"created_at"`
	ConfirmedAt        *time.Time               `bson:"confirmed_at,omitempty"`
}

func toDocument(txn *transaction.Transaction) (*historyDocument, error) {
	amount, err := toDecimal128(txn.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := toDecimal128(txn.Fee)
	if err != nil {
		return nil, err
	}

	return &historyDocument{
		ID:                 txn.ID.String(),
		CardID:             txn.CardID.String(),
		OwnerID:            txn.OwnerID,
		Type:               txn.Type,
		Amount:             amount,
		Currency:           txn.Currency,
		Status:             txn.Status,
		Fee:                fee,
		ParentID:           optionalID(txn.ParentID),
		CounterpartyCardID: optionalID(txn.CounterpartyCardID),
		CounterpartyLabel:  txn.CounterpartyLabel,
		Method:             txn.Method,
		MethodDetails:      txn.MethodDetails,
		Reference:          txn.Reference,
		ConfirmationID:     txn.ConfirmationID,
		FailureReason:      txn.FailureReason,
		CreatedAt:          txn.CreatedAt,
		ConfirmedAt:        txn.ConfirmedAt,
	}, nil
}

func fromDocument(doc *historyDocument) (*transaction.Transaction, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid history id %q: %w", doc.ID, err)
	}
	cardID, err := uuid.Parse(doc.CardID)
	if err != nil {
		return nil, fmt.Errorf("invalid card id in history %s: %w", doc.ID, err)
	}
	amount, err := decimal.NewFromString(doc.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid amount in history %s: %w", doc.ID, err)
	}
	fee, err := decimal.NewFromString(doc.Fee.String())
	if err != nil {
		return nil, fmt.Errorf("invalid fee in history %s: %w", doc.ID, err)
	}
	parentID, err := parseOptionalID(doc.ParentID)
	if err != nil {
		return nil, err
	}
	counterpartyID, err := parseOptionalID(doc.CounterpartyCardID)
	if err != nil {
		return nil, err
	}

	return &transaction.Transaction{
		ID:                 id,
		CardID:             cardID,
		OwnerID:            doc.OwnerID,
		Type:               doc.Type,
		Amount:             amount,
		Currency:           doc.Currency,
		Status:             doc.Status,
		Fee:                fee,
		ParentID:           parentID,
		CounterpartyCardID: counterpartyID,
		CounterpartyLabel:  doc.CounterpartyLabel,
		Method:             doc.Method,
		MethodDetails:      doc.MethodDetails,
		Reference:          doc.Reference,
		ConfirmationID:     doc.ConfirmationID,
		FailureReason:      doc.FailureReason,
		CreatedAt:          doc.CreatedAt.UTC(),
		ConfirmedAt:        doc.ConfirmedAt,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert %s to decimal128: %w", d.String(), err)
	}
	return v, nil
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseOptionalID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference id %q: %w", s, err)
	}
	return &id, nil
}
