package handler

import (
	"encoding/json"
	"time"

	"github.com/cardledger/internal/domain/card"
	"github.com/cardledger/internal/domain/shared"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/ledger"
	"github.com/shopspring/decimal"
)

// Amounts are accepted as JSON numbers or strings; the ledger enforces sign,
// scale and limits.

// IssueCardRequest represents a request to issue a new card
type IssueCardRequest struct {
	OwnerID        string          `json:"owner_id" binding:"required"`
	Currency       string          `json:"currency" binding:"required,len=3"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// CardResponse represents a card in API responses
type CardResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateDepositRequest asks for a pending deposit through an escrow method
type CreateDepositRequest struct {
	CardID        string          `json:"card_id" binding:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" binding:"required,len=3"`
	Method        string          `json:"method" binding:"required"`
	MethodDetails json.RawMessage `json:"method_details"`
}

type DepositResponse struct {
	DepositID           string `json:"deposit_id"`
	CardID              string `json:"card_id"`
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	Method              string `json:"method"`
	Status              string `json:"status"`
	Reference           string `json:"reference"`
	PaymentInstructions string `json:"payment_instructions"`
}

type DepositConfirmationResponse struct {
	ConfirmationID string `json:"confirmation_id"`
	DepositID      string `json:"deposit_id"`
	CardID         string `json:"card_id"`
	NewBalance     string `json:"new_balance"`
	Status         string `json:"status"`
}

// FailDepositRequest carries the escrow channel's rejection reason
type FailDepositRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type CreateWithdrawalRequest struct {
	CardID        string          `json:"card_id" binding:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method" binding:"required"`
	MethodDetails json.RawMessage `json:"method_details"`
}

type WithdrawalResponse struct {
	WithdrawalID           string `json:"withdrawal_id"`
	CardID                 string `json:"card_id"`
	Amount                 string `json:"amount"`
	Fee                    string `json:"fee"`
	TotalDeducted          string `json:"total_deducted"`
	NewBalance             string `json:"new_balance"`
	Method                 string `json:"method"`
	Status                 string `json:"status"`
	Reference              string `json:"reference"`
	ProcessingInstructions string `json:"processing_instructions"`
}

type CreateTransferRequest struct {
	SourceCardID    string          `json:"source_card_id" binding:"required,uuid"`
	RecipientCardID string          `json:"recipient_card_id" binding:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"`
	RecipientLabel  string          `json:"recipient_label" binding:"max=120"`
}

type TransferResponse struct {
	TransferID          string `json:"transfer_id"`
	SourceCardID        string `json:"source_card_id"`
	RecipientCardID     string `json:"recipient_card_id"`
	Amount              string `json:"amount"`
	NewBalance          string `json:"new_balance"`
	RecipientNewBalance string `json:"recipient_new_balance"`
	Status              string `json:"status"`
	Reference           string `json:"reference"`
}

// TransactionResponse represents a transaction record in API responses
type TransactionResponse struct {
	TransactionID      string            `json:"transaction_id"`
	CardID             string            `json:"card_id"`
	Type               string            `json:"type"`
	Amount             string            `json:"amount"`
	Fee                string            `json:"fee"`
	Currency           string            `json:"currency"`
	Status             string            `json:"status"`
	ParentID           string            `json:"parent_id,omitempty"`
	CounterpartyCardID string            `json:"counterparty_card_id,omitempty"`
	CounterpartyLabel  string            `json:"counterparty_label,omitempty"`
	Method             string            `json:"method,omitempty"`
	MethodDetails      map[string]string `json:"method_details,omitempty"`
	Reference          string            `json:"reference"`
	ConfirmationID     string            `json:"confirmation_id,omitempty"`
	FailureReason      string            `json:"failure_reason,omitempty"`
	CreatedAt          string            `json:"created_at"`
	ConfirmedAt        string            `json:"confirmed_at,omitempty"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(shared.MoneyScale)
}

func mapCardToResponse(c *card.Card) CardResponse {
	return CardResponse{
		ID:        c.ID.String(),
		OwnerID:   c.OwnerID,
		Balance:   money(c.Balance),
		Currency:  c.Currency,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func mapDepositReceipt(r *ledger.DepositReceipt) DepositResponse {
	return DepositResponse{
		DepositID:           r.DepositID.String(),
		CardID:              r.CardID.String(),
		Amount:              money(r.Amount),
		Currency:            r.Currency,
		Method:              string(r.Method),
		Status:              string(r.Status),
		Reference:           r.Reference,
		PaymentInstructions: r.PaymentInstructions,
	}
}

func mapDepositConfirmation(r *ledger.DepositConfirmation) DepositConfirmationResponse {
	return DepositConfirmationResponse{
		ConfirmationID: r.ConfirmationID,
		DepositID:      r.DepositID.String(),
		CardID:         r.CardID.String(),
		NewBalance:     money(r.NewBalance),
		Status:         string(r.Status),
	}
}

func mapWithdrawalReceipt(r *ledger.WithdrawalReceipt) WithdrawalResponse {
	return WithdrawalResponse{
		WithdrawalID:           r.WithdrawalID.String(),
		CardID:                 r.CardID.String(),
		Amount:                 money(r.Amount),
		Fee:                    money(r.Fee),
		TotalDeducted:          money(r.TotalDeducted),
		NewBalance:             money(r.NewBalance),
		Method:                 string(r.Method),
		Status:                 string(r.Status),
		Reference:              r.Reference,
		ProcessingInstructions: r.ProcessingInstructions,
	}
}

func mapTransferReceipt(r *ledger.TransferReceipt) TransferResponse {
	return TransferResponse{
		TransferID:          r.TransferID.String(),
		SourceCardID:        r.SourceCardID.String(),
		RecipientCardID:     r.RecipientCardID.String(),
		Amount:              money(r.Amount),
		NewBalance:          money(r.NewBalance),
		RecipientNewBalance: money(r.RecipientNewBalance),
		Status:              string(r.Status),
		Reference:           r.Reference,
	}
}

// mapTransactionToResponse maps a transaction record to its response DTO
func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	response := TransactionResponse{
		TransactionID:     txn.ID.String(),
		CardID:            txn.CardID.String(),
		Type:              string(txn.Type),
		Amount:            money(txn.Amount),
		Fee:               money(txn.Fee),
		Currency:          txn.Currency,
		Status:            string(txn.Status),
		CounterpartyLabel: txn.CounterpartyLabel,
		Method:            txn.Method,
		MethodDetails:     txn.MethodDetails,
		Reference:         txn.Reference,
		ConfirmationID:    txn.ConfirmationID,
		FailureReason:     txn.FailureReason,
		CreatedAt:         txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.ParentID != nil {
		response.ParentID = txn.ParentID.String()
	}
	if txn.CounterpartyCardID != nil {
		response.CounterpartyCardID = txn.CounterpartyCardID.String()
	}
	if txn.ConfirmedAt != nil {
		response.ConfirmedAt = txn.ConfirmedAt.Format(time.RFC3339)
	}
	return response
}
