package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/cardledger/internal/api_gateway/middleware"
	"github.com/cardledger/internal/api_gateway/service"
	"github.com/cardledger/internal/domain/payment"
	"github.com/cardledger/internal/ledger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles deposits, withdrawals and transfers
type LedgerHandler struct {
	ledgerService service.LedgerService
	logger        *slog.Logger
}

func NewLedgerHandler(logger *slog.Logger, ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// CreateDeposit records a pending deposit and returns escrow payment instructions
func (h *LedgerHandler) CreateDeposit(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	var req CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	details, err := payment.Decode(req.Method, req.MethodDetails)
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	receipt, err := h.ledgerService.CreateDeposit(c.Request.Context(), ledger.DepositRequest{
		CardID:        uuid.MustParse(req.CardID),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Details:       details,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	RespondCreated(c, mapDepositReceipt(receipt))
}

// ConfirmDeposit credits a pending deposit once its escrow funds have arrived
func (h *LedgerHandler) ConfirmDeposit(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	id, ok := parseIDParam(c, logger, "id", "deposit")
	if !ok {
		return
	}

	confirmation, err := h.ledgerService.ConfirmDeposit(c.Request.Context(), id, middleware.GetCorrelationID(c))
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	RespondOK(c, mapDepositConfirmation(confirmation))
}

// FailDeposit terminalizes a pending deposit rejected by its escrow channel.
// The body is optional.
func (h *LedgerHandler) FailDeposit(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	id, ok := parseIDParam(c, logger, "id", "deposit")
	if !ok {
		return
	}

	var req FailDepositRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("Invalid request body", "error", err)
			RespondBadRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	failed, err := h.ledgerService.FailDeposit(c.Request.Context(), id, req.Reason, middleware.GetCorrelationID(c))
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	RespondOK(c, mapTransactionToResponse(failed))
}

// Withdraw pays out card funds and charges the method fee
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	details, err := payment.Decode(req.Method, req.MethodDetails)
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	receipt, err := h.ledgerService.Withdraw(c.Request.Context(), ledger.WithdrawalRequest{
		CardID:        uuid.MustParse(req.CardID),
		Amount:        req.Amount,
		Details:       details,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	RespondCreated(c, mapWithdrawalReceipt(receipt))
}

// Transfer moves funds between two cards
func (h *LedgerHandler) Transfer(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	receipt, err := h.ledgerService.Transfer(c.Request.Context(), ledger.TransferRequest{
		SourceCardID:    uuid.MustParse(req.SourceCardID),
		RecipientCardID: uuid.MustParse(req.RecipientCardID),
		Amount:          req.Amount,
		RecipientLabel:  req.RecipientLabel,
		CorrelationID:   middleware.GetCorrelationID(c),
	})
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	RespondCreated(c, mapTransferReceipt(receipt))
}
