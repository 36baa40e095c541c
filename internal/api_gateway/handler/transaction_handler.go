package handler

import (
	"log/slog"
	"net/http"

	"github.com/cardledger/internal/api_gateway/middleware"
	"github.com/cardledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles HTTP requests for transaction queries
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// GetByID retrieves transaction details by its ID, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	id, ok := parseIDParam(c, logger, "id", "transaction")
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// GetByCardID retrieves paginated transaction history for a card, newest first
func (h *TransactionHandler) GetByCardID(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	cardID, ok := parseIDParam(c, logger, "id", "card")
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		logger.Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	txns, total, err := h.transactionService.GetTransactionsByCardID(
		c.Request.Context(),
		cardID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	transactions := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		transactions = append(transactions, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, http.StatusOK, transactions, pagination.Page, pagination.PerPage, int(total))
}
