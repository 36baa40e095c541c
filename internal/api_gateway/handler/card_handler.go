package handler

import (
	"log/slog"

	"github.com/cardledger/internal/api_gateway/middleware"
	"github.com/cardledger/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CardHandler handles HTTP requests for the card registry
type CardHandler struct {
	cardService service.CardService
	logger      *slog.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(logger *slog.Logger, cardService service.CardService) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		logger:      logger,
	}
}

// Issue opens a new active card
func (h *CardHandler) Issue(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	var req IssueCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	issued, err := h.cardService.IssueCard(c.Request.Context(), req.OwnerID, req.Currency, req.InitialBalance)
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	RespondCreated(c, mapCardToResponse(issued))
}

// GetByID retrieves a card with its current balance
func (h *CardHandler) GetByID(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	id, ok := parseIDParam(c, logger, "id", "card")
	if !ok {
		return
	}

	found, err := h.cardService.GetCard(c.Request.Context(), id)
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	RespondOK(c, mapCardToResponse(found))
}

// Deactivate stops a card from taking part in new movements
func (h *CardHandler) Deactivate(c *gin.Context) {
	logger := middleware.GetLogger(c, h.logger)

	id, ok := parseIDParam(c, logger, "id", "card")
	if !ok {
		return
	}

	deactivated, err := h.cardService.DeactivateCard(c.Request.Context(), id)
	if err != nil {
		RespondLedgerError(c, logger, err)
		return
	}

	logger.Info("Card deactivated", "card_id", id.String())
	RespondOK(c, mapCardToResponse(deactivated))
}

// parseIDParam responds 400 and returns false when the path parameter is not a UUID
func parseIDParam(c *gin.Context, logger *slog.Logger, param, resource string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid "+resource+" ID", "id", raw, "error", err)
		RespondBadRequest(c, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}
