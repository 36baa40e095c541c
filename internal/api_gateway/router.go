package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cardledger/internal/api_gateway/handler"
	"github.com/cardledger/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	cardHandler *handler.CardHandler,
	ledgerHandler *handler.LedgerHandler,
	transactionHandler *handler.TransactionHandler,
	metricsHandler http.Handler,
	recorder middleware.HTTPRecorder,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	if recorder != nil {
		r.Use(middleware.Metrics(recorder))
	}

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		cards := v1.Group("/cards")
		{
			cards.POST("", cardHandler.Issue)
			cards.GET("/:id", cardHandler.GetByID)
			cards.POST("/:id/deactivate", cardHandler.Deactivate)
			cards.GET("/:id/transactions", transactionHandler.GetByCardID)
		}

		deposits := v1.Group("/deposits")
		{
			deposits.POST("", ledgerHandler.CreateDeposit)
			deposits.POST("/:id/confirm", ledgerHandler.ConfirmDeposit)
			deposits.POST("/:id/fail", ledgerHandler.FailDeposit)
		}

		v1.POST("/withdrawals", ledgerHandler.Withdraw)
		v1.POST("/transfers", ledgerHandler.Transfer)
		v1.GET("/transactions/:id", transactionHandler.GetByID)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
