package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cardledger/internal/api_gateway/handler"
	"github.com/cardledger/internal/api_gateway/middleware"
	"github.com/cardledger/internal/api_gateway/service"
	"github.com/cardledger/internal/config"
	"github.com/cardledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server with the given services.
// m may be nil, in which case no /metrics route is mounted.
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	cardService service.CardService,
	ledgerService service.LedgerService,
	transactionService service.TransactionService,
	m *metrics.Metrics,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	cardHandler := handler.NewCardHandler(log, cardService)
	ledgerHandler := handler.NewLedgerHandler(log, ledgerService)
	transactionHandler := handler.NewTransactionHandler(log, transactionService)

	var metricsHandler http.Handler
	var recorder middleware.HTTPRecorder
	if m != nil {
		metricsHandler = m.Handler()
		recorder = m
	}
	setupRouter(log, httpRouter, cardHandler, ledgerHandler, transactionHandler, metricsHandler, recorder)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the configured router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server. In-flight requests get until
// timeout to finish.
func (s *Server) Stop(ctx context.Context, timeout time.Duration) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
