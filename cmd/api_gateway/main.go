package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardledger/internal/api_gateway"
	"github.com/cardledger/internal/api_gateway/service"
	"github.com/cardledger/internal/config"
	"github.com/cardledger/internal/data/memory"
	"github.com/cardledger/internal/data/mongo"
	"github.com/cardledger/internal/data/postgres"
	"github.com/cardledger/internal/domain/transaction"
	"github.com/cardledger/internal/ledger"
	"github.com/cardledger/internal/logger"
	"github.com/cardledger/internal/platform/metrics"
	"github.com/cardledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)
	m := metrics.New()

	var (
		store      ledger.Store
		history    transaction.HistoryReader
		postgresDB *persistence.PostgresDB
		mongoDB    *persistence.MongoDB
	)

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		// Migrations run as part of pool initialization
		postgresDB, err = persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
		if err != nil {
			log.Error("Failed to initialize PostgreSQL", "error", err)
			os.Exit(1)
		}

		mongoDB, err = persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
		if err != nil {
			log.Error("Failed to initialize MongoDB", "error", err)
			os.Exit(1)
		}

		historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())
		if err := historyRepo.EnsureIndexes(appCtx); err != nil {
			log.Error("Failed to ensure history indexes", "error", err)
			os.Exit(1)
		}

		store = postgres.NewStore(log, postgresDB)
		history = historyRepo
	default:
		log.Warn("Using in-memory ledger store, state is lost on restart")
		memStore := memory.NewStore()
		store = memStore
		history = memStore
	}

	engine := ledger.NewEngine(store, ledger.ConfigFromSettings(cfg, m), log)

	// Initialize services
	cardService := service.NewCardService(log, engine)
	transactionService := service.NewTransactionService(log, engine, history)

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, cardService, engine, transactionService, m)
	log.Info("REST server initialized", "store", cfg.Store.Driver)

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Drain HTTP requests before the pools they use go away
	if err = server.Stop(shutdownCtx, cfg.Server.ShutdownTimeout); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if postgresDB != nil {
		postgresDB.Close()
	}

	if mongoDB != nil {
		if closeErr := mongoDB.Close(shutdownCtx); closeErr != nil {
			log.Error("Error closing MongoDB connection", "error", closeErr)
			err = closeErr
		}
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
