package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ordersvc/internal/catalog"
	"ordersvc/internal/config"
	"ordersvc/internal/database"
	"ordersvc/internal/handler"
	"ordersvc/internal/repository"
	"ordersvc/internal/router"
	"ordersvc/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting order service API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the database, applying pending schema migrations first
	pool, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories and the catalog adapter
	orderRepo := repository.NewOrderRepository(pool, logger)
	lineItemRepo := repository.NewLineItemRepository(pool, logger)
	historyRepo := repository.NewHistoryRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)
	productCatalog := catalog.New(pool, logger)

	// Initialize services
	orderService := service.NewOrderService(orderRepo, lineItemRepo, historyRepo, productCatalog, logger)
	statusService := service.NewStatusService(orderRepo, historyRepo, statsRepo, logger)
	lineItemService := service.NewLineItemService(orderRepo, lineItemRepo, productCatalog, logger)

	// Initialize HTTP handlers
	orderHandler := handler.NewOrderHandler(orderService, logger)
	statusHandler := handler.NewStatusHandler(statusService, logger)
	lineItemHandler := handler.NewLineItemHandler(lineItemService, logger)

	// Initialize router
	mux := router.New(orderHandler, statusHandler, lineItemHandler, cfg.Auth.JWTSecret, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
