package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/goflicks/internal/api"
	"github.com/amaumene/goflicks/internal/config"
	"github.com/amaumene/goflicks/internal/models"
	"github.com/amaumene/goflicks/internal/services/auth"
	"github.com/amaumene/goflicks/internal/services/imdb"
	"github.com/amaumene/goflicks/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Goflicks")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize token verifier
	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	logger.Info("Token verifier initialized")

	// 5. Initialize IMDB client
	catalog, err := imdb.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize IMDB client: %w", err)
	}
	logger.Info("IMDB client initialized")

	// 6. Initialize HTTP server
	server := api.NewServer(cfg, db, catalog, verifier, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 7. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Goflicks is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Goflicks stopped")
	return nil
}
