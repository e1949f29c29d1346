package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ramen-kiosk/internal/config"
	"ramen-kiosk/internal/database"
	"ramen-kiosk/internal/ledger"
	"ramen-kiosk/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting kiosk server")

	// The menu config is loaded exactly once and shared read-only by
	// every session for the process lifetime.
	menuCfg, err := config.LoadMenuConfig(cfg.Menu.Path)
	if err != nil {
		return fmt.Errorf("failed to load menu config: %w", err)
	}
	logger.Info().
		Str("path", cfg.Menu.Path).
		Int("bases", len(menuCfg.Menu.Bases)).
		Int("toppings", len(menuCfg.Menu.Toppings)).
		Msg("menu config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	orderLedger := ledger.NewPostgresLedger(pool, logger)

	srv, err := server.New(menuCfg, orderLedger, cfg.Assets.Dir, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// No read/write timeouts: kiosk sessions are long-lived websockets.
	httpServer := &http.Server{
		Addr:        cfg.Server.Address(),
		Handler:     srv.Handler(),
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := httpServer.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
