package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ramen-kiosk/internal/assets"
	"ramen-kiosk/internal/config"
	"ramen-kiosk/internal/kiosk"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadKiosk()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("server", cfg.ServerURL()).Msg("starting kiosk")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Nothing can render before the config arrives, so a failed handshake
	// is fatal.
	conn, err := kiosk.Dial(ctx, cfg.ServerURL(), logger)
	if err != nil {
		return fmt.Errorf("cannot start: %w", err)
	}
	defer conn.Close()

	handshakeCtx, handshakeCancel := context.WithTimeout(ctx, 30*time.Second)
	menuCfg, err := conn.FetchConfig(handshakeCtx)
	handshakeCancel()
	if err != nil {
		return fmt.Errorf("cannot start: %w", err)
	}

	// Prefetch tolerates partial failure; missing images degrade single
	// tiles, not the whole kiosk.
	source, err := newAssetSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	prefetcher := assets.NewPrefetcher(source, cfg.AssetDir, logger)
	for _, report := range prefetcher.Prefetch(ctx, menuCfg) {
		if report.Err != nil {
			logger.Warn().Err(report.Err).Str("asset", report.Name).Msg("asset unavailable")
		}
	}

	machine := kiosk.NewMachine(menuCfg, conn, logger)
	machine.SetResetDelay(cfg.ResetDelay)
	machine.OnStageChange(func(stage kiosk.Stage) {
		// The UI layer hangs its rendering off this callback.
		logger.Info().Str("stage", stage.String()).Msg("stage changed")
	})
	conn.OnSubmitError(func(err error) {
		// Rendered by the UI layer as the "cannot submit order" state.
		logger.Error().Err(err).Msg("order submission failed")
	})

	logger.Info().Msg("kiosk ready")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown

	logger.Info().Str("signal", sig.String()).Msg("shutting down")
	return nil
}

// newAssetSource picks the configured asset backend: the kiosk server's
// /assets route by default, S3 when enabled.
func newAssetSource(ctx context.Context, cfg *config.KioskConfig, logger zerolog.Logger) (assets.Source, error) {
	if cfg.S3.Enabled {
		source, err := assets.NewS3Source(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 asset source, falling back to HTTP")
			return assets.NewHTTPSource(cfg.AssetBaseURL(), logger), nil
		}
		return source, nil
	}
	return assets.NewHTTPSource(cfg.AssetBaseURL(), logger), nil
}
