package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory/internal/app"
	"inventory/internal/config"
	"inventory/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(cfg.LogLevel)

	// --- Wiring ---
	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- application.Listen()
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down server")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server stopped unexpectedly")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}
	if err := application.Close(); err != nil {
		logger.Error().Err(err).Msg("error releasing resources")
	}
	logger.Info().Msg("server gracefully stopped")
}
