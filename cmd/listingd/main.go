// Command listingd serves the property listing API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-property-listing/internal/config"
	"github.com/goliatone/go-property-listing/internal/logging"
	"github.com/goliatone/go-property-listing/pkg/di"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := logging.Logger()
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		logger := logging.Logger()
		logger.Fatal().Err(err).Msg("failed to initialise")
	}
	logger := container.Logger()

	errc := make(chan error, 1)
	go func() { errc <- container.Server().Start() }()

	select {
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := container.Server().Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
	if err := container.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("close failed")
	}
}
