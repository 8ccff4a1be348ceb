package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jnfpayroll/auth-api/internal/app"
	"github.com/jnfpayroll/auth-api/internal/pkg/config"
	"github.com/jnfpayroll/auth-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-api",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.SecretKey == config.DefaultSecretKey {
		log.Warn().Msg("using the default SECRET_KEY; set one before deploying")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, app.Options{
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise application")
	}

	runErr := a.Run(ctx)
	if err := a.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to release resources")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}
