// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package main is the entry point for the LodgeRank recommendation server.
//
// Startup order:
//
//  1. Configuration (Koanf v2: defaults, optional config.yaml, environment)
//  2. DuckDB store, wrapped in a circuit breaker for catalog reads
//  3. Result cache (memory, badger or redis)
//  4. Scoring model, restored from the newest persisted artifact
//  5. Training pipeline and recommendation engine
//  6. Feedback bus (in-process gochannel, or NATS with -tags=nats)
//  7. Supervisor tree: retrain schedule, feedback consumer, HTTP server
//
// The server shuts down gracefully on SIGINT and SIGTERM.
//
// Build tags:
//
//	go build ./cmd/server               # in-process feedback bus
//	go build -tags nats ./cmd/server    # NATS JetStream feedback bus
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/lodgerank/internal/config"
	"github.com/tomtom215/lodgerank/internal/logging"
	"github.com/tomtom215/lodgerank/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("cache_backend", cfg.Cache.Backend).
		Str("broker_backend", cfg.Broker.Backend).
		Msg("Starting LodgeRank")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel called explicitly above
	}
	defer app.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	app.register(tree)

	logger.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received, waiting for services")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree error during shutdown")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree stopped unexpectedly")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	logger.Info().Msg("LodgeRank stopped")
}
