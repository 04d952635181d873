// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/api"
	"github.com/tomtom215/lodgerank/internal/cache"
	"github.com/tomtom215/lodgerank/internal/config"
	"github.com/tomtom215/lodgerank/internal/database"
	"github.com/tomtom215/lodgerank/internal/feedback"
	"github.com/tomtom215/lodgerank/internal/recommend"
	"github.com/tomtom215/lodgerank/internal/recommend/features"
	"github.com/tomtom215/lodgerank/internal/recommend/heuristic"
	"github.com/tomtom215/lodgerank/internal/recommend/model"
	"github.com/tomtom215/lodgerank/internal/recommend/storage"
	"github.com/tomtom215/lodgerank/internal/recommend/training"
	"github.com/tomtom215/lodgerank/internal/supervisor"
	"github.com/tomtom215/lodgerank/internal/supervisor/services"
)

// app owns every long-lived component. Close releases them in reverse
// order of creation.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	db        *database.DB
	cache     cache.Backend
	bus       *feedback.Bus
	publisher *feedback.Publisher
	pipeline  *training.Pipeline
	engine    *recommend.Engine

	closers []func()
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if err := a.openStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openBus(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildEngine(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases resources, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) openStorage(ctx context.Context) error {
	db, err := database.New(&a.cfg.Database, a.logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = db
	a.onClose(func() {
		if err := db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing database")
		}
	})
	a.logger.Info().Str("path", a.cfg.Database.Path).Msg("Database initialized")

	c, err := cache.Open(ctx, a.cfg.Cache)
	if err != nil {
		return fmt.Errorf("open %s cache: %w", a.cfg.Cache.Backend, err)
	}
	a.cache = c
	a.onClose(func() {
		if err := c.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing cache")
		}
	})
	a.logger.Info().Str("backend", a.cfg.Cache.Backend).Msg("Cache initialized")
	return nil
}

func (a *app) openBus() error {
	bus, err := feedback.OpenBus(a.cfg.Broker, a.logger)
	if err != nil {
		return fmt.Errorf("open feedback bus: %w", err)
	}
	a.bus = bus
	a.onClose(func() {
		if err := bus.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing feedback bus")
		}
	})

	a.publisher = feedback.NewPublisher(bus.Publisher, bus.Topic)
	a.onClose(func() { _ = a.publisher.Close() })

	a.logger.Info().Str("backend", bus.Backend).Str("topic", bus.Topic).Msg("Feedback bus initialized")
	return nil
}

func (a *app) buildEngine(ctx context.Context) error {
	rcfg := &a.cfg.Recommend

	var catalog recommend.CatalogStore = a.db
	if a.cfg.Breaker.Enabled {
		catalog = database.NewBreakerCatalog(a.db, a.cfg.Breaker, a.logger)
	}

	encoder := features.NewEncoder(features.LayoutV1)
	scorer := model.New(encoder.LayoutVersion(), a.logger)

	store, err := storage.NewStore(a.cfg.Models.Dir, a.cfg.Models.Name)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	if err := scorer.Load(ctx, store); err != nil && !errors.Is(err, model.ErrNoArtifact) {
		a.logger.Warn().Err(err).Msg("Persisted model not loaded, serving heuristic scores until retrained")
	}

	pipeline, err := training.NewPipeline(rcfg, a.db, encoder, scorer, store, a.logger)
	if err != nil {
		return fmt.Errorf("create training pipeline: %w", err)
	}
	a.pipeline = pipeline
	a.onClose(pipeline.Close)

	engine, err := recommend.NewEngine(rcfg, recommend.Deps{
		Users:        a.db,
		Catalog:      catalog,
		Interactions: a.db,
		Activity:     a.db,
		Cache:        a.cache,
		Publisher:    a.publisher,
		Encoder:      encoder,
		Heuristic:    heuristic.New(rcfg.Weights, rcfg.Heuristic),
		Model:        scorer,
		Trainer:      pipeline,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("create recommendation engine: %w", err)
	}
	a.engine = engine

	pipeline.OnSwap(func(artifact *model.Artifact) {
		a.logger.Info().Str("artifact_id", artifact.Meta.ID).Msg("Model swapped, invalidating cached recommendations")
		engine.InvalidateRecommendations(context.Background())
	})
	return nil
}

// register adds the supervised services to tree.
func (a *app) register(tree *supervisor.SupervisorTree) {
	tree.AddTrainingService(services.NewRetrainService(a.pipeline, services.RetrainServiceConfig{
		TrainOnStartup: a.cfg.Recommend.Training.OnStartup,
		Interval:       a.cfg.Recommend.Training.Interval,
	}, a.logger))

	consumerCfg := feedback.ConsumerConfig{
		RetryCount:    a.cfg.Broker.RetryCount,
		RetryInterval: a.cfg.Broker.RetryInterval,
	}
	tree.AddMessagingService(services.NewFeedbackConsumerService(func() (services.FeedbackConsumer, error) {
		return feedback.NewConsumer(a.bus, feedback.InvalidateOnFeedback(a.engine), consumerCfg, a.logger)
	}, a.logger))

	tree.AddAPIService(services.NewHTTPServerService(a.httpServer(), a.cfg.Server.ShutdownTimeout))
}

func (a *app) httpServer() *http.Server {
	handler := api.NewHandler(a.engine, a.db, api.HandlerConfig{
		RetrainPerHour: a.cfg.API.RetrainPerHour,
	})

	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = a.cfg.API.CORSOrigins
	mw.RateLimitRequests = a.cfg.API.RateLimitReqs
	mw.RateLimitWindow = a.cfg.API.RateLimitWindow
	mw.RateLimitDisabled = a.cfg.API.RateLimitDisabled

	addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port))
	a.logger.Info().Str("addr", addr).Msg("HTTP server configured")

	return &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(handler, mw).Setup(),
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}
