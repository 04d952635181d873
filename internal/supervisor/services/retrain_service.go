// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/recommend"
	"github.com/tomtom215/lodgerank/internal/recommend/model"
)

// ModelTrainer runs a training cycle and waits for the result. Satisfied
// by *training.Pipeline.
type ModelTrainer interface {
	Train(ctx context.Context) (*model.Artifact, error)
}

// RetrainServiceConfig holds the retraining schedule.
type RetrainServiceConfig struct {
	// TrainOnStartup runs a cycle as soon as the service starts.
	TrainOnStartup bool

	// Interval is the time between scheduled cycles.
	// Default: 168h
	Interval time.Duration
}

// RetrainService retrains the scoring model on a fixed schedule.
// Training failures are logged and never stop the service; the previous
// model keeps serving.
type RetrainService struct {
	trainer ModelTrainer
	config  RetrainServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewRetrainService creates the scheduled retraining service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetrainService(trainer ModelTrainer, cfg RetrainServiceConfig, logger zerolog.Logger) *RetrainService {
	if cfg.Interval <= 0 {
		cfg.Interval = 7 * 24 * time.Hour
	}
	return &RetrainService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "retrain").Logger(),
		name:    "retrain-service",
	}
}

// Serve implements suture.Service.
func (s *RetrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("interval", s.config.Interval).
		Msg("retrain service starting")

	if s.config.TrainOnStartup {
		s.train(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("retrain service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.train(ctx, "schedule")
		}
	}
}

func (s *RetrainService) train(ctx context.Context, reason string) {
	start := time.Now()
	artifact, err := s.trainer.Train(ctx)
	switch {
	case err == nil:
		s.logger.Info().
			Str("reason", reason).
			Str("artifact_id", artifact.Meta.ID).
			Int("version", artifact.Meta.Version).
			Int("samples", artifact.Meta.SampleCount).
			Float64("validation_loss", artifact.Meta.ValidationLoss).
			Dur("duration", time.Since(start)).
			Msg("model retrained")
	case errors.Is(err, recommend.ErrTrainingDataInsufficient):
		s.logger.Info().Err(err).Str("reason", reason).Msg("skipping retrain, not enough interactions")
	case ctx.Err() != nil:
		// Shutting down; the pipeline owns the run.
	default:
		s.logger.Warn().Err(err).Str("reason", reason).Msg("retrain failed, keeping current model")
	}
}

// String names the service in supervisor logs.
func (s *RetrainService) String() string {
	return s.name
}
