// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package api

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Service is the recommendation surface exposed over HTTP. Satisfied by
// *recommend.Engine.
type Service interface {
	GetRecommendations(ctx context.Context, userID int, opts recommend.Options) ([]recommend.ScoredCandidate, error)
	GetSimilarItems(ctx context.Context, itemID, limit int) ([]recommend.ScoredCandidate, error)
	GetTrending(ctx context.Context, period string, limit int) ([]recommend.ScoredCandidate, error)
	RecordFeedback(ctx context.Context, event recommend.FeedbackEvent) error
	GetFeedbackStats(ctx context.Context) (recommend.FeedbackStats, error)
	Retrain() (recommend.JobHandle, error)
	GetModelStats() recommend.ModelStats
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HandlerConfig tunes request handling.
type HandlerConfig struct {
	// RetrainPerHour caps on-demand retrain triggers. 0 disables the cap.
	RetrainPerHour int

	// RequestTimeout bounds each recommendation request.
	// Default: 10s
	RequestTimeout time.Duration

	// MaxBodyBytes bounds JSON request bodies.
	// Default: 64KiB
	MaxBodyBytes int64
}

// Handler serves the recommendation endpoints.
type Handler struct {
	service        Service
	db             HealthChecker
	retrainLimiter *rate.Limiter
	config         HandlerConfig
	startTime      time.Time
}

// NewHandler creates a handler. db may be nil.
func NewHandler(service Service, db HealthChecker, cfg HandlerConfig) *Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}

	h := &Handler{
		service:   service,
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
	if cfg.RetrainPerHour > 0 {
		h.retrainLimiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(cfg.RetrainPerHour)), cfg.RetrainPerHour)
	}
	return h
}

var _ Service = (*recommend.Engine)(nil)
