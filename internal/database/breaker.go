// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package database

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lodgerank/internal/config"
	"github.com/tomtom215/lodgerank/internal/metrics"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// BreakerCatalog wraps a CatalogStore with a circuit breaker so a failing
// catalog is rejected fast instead of holding every request until its
// retrieval timeout.
//
// The breaker uses real time for its interval and timeout; tests drive it
// through consecutive failures rather than the clock.
type BreakerCatalog struct {
	store  recommend.CatalogStore
	cb     *gobreaker.CircuitBreaker[[]recommend.ItemProfile]
	name   string
	logger zerolog.Logger
}

// NewBreakerCatalog wraps store. The circuit opens after
// cfg.FailureThreshold consecutive failures and probes again after cfg.Timeout.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerCatalog(store recommend.CatalogStore, cfg config.BreakerConfig, logger zerolog.Logger) *BreakerCatalog {
	name := "catalog"
	logger = logger.With().Str("component", "circuit_breaker").Str("breaker", name).Logger()

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]recommend.ItemProfile](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= threshold
			if shouldTrip {
				logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logger.Info().Str("from", fromStr).Str("to", toStr).Msg("Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		IsSuccessful: func(err error) bool {
			return !isBreakerFailure(err)
		},
	})

	return &BreakerCatalog{
		store:  store,
		cb:     cb,
		name:   name,
		logger: logger,
	}
}

// execute runs fn under the breaker and records the outcome.
func (b *BreakerCatalog) execute(fn func() ([]recommend.ItemProfile, error)) ([]recommend.ItemProfile, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			b.logger.Debug().Err(err).Msg("Request rejected")
		} else if isBreakerFailure(err) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			b.logger.Debug().Err(err).Str("kind", errorKind(err)).Msg("Catalog request failed")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// State returns the breaker state name.
func (b *BreakerCatalog) State() string {
	return stateToString(b.cb.State())
}

// QueryCandidates queries the catalog with circuit breaker protection.
//
//nolint:gocritic // hugeParam: CandidateQuery is part of the port signature
func (b *BreakerCatalog) QueryCandidates(ctx context.Context, q recommend.CandidateQuery) ([]recommend.ItemProfile, error) {
	return b.execute(func() ([]recommend.ItemProfile, error) {
		return b.store.QueryCandidates(ctx, q)
	})
}

// GetItems loads items with circuit breaker protection.
func (b *BreakerCatalog) GetItems(ctx context.Context, ids []int) ([]recommend.ItemProfile, error) {
	return b.execute(func() ([]recommend.ItemProfile, error) {
		return b.store.GetItems(ctx, ids)
	})
}

// errorKind classifies a store error for logging.
func errorKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case isConnectionError(err):
		return "connection"
	case isInternalError(err):
		return "internal"
	default:
		return "query"
	}
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

var _ recommend.CatalogStore = (*BreakerCatalog)(nil)
