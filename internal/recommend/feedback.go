// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/metrics"
	"github.com/tomtom215/lodgerank/internal/validation"
)

// FeedbackRecorder records outcome events for future retraining.
type FeedbackRecorder struct {
	store     InteractionStore
	publisher FeedbackPublisher
	cache     Cache
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFeedbackRecorder creates a recorder. publisher and cache may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFeedbackRecorder(store InteractionStore, publisher FeedbackPublisher, cache Cache, logger zerolog.Logger) *FeedbackRecorder {
	return &FeedbackRecorder{
		store:     store,
		publisher: publisher,
		cache:     cache,
		logger:    logger.With().Str("component", "feedback").Logger(),
		now:       time.Now,
	}
}

// Record validates and persists a feedback event, forwards it to the
// publisher and invalidates the user's cached recommendations. Publish
// and invalidation failures are logged, not returned.
//
//nolint:gocritic // hugeParam: event passed by value, it is stamped locally
func (r *FeedbackRecorder) Record(ctx context.Context, event FeedbackEvent) error {
	if err := validateStruct(&event); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now().UTC()
	}

	if err := r.store.RecordFeedback(ctx, event); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	metrics.FeedbackEvents.WithLabelValues(string(event.Type)).Inc()

	if r.publisher != nil {
		if err := r.publisher.PublishFeedback(ctx, event); err != nil {
			metrics.FeedbackPublishErrors.Inc()
			r.logger.Warn().Err(err).
				Int("user_id", event.UserID).
				Int("item_id", event.ItemID).
				Msg("failed to publish feedback event")
		}
	}

	if r.cache != nil {
		if err := r.cache.DeletePrefix(ctx, userKeyPrefix(event.UserID)); err != nil {
			metrics.CacheErrors.WithLabelValues("invalidate").Inc()
			r.logger.Warn().Err(err).Int("user_id", event.UserID).Msg("failed to invalidate cached recommendations")
		}
	}

	r.logger.Debug().
		Int("user_id", event.UserID).
		Int("item_id", event.ItemID).
		Str("type", string(event.Type)).
		Int("rating", event.Rating).
		Msg("feedback recorded")

	return nil
}

// validateStruct runs struct tag validation and maps the first failure to
// a *ValidationError.
func validateStruct(s interface{}) error {
	if verr := validation.ValidateStruct(s); verr != nil {
		first := verr.First()
		return &ValidationError{Field: first.Field(), Message: first.Error()}
	}
	return nil
}
