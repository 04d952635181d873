// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"context"
	"time"
)

// UserStore provides user demographics.
type UserStore interface {
	// GetProfile returns the user's demographics, or ErrNotFound.
	GetProfile(ctx context.Context, userID int) (*UserProfile, error)
}

// CatalogStore provides catalog items.
type CatalogStore interface {
	// QueryCandidates returns items matching the query, at most q.Limit.
	QueryCandidates(ctx context.Context, q CandidateQuery) ([]ItemProfile, error)

	// GetItems returns the items with the given IDs. Unknown IDs are skipped.
	GetItems(ctx context.Context, ids []int) ([]ItemProfile, error)
}

// InteractionStore provides interaction history and accepts feedback.
type InteractionStore interface {
	// QueryHistory returns the user's most recent completed bookings,
	// newest first, at most limit records.
	QueryHistory(ctx context.Context, userID, limit int) ([]InteractionRecord, error)

	// BookedItems returns the IDs of every item the user has booked.
	BookedItems(ctx context.Context, userID int) ([]int, error)

	// RecordFeedback appends a feedback event.
	RecordFeedback(ctx context.Context, event FeedbackEvent) error
}

// ActivityStore provides aggregated interaction activity.
type ActivityStore interface {
	// ItemActivity returns per-item activity since the given time for
	// active items with at least one booking in the window.
	ItemActivity(ctx context.Context, since time.Time, limit int) ([]ItemActivity, error)

	// FeedbackStats summarizes all recorded feedback. Last24h counts
	// events after now minus 24 hours.
	FeedbackStats(ctx context.Context, now time.Time) (FeedbackStats, error)
}

// TrainingSource provides joined training examples.
type TrainingSource interface {
	// QueryTrainingWindow returns up to limit examples recorded after since,
	// newest first.
	QueryTrainingWindow(ctx context.Context, since time.Time, limit int) ([]TrainingExample, error)
}

// Cache is a TTL key/value store for serialized results.
type Cache interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// FeedbackPublisher forwards recorded feedback to downstream consumers.
type FeedbackPublisher interface {
	PublishFeedback(ctx context.Context, event FeedbackEvent) error
}

// Encoder builds feature vectors. Implementations must be pure.
type Encoder interface {
	Encode(user *UserProfile, item *ItemProfile, ectx EncodeContext) FeatureVector
	LayoutVersion() string
}

// Scorer is the rule-based fallback scorer. It never fails.
type Scorer interface {
	Score(user *UserProfile, item *ItemProfile) (float64, string)
}

// Predictor is the serving side of the scoring model.
type Predictor interface {
	// Ready reports whether an artifact is loaded.
	Ready() bool

	// Predict scores a vector, or returns ErrModelUnavailable.
	Predict(v FeatureVector) (float64, error)

	// Snapshot describes the served artifact.
	Snapshot() ModelSnapshot
}

// JobHandle tracks an asynchronous training run.
type JobHandle interface {
	ID() string
	StartedAt() time.Time
	Done() <-chan struct{}
	Err() error
}

// Trainer starts training runs out of band.
type Trainer interface {
	// Trigger starts a run, or returns the in-flight one.
	Trigger() JobHandle

	// InProgress reports whether a run is active.
	InProgress() bool
}
