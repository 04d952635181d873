// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights are the heuristic factor weights. They are normalized at
	// runtime, so they don't need to sum to 1.0.
	Weights HeuristicWeights `json:"weights" koanf:"weights"`

	// Heuristic contains the factor thresholds of the heuristic scorer.
	Heuristic HeuristicConfig `json:"heuristic" koanf:"heuristic"`

	// Model contains scoring network hyperparameters.
	Model ModelConfig `json:"model" koanf:"model"`

	// Training contains training schedule and data window parameters.
	Training TrainingConfig `json:"training" koanf:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits" koanf:"limits"`

	// Cache contains result cache TTLs.
	Cache CacheConfig `json:"cache" koanf:"cache"`

	// ProfileHistory is the number of recent bookings used to derive
	// user preferences.
	// Default: 20.
	ProfileHistory int `json:"profile_history" koanf:"profile_history"`

	// ServingAdvanceDays is the booking lead time encoded when scoring
	// live requests, which carry no stay date.
	// Default: 36.
	ServingAdvanceDays int `json:"serving_advance_days" koanf:"serving_advance_days"`
}

// HeuristicWeights defines the contribution of each heuristic factor.
type HeuristicWeights struct {
	Rating     float64 `json:"rating" koanf:"rating"`
	Location   float64 `json:"location" koanf:"location"`
	Amenities  float64 `json:"amenities" koanf:"amenities"`
	Budget     float64 `json:"budget" koanf:"budget"`
	Popularity float64 `json:"popularity" koanf:"popularity"`
}

// Normalize returns a copy with weights normalized to sum to 1.0.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w HeuristicWeights) Normalize() HeuristicWeights {
	sum := w.Rating + w.Location + w.Amenities + w.Budget + w.Popularity
	if sum <= 0 {
		return DefaultWeights()
	}
	return HeuristicWeights{
		Rating:     w.Rating / sum,
		Location:   w.Location / sum,
		Amenities:  w.Amenities / sum,
		Budget:     w.Budget / sum,
		Popularity: w.Popularity / sum,
	}
}

// DefaultWeights returns the stock heuristic weights.
func DefaultWeights() HeuristicWeights {
	return HeuristicWeights{
		Rating:     0.4,
		Location:   0.2,
		Amenities:  0.2,
		Budget:     0.1,
		Popularity: 0.1,
	}
}

// HeuristicConfig contains heuristic factor thresholds.
type HeuristicConfig struct {
	// ExcellentRating is the rating at or above which the rating factor
	// contributes a reason phrase.
	// Default: 4.5.
	ExcellentRating float64 `json:"excellent_rating" koanf:"excellent_rating"`

	// AmenityOverlap is the overlap ratio above which the amenity factor
	// contributes a reason phrase.
	// Default: 0.5.
	AmenityOverlap float64 `json:"amenity_overlap" koanf:"amenity_overlap"`

	// PopularityThreshold is the recent booking count above which an item
	// counts as popular.
	// Default: 10.
	PopularityThreshold int `json:"popularity_threshold" koanf:"popularity_threshold"`
}

// ModelConfig contains scoring network hyperparameters.
type ModelConfig struct {
	// Hidden lists hidden layer widths.
	// Default: [32, 16].
	Hidden []int `json:"hidden" koanf:"hidden"`

	// LearningRate is the Adam step size.
	// Default: 0.001.
	LearningRate float64 `json:"learning_rate" koanf:"learning_rate"`

	// L2 is the weight decay coefficient.
	// Default: 0.01.
	L2 float64 `json:"l2" koanf:"l2"`

	// Epochs is the maximum number of passes over the training set.
	// Default: 100.
	Epochs int `json:"epochs" koanf:"epochs"`

	// BatchSize is the mini-batch size.
	// Default: 32.
	BatchSize int `json:"batch_size" koanf:"batch_size"`

	// ValidationSplit is the fraction of samples held out for validation.
	// Default: 0.2.
	ValidationSplit float64 `json:"validation_split" koanf:"validation_split"`

	// Patience is the number of epochs without validation improvement
	// before training stops early.
	// Default: 10.
	Patience int `json:"patience" koanf:"patience"`

	// Seed seeds weight initialization and shuffling.
	// Default: 42.
	Seed int64 `json:"seed" koanf:"seed"`
}

// TrainingConfig contains training schedule and data window parameters.
type TrainingConfig struct {
	// Interval is the time between scheduled training runs.
	// Default: 168h (weekly).
	Interval time.Duration `json:"interval" koanf:"interval"`

	// OnStartup trains once when the service starts.
	// Default: true.
	OnStartup bool `json:"on_startup" koanf:"on_startup"`

	// Window is how far back interaction records are pulled.
	// Default: 2 years.
	Window time.Duration `json:"window" koanf:"window"`

	// MaxSamples caps the number of records in a training set.
	// Default: 10000.
	MaxSamples int `json:"max_samples" koanf:"max_samples"`

	// MinSamples is the minimum number of records required to train.
	// Default: 100.
	MinSamples int `json:"min_samples" koanf:"min_samples"`

	// Timeout is the maximum time allowed for a training run.
	// Default: 30m.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// KeepVersions is the number of persisted artifacts to retain.
	// Default: 5.
	KeepVersions int `json:"keep_versions" koanf:"keep_versions"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxCandidates bounds the number of candidates retrieved and scored.
	// Default: 100.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`

	// DefaultLimit is used when a request does not set a limit.
	// Default: 10.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit is the largest limit a request may ask for.
	// Default: 100.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// RetrievalTimeout bounds each call to an external store.
	// Default: 3s.
	RetrievalTimeout time.Duration `json:"retrieval_timeout" koanf:"retrieval_timeout"`

	// SimilarMinRating is the minimum rating for similar-item results.
	// Default: 3.5.
	SimilarMinRating float64 `json:"similar_min_rating" koanf:"similar_min_rating"`
}

// CacheConfig contains result cache TTLs.
type CacheConfig struct {
	// Enabled controls whether results are cached.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// PersonalizedTTL applies to GetRecommendations results.
	// Default: 1h.
	PersonalizedTTL time.Duration `json:"personalized_ttl" koanf:"personalized_ttl"`

	// SimilarTTL applies to GetSimilarItems results.
	// Default: 4h.
	SimilarTTL time.Duration `json:"similar_ttl" koanf:"similar_ttl"`

	// TrendingTTL applies to GetTrending results.
	// Default: 2h.
	TrendingTTL time.Duration `json:"trending_ttl" koanf:"trending_ttl"`

	// StaleTTL is how long the last good personalized result is kept as a
	// fallback for upstream failures.
	// Default: 24h.
	StaleTTL time.Duration `json:"stale_ttl" koanf:"stale_ttl"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultWeights(),
		Heuristic: HeuristicConfig{
			ExcellentRating:     4.5,
			AmenityOverlap:      0.5,
			PopularityThreshold: 10,
		},
		Model: ModelConfig{
			Hidden:          []int{32, 16},
			LearningRate:    0.001,
			L2:              0.01,
			Epochs:          100,
			BatchSize:       32,
			ValidationSplit: 0.2,
			Patience:        10,
			Seed:            42,
		},
		Training: TrainingConfig{
			Interval:     7 * 24 * time.Hour,
			OnStartup:    true,
			Window:       2 * 365 * 24 * time.Hour,
			MaxSamples:   10000,
			MinSamples:   100,
			Timeout:      30 * time.Minute,
			KeepVersions: 5,
		},
		Limits: LimitsConfig{
			MaxCandidates:    100,
			DefaultLimit:     10,
			MaxLimit:         100,
			RetrievalTimeout: 3 * time.Second,
			SimilarMinRating: 3.5,
		},
		Cache: CacheConfig{
			Enabled:         true,
			PersonalizedTTL: time.Hour,
			SimilarTTL:      4 * time.Hour,
			TrendingTTL:     2 * time.Hour,
			StaleTTL:        24 * time.Hour,
		},
		ProfileHistory:     20,
		ServingAdvanceDays: 36,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	w := c.Weights
	if w.Rating < 0 || w.Location < 0 || w.Amenities < 0 || w.Budget < 0 || w.Popularity < 0 {
		return fmt.Errorf("weights must be non-negative, got %+v", w)
	}

	if c.Heuristic.ExcellentRating < 0 || c.Heuristic.ExcellentRating > 5 {
		return fmt.Errorf("heuristic.excellent_rating must be in [0, 5], got %f", c.Heuristic.ExcellentRating)
	}
	if c.Heuristic.AmenityOverlap < 0 || c.Heuristic.AmenityOverlap > 1 {
		return fmt.Errorf("heuristic.amenity_overlap must be in [0, 1], got %f", c.Heuristic.AmenityOverlap)
	}

	if len(c.Model.Hidden) == 0 {
		return fmt.Errorf("model.hidden must list at least one layer")
	}
	for i, h := range c.Model.Hidden {
		if h < 1 {
			return fmt.Errorf("model.hidden[%d] must be positive, got %d", i, h)
		}
	}
	if c.Model.LearningRate <= 0 {
		return fmt.Errorf("model.learning_rate must be positive, got %f", c.Model.LearningRate)
	}
	if c.Model.L2 < 0 {
		return fmt.Errorf("model.l2 must be non-negative, got %f", c.Model.L2)
	}
	if c.Model.Epochs < 1 {
		return fmt.Errorf("model.epochs must be positive, got %d", c.Model.Epochs)
	}
	if c.Model.BatchSize < 1 {
		return fmt.Errorf("model.batch_size must be positive, got %d", c.Model.BatchSize)
	}
	if c.Model.ValidationSplit <= 0 || c.Model.ValidationSplit >= 1 {
		return fmt.Errorf("model.validation_split must be in (0, 1), got %f", c.Model.ValidationSplit)
	}

	if c.Training.Interval <= 0 {
		return fmt.Errorf("training.interval must be positive, got %v", c.Training.Interval)
	}
	if c.Training.Window <= 0 {
		return fmt.Errorf("training.window must be positive, got %v", c.Training.Window)
	}
	if c.Training.MinSamples < 1 {
		return fmt.Errorf("training.min_samples must be positive, got %d", c.Training.MinSamples)
	}
	if c.Training.MaxSamples < c.Training.MinSamples {
		return fmt.Errorf("training.max_samples must be >= training.min_samples, got %d < %d",
			c.Training.MaxSamples, c.Training.MinSamples)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}

	if c.Limits.MaxCandidates < 1 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d",
			c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.RetrievalTimeout <= 0 {
		return fmt.Errorf("limits.retrieval_timeout must be positive, got %v", c.Limits.RetrievalTimeout)
	}

	if c.Cache.Enabled && (c.Cache.PersonalizedTTL <= 0 || c.Cache.SimilarTTL <= 0 || c.Cache.TrendingTTL <= 0) {
		return fmt.Errorf("cache TTLs must be positive when caching is enabled")
	}

	if c.ProfileHistory < 1 {
		return fmt.Errorf("profile_history must be positive, got %d", c.ProfileHistory)
	}
	if c.ServingAdvanceDays < 0 {
		return fmt.Errorf("serving_advance_days must be non-negative, got %d", c.ServingAdvanceDays)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Model.Hidden = append([]int(nil), c.Model.Hidden...)
	return &clone
}
