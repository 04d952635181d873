// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"strings"
	"time"
)

// PriceTier is an ordered price bracket shared by items and user budgets.
type PriceTier string

// Price tiers from cheapest to most expensive.
const (
	TierBudget   PriceTier = "budget"
	TierEconomy  PriceTier = "economy"
	TierMidRange PriceTier = "mid-range"
	TierUpscale  PriceTier = "upscale"
	TierLuxury   PriceTier = "luxury"
)

// priceTierOrder maps each tier to its position on the price ladder.
var priceTierOrder = map[PriceTier]int{
	TierBudget:   0,
	TierEconomy:  1,
	TierMidRange: 2,
	TierUpscale:  3,
	TierLuxury:   4,
}

// Rank returns the tier's position on the price ladder, or -1 if unknown.
func (p PriceTier) Rank() int {
	if r, ok := priceTierOrder[PriceTier(strings.ToLower(string(p)))]; ok {
		return r
	}
	return -1
}

// IsValid returns true if the tier is one of the known tiers.
func (p PriceTier) IsValid() bool {
	return p.Rank() >= 0
}

// WithinOneTier reports whether two tiers are at most one step apart.
// Unknown tiers never match.
func (p PriceTier) WithinOneTier(other PriceTier) bool {
	a, b := p.Rank(), other.Rank()
	if a < 0 || b < 0 {
		return false
	}
	d := a - b
	return d >= -1 && d <= 1
}

// TierForAmount buckets an average booking amount into a budget bracket.
func TierForAmount(amount float64) PriceTier {
	switch {
	case amount < 200:
		return TierBudget
	case amount < 500:
		return TierEconomy
	case amount < 1000:
		return TierMidRange
	case amount < 2000:
		return TierUpscale
	default:
		return TierLuxury
	}
}

// Outcome is the result of a user's interaction with an item.
type Outcome string

// Interaction outcomes. Booked doubles as the completed-booking marker
// for history records.
const (
	OutcomeBooked   Outcome = "booked"
	OutcomeLiked    Outcome = "liked"
	OutcomeDisliked Outcome = "disliked"
	OutcomeIgnored  Outcome = "ignored"
)

// IsValid returns true if the outcome is a known type.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeBooked, OutcomeLiked, OutcomeDisliked, OutcomeIgnored:
		return true
	default:
		return false
	}
}

// Source tags where a candidate's score came from.
type Source string

// Score sources.
const (
	SourceModel     Source = "model"
	SourceHeuristic Source = "heuristic"
)

// ItemStatusActive is the only catalog status eligible for retrieval.
const ItemStatusActive = "active"

// UserProfile is a read-only projection of a user. Preference aggregates
// are derived from interaction history on demand.
type UserProfile struct {
	ID           int    `json:"id"`
	Age          int    `json:"age,omitempty"`
	HomeLocation string `json:"home_location,omitempty"`

	PreferredCategories []string  `json:"preferred_categories,omitempty"`
	PreferredLocations  []string  `json:"preferred_locations,omitempty"`
	PreferredAmenities  []string  `json:"preferred_amenities,omitempty"`
	BudgetBracket       PriceTier `json:"budget_bracket,omitempty"`

	// Anonymous is set when the user could not be found and the profile
	// carries no demographics.
	Anonymous bool `json:"anonymous,omitempty"`
}

// PrefersLocation reports whether loc is one of the user's preferred locations.
func (u *UserProfile) PrefersLocation(loc string) bool {
	if loc == "" {
		return false
	}
	for _, p := range u.PreferredLocations {
		if strings.EqualFold(p, loc) {
			return true
		}
	}
	return false
}

// ItemProfile is a catalog entry eligible for recommendation.
type ItemProfile struct {
	ID              int       `json:"id"`
	Name            string    `json:"name,omitempty"`
	Category        string    `json:"category"`
	PriceTier       PriceTier `json:"price_tier"`
	Location        string    `json:"location"`
	Amenities       []string  `json:"amenities,omitempty"`
	Rating          float64   `json:"rating"`
	ReviewCount     int       `json:"review_count,omitempty"`
	RecentBookings  int       `json:"recent_bookings"`
	AvgNightlyPrice float64   `json:"avg_nightly_price,omitempty"`
	Status          string    `json:"status,omitempty"`
}

// InteractionRecord is an immutable, append-only interaction fact.
type InteractionRecord struct {
	UserID      int       `json:"user_id"`
	ItemID      int       `json:"item_id"`
	Timestamp   time.Time `json:"timestamp"`
	Outcome     Outcome   `json:"outcome"`
	Rating      float64   `json:"rating,omitempty"` // 0 means unrated, otherwise 1-5
	Amount      float64   `json:"amount,omitempty"`
	Guests      int       `json:"guests,omitempty"`
	AdvanceDays int       `json:"advance_days,omitempty"`
}

// EncodeContext carries the contextual attributes of an interaction or
// request that are not part of either profile.
type EncodeContext struct {
	DayOfWeek   time.Weekday
	Month       time.Month
	AdvanceDays int
}

// ContextAt builds an EncodeContext for a point in time.
func ContextAt(t time.Time, advanceDays int) EncodeContext {
	return EncodeContext{
		DayOfWeek:   t.Weekday(),
		Month:       t.Month(),
		AdvanceDays: advanceDays,
	}
}

// TrainingExample joins an interaction with the profiles as they were at
// interaction time.
type TrainingExample struct {
	Record InteractionRecord
	User   UserProfile
	Item   ItemProfile
}

// FeatureVector is a fixed-length ordered encoding of a (user, item, context)
// triple. Every value lies in [0,1]. Layout names the slot order.
type FeatureVector struct {
	Layout string
	Values []float64
}

// ScoredCandidate is a ranked recommendation.
type ScoredCandidate struct {
	Item   ItemProfile `json:"item"`
	Score  float64     `json:"score"`
	Reason string      `json:"reason"`
	Source Source      `json:"source"`
}

// Options are the caller-supplied filters for GetRecommendations.
type Options struct {
	Limit         int       `json:"limit" validate:"min=0"`
	Location      string    `json:"location,omitempty" validate:"max=100"`
	PriceRange    PriceTier `json:"price_range,omitempty" validate:"omitempty,oneof=budget economy mid-range upscale luxury"`
	Category      string    `json:"category,omitempty" validate:"max=50"`
	ExcludeBooked bool      `json:"exclude_booked"`
}

// CandidateQuery is the filter set handed to the catalog store.
type CandidateQuery struct {
	Status    string
	Location  string
	Category  string
	PriceTier PriceTier
	MinRating float64
	Exclude   []int
	Limit     int

	// SimilarCategory and SimilarTier, when set, admit items that match
	// either one.
	SimilarCategory string
	SimilarTier     PriceTier
}

// FeedbackEvent is a user's reaction to a recommended item.
type FeedbackEvent struct {
	UserID    int       `json:"user_id" validate:"required,gt=0"`
	ItemID    int       `json:"item_id" validate:"required,gt=0"`
	Type      Outcome   `json:"type" validate:"required,oneof=liked disliked booked ignored"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment,omitempty" validate:"max=1000"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackStats summarizes recorded feedback.
type FeedbackStats struct {
	Total         int             `json:"total"`
	ByType        map[Outcome]int `json:"by_type"`
	AverageRating float64         `json:"average_rating"`
	Last24h       int             `json:"last_24h"`
}

// ItemActivity aggregates an item's interactions over a trending period.
type ItemActivity struct {
	Item      ItemProfile
	Bookings  int
	Reviews   int
	AvgRating float64
}

// ModelSnapshot describes the artifact currently being served.
type ModelSnapshot struct {
	State           string
	LayoutVersion   string
	ArtifactID      string
	ArtifactVersion int
	TrainedAt       time.Time
	SampleCount     int
	ValidationLoss  float64
}

// ModelStats is the public view of the scoring model.
type ModelStats struct {
	LayoutVersion     string    `json:"layout_version"`
	ArtifactID        string    `json:"artifact_id,omitempty"`
	ArtifactVersion   int       `json:"artifact_version,omitempty"`
	TrainingTimestamp time.Time `json:"training_timestamp,omitempty"`
	SampleCount       int       `json:"sample_count"`
	ValidationLoss    float64   `json:"validation_loss"`
	State             string    `json:"state"`
	IsTraining        bool      `json:"is_training"`
	IsReady           bool      `json:"is_ready"`

	RequestCount  int64 `json:"request_count"`
	CacheHits     int64 `json:"cache_hits"`
	FallbackCount int64 `json:"fallback_count"`
}

// TrendingPeriod is a lookback window for trending items.
type TrendingPeriod string

// Supported trending periods.
const (
	Period24h TrendingPeriod = "24h"
	Period7d  TrendingPeriod = "7d"
	Period30d TrendingPeriod = "30d"
)

// ParseTrendingPeriod maps a period string to a period and its duration.
// The empty string selects 7d.
func ParseTrendingPeriod(s string) (TrendingPeriod, time.Duration, error) {
	switch TrendingPeriod(s) {
	case Period24h:
		return Period24h, 24 * time.Hour, nil
	case Period7d, "":
		return Period7d, 7 * 24 * time.Hour, nil
	case Period30d:
		return Period30d, 30 * 24 * time.Hour, nil
	default:
		return "", 0, &ValidationError{Field: "period", Message: "period must be one of 24h, 7d, 30d"}
	}
}
