// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package heuristic implements the rule-based fallback scorer used when no
// trained model is available.
//
// The score is a weighted sum of five factors, evaluated in a fixed order:
//
//	rating      item rating / 5
//	location    item location is one of the user's preferred locations
//	amenities   |item amenities ∩ preferred| / max(|preferred|, 1)
//	budget      item price tier within one tier of the user's budget
//	popularity  recent bookings above a threshold
//
// Factors that pass their materiality threshold contribute a phrase to the
// reason string, joined in evaluation order.
package heuristic

import (
	"math"
	"strings"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Reason phrases.
const (
	ReasonExcellentRating = "Excellent rating"
	ReasonLocation        = "In a preferred location"
	ReasonAmenities       = "Matches your amenity preferences"
	ReasonBudget          = "Fits your budget"
	ReasonPopular         = "Popular right now"
	ReasonDefault         = "Recommendation based on your profile"
)

// Scorer is a pure, deterministic rule-based scorer.
type Scorer struct {
	weights    recommend.HeuristicWeights
	thresholds recommend.HeuristicConfig
}

// New creates a scorer. Weights are normalized to sum to 1.0; zero
// thresholds take their defaults.
//
//nolint:gocritic // hugeParam: configuration copied once at construction
func New(weights recommend.HeuristicWeights, thresholds recommend.HeuristicConfig) *Scorer {
	defaults := recommend.DefaultConfig().Heuristic
	if thresholds.ExcellentRating <= 0 {
		thresholds.ExcellentRating = defaults.ExcellentRating
	}
	if thresholds.AmenityOverlap <= 0 {
		thresholds.AmenityOverlap = defaults.AmenityOverlap
	}
	if thresholds.PopularityThreshold <= 0 {
		thresholds.PopularityThreshold = defaults.PopularityThreshold
	}
	return &Scorer{
		weights:    weights.Normalize(),
		thresholds: thresholds,
	}
}

// Weights returns the normalized weights in use.
func (s *Scorer) Weights() recommend.HeuristicWeights {
	return s.weights
}

// Score returns a score in [0,1] and a non-empty reason. It never fails
// and never modifies its arguments.
func (s *Scorer) Score(user *recommend.UserProfile, item *recommend.ItemProfile) (float64, string) {
	if item == nil {
		return 0, ReasonDefault
	}
	if user == nil {
		user = &recommend.UserProfile{}
	}

	var score float64
	reasons := make([]string, 0, 5)

	rating := item.Rating
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	score += s.weights.Rating * math.Min(rating/5, 1)
	if rating >= s.thresholds.ExcellentRating {
		reasons = append(reasons, ReasonExcellentRating)
	}

	if user.PrefersLocation(item.Location) {
		score += s.weights.Location
		reasons = append(reasons, ReasonLocation)
	}

	overlap := amenityOverlap(user.PreferredAmenities, item.Amenities)
	score += s.weights.Amenities * overlap
	if overlap > s.thresholds.AmenityOverlap {
		reasons = append(reasons, ReasonAmenities)
	}

	if item.PriceTier.WithinOneTier(user.BudgetBracket) {
		score += s.weights.Budget
		reasons = append(reasons, ReasonBudget)
	}

	if item.RecentBookings > s.thresholds.PopularityThreshold {
		score += s.weights.Popularity
		reasons = append(reasons, ReasonPopular)
	}

	if score > 1 {
		score = 1
	}

	if len(reasons) == 0 {
		return score, ReasonDefault
	}
	return score, strings.Join(reasons, ", ")
}

// amenityOverlap is the share of preferred amenities the item offers.
func amenityOverlap(preferred, offered []string) float64 {
	if len(preferred) == 0 || len(offered) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(offered))
	for _, a := range offered {
		have[strings.ToLower(a)] = struct{}{}
	}
	seen := make(map[string]struct{}, len(preferred))
	matches := 0
	for _, p := range preferred {
		p = strings.ToLower(p)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		if _, ok := have[p]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(seen))
}

var _ recommend.Scorer = (*Scorer)(nil)
