// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package heuristic

import (
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

func newDefaultScorer() *Scorer {
	cfg := recommend.DefaultConfig()
	return New(cfg.Weights, cfg.Heuristic)
}

func TestScorer_Score(t *testing.T) {
	user := &recommend.UserProfile{
		ID:                 1,
		PreferredLocations: []string{"recife"},
		PreferredAmenities: []string{"pool", "wifi"},
		BudgetBracket:      recommend.TierBudget,
	}

	tests := []struct {
		name       string
		item       recommend.ItemProfile
		wantScore  float64
		wantReason string
	}{
		{
			name: "every factor satisfied",
			item: recommend.ItemProfile{
				ID: 1, Rating: 5, Location: "Recife", Amenities: []string{"Pool", "WiFi"},
				PriceTier: recommend.TierEconomy, RecentBookings: 11,
			},
			wantScore:  1.0,
			wantReason: "Excellent rating, In a preferred location, Matches your amenity preferences, Fits your budget, Popular right now",
		},
		{
			name: "rating only",
			item: recommend.ItemProfile{
				ID: 2, Rating: 4.0, Location: "Salvador", PriceTier: recommend.TierLuxury, RecentBookings: 3,
			},
			wantScore:  0.4 * 0.8,
			wantReason: ReasonDefault,
		},
		{
			name: "half amenity overlap is not material",
			item: recommend.ItemProfile{
				ID: 3, Rating: 0, Amenities: []string{"pool"}, PriceTier: recommend.TierMidRange,
			},
			wantScore:  0.2 * 0.5,
			wantReason: ReasonDefault,
		},
		{
			name: "popularity threshold is exclusive",
			item: recommend.ItemProfile{
				ID: 4, Rating: 0, RecentBookings: 10,
			},
			wantScore:  0,
			wantReason: ReasonDefault,
		},
		{
			name: "budget within one tier",
			item: recommend.ItemProfile{
				ID: 5, Rating: 0, PriceTier: recommend.TierBudget,
			},
			wantScore:  0.1,
			wantReason: ReasonBudget,
		},
	}

	s := newDefaultScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reason := s.Score(user, &tt.item)
			if math.Abs(score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
		})
	}
}

func TestScorer_BoundedAndNonEmpty(t *testing.T) {
	s := New(recommend.HeuristicWeights{Rating: 5, Location: 5, Amenities: 5, Budget: 5, Popularity: 5}, recommend.HeuristicConfig{})
	user := &recommend.UserProfile{PreferredLocations: []string{"x"}, PreferredAmenities: []string{"a"}, BudgetBracket: recommend.TierLuxury}

	items := []recommend.ItemProfile{
		{Rating: 50, Location: "x", Amenities: []string{"a"}, PriceTier: recommend.TierLuxury, RecentBookings: 1000},
		{Rating: -1},
		{Rating: math.NaN()},
		{},
	}
	for i := range items {
		score, reason := s.Score(user, &items[i])
		if score < 0 || score > 1 || math.IsNaN(score) {
			t.Errorf("item %d: score %v out of [0,1]", i, score)
		}
		if reason == "" {
			t.Errorf("item %d: empty reason", i)
		}
	}
}

func TestScorer_NilInputs(t *testing.T) {
	s := newDefaultScorer()

	if score, reason := s.Score(nil, &recommend.ItemProfile{Rating: 5}); math.Abs(score-0.4) > 1e-9 || !strings.HasPrefix(reason, ReasonExcellentRating) {
		t.Errorf("nil user: score=%v reason=%q", score, reason)
	}
	if score, reason := s.Score(&recommend.UserProfile{}, nil); score != 0 || reason != ReasonDefault {
		t.Errorf("nil item: score=%v reason=%q", score, reason)
	}
}

func TestScorer_Pure(t *testing.T) {
	s := newDefaultScorer()
	user := &recommend.UserProfile{PreferredAmenities: []string{"Pool", "pool", "Spa"}}
	item := &recommend.ItemProfile{Amenities: []string{"POOL"}, Rating: 3}

	first, firstReason := s.Score(user, item)
	second, secondReason := s.Score(user, item)
	if first != second || firstReason != secondReason {
		t.Errorf("non-deterministic: %v/%q vs %v/%q", first, firstReason, second, secondReason)
	}
	if user.PreferredAmenities[0] != "Pool" || item.Amenities[0] != "POOL" {
		t.Error("Score mutated its inputs")
	}
}

func TestNew_NormalizesWeights(t *testing.T) {
	s := New(recommend.HeuristicWeights{Rating: 4, Location: 2, Amenities: 2, Budget: 1, Popularity: 1}, recommend.HeuristicConfig{})
	w := s.Weights()
	sum := w.Rating + w.Location + w.Amenities + w.Budget + w.Popularity
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("weights sum = %v, want 1", sum)
	}
	if math.Abs(w.Rating-0.4) > 1e-9 {
		t.Errorf("rating weight = %v, want 0.4", w.Rating)
	}

	zero := New(recommend.HeuristicWeights{}, recommend.HeuristicConfig{})
	if zero.Weights() != recommend.DefaultWeights() {
		t.Errorf("zero weights = %+v, want defaults", zero.Weights())
	}
}

func TestAmenityOverlap(t *testing.T) {
	tests := []struct {
		name      string
		preferred []string
		offered   []string
		want      float64
	}{
		{"no preferences", nil, []string{"pool"}, 0},
		{"no amenities", []string{"pool"}, nil, 0},
		{"full", []string{"pool", "spa"}, []string{"SPA", "Pool", "gym"}, 1},
		{"partial", []string{"pool", "spa", "gym", "bar"}, []string{"pool"}, 0.25},
		{"duplicates counted once", []string{"pool", "POOL"}, []string{"pool"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := amenityOverlap(tt.preferred, tt.offered); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("amenityOverlap() = %v, want %v", got, tt.want)
			}
		})
	}
}
