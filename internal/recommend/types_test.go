// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"testing"
	"time"
)

func TestPriceTier(t *testing.T) {
	tests := []struct {
		a, b      PriceTier
		wantRank  int
		withinOne bool
	}{
		{a: TierBudget, b: TierEconomy, wantRank: 0, withinOne: true},
		{a: TierBudget, b: TierMidRange, wantRank: 0, withinOne: false},
		{a: "Luxury", b: TierUpscale, wantRank: 4, withinOne: true},
		{a: TierMidRange, b: TierMidRange, wantRank: 2, withinOne: true},
		{a: "penthouse", b: TierLuxury, wantRank: -1, withinOne: false},
		{a: "", b: "", wantRank: -1, withinOne: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.a)+"/"+string(tt.b), func(t *testing.T) {
			if got := tt.a.Rank(); got != tt.wantRank {
				t.Errorf("Rank() = %d, want %d", got, tt.wantRank)
			}
			if got := tt.a.IsValid(); got != (tt.wantRank >= 0) {
				t.Errorf("IsValid() = %v", got)
			}
			if got := tt.a.WithinOneTier(tt.b); got != tt.withinOne {
				t.Errorf("WithinOneTier() = %v, want %v", got, tt.withinOne)
			}
		})
	}
}

func TestTierForAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   PriceTier
	}{
		{0, TierBudget},
		{199.99, TierBudget},
		{200, TierEconomy},
		{499, TierEconomy},
		{500, TierMidRange},
		{999, TierMidRange},
		{1000, TierUpscale},
		{1999, TierUpscale},
		{2000, TierLuxury},
		{15000, TierLuxury},
	}
	for _, tt := range tests {
		if got := TierForAmount(tt.amount); got != tt.want {
			t.Errorf("TierForAmount(%v) = %s, want %s", tt.amount, got, tt.want)
		}
	}
}

func TestOutcome_IsValid(t *testing.T) {
	for _, o := range []Outcome{OutcomeBooked, OutcomeLiked, OutcomeDisliked, OutcomeIgnored} {
		if !o.IsValid() {
			t.Errorf("%s should be valid", o)
		}
	}
	if Outcome("maybe").IsValid() {
		t.Error("unknown outcome should be invalid")
	}
}

func TestParseTrendingPeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    TrendingPeriod
		window  time.Duration
		wantErr bool
	}{
		{in: "", want: Period7d, window: 7 * 24 * time.Hour},
		{in: "24h", want: Period24h, window: 24 * time.Hour},
		{in: "7d", want: Period7d, window: 7 * 24 * time.Hour},
		{in: "30d", want: Period30d, window: 30 * 24 * time.Hour},
		{in: "90d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, window, err := ParseTrendingPeriod(tt.in)
			if tt.wantErr {
				if !IsValidationError(err) {
					t.Errorf("error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want || window != tt.window {
				t.Errorf("ParseTrendingPeriod(%q) = %s, %v; want %s, %v", tt.in, got, window, tt.want, tt.window)
			}
		})
	}
}

func TestUserProfile_PrefersLocation(t *testing.T) {
	u := &UserProfile{PreferredLocations: []string{"recife", "salvador"}}
	if !u.PrefersLocation("Recife") {
		t.Error("case-insensitive match expected")
	}
	if u.PrefersLocation("") || u.PrefersLocation("natal") {
		t.Error("unexpected match")
	}
}
