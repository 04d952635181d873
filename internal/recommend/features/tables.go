// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package features

import (
	"math"
	"strings"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Neutral is the value used for unknown or missing inputs.
const Neutral = 0.5

// Normalization bounds.
const (
	maxAge            = 100.0
	maxPreferences    = 20.0
	maxAmenities      = 20.0
	maxAdvanceDays    = 365.0
	maxRecentBookings = 50.0
	maxNightlyPrice   = 2000.0
	maxRating         = 5.0
)

var locationTable = map[string]float64{
	"rio de janeiro": 0.1,
	"são paulo":      0.2,
	"sao paulo":      0.2,
	"salvador":       0.3,
	"fortaleza":      0.4,
	"recife":         0.5,
	"belo horizonte": 0.6,
	"brasília":       0.7,
	"brasilia":       0.7,
	"curitiba":       0.8,
	"porto alegre":   0.9,
}

var categoryTable = map[string]float64{
	"economic": 0.1,
	"standard": 0.3,
	"superior": 0.5,
	"deluxe":   0.7,
	"luxury":   0.9,
}

var priceTierTable = map[recommend.PriceTier]float64{
	recommend.TierBudget:   0.1,
	recommend.TierEconomy:  0.3,
	recommend.TierMidRange: 0.5,
	recommend.TierUpscale:  0.7,
	recommend.TierLuxury:   0.9,
}

// EncodeLocation maps a city to its table value. "Recife, PE" matches
// "recife". Unknown locations are Neutral.
func EncodeLocation(loc string) float64 {
	key := strings.ToLower(strings.TrimSpace(loc))
	if v, ok := locationTable[key]; ok {
		return v
	}
	if i := strings.IndexByte(key, ','); i > 0 {
		if v, ok := locationTable[strings.TrimSpace(key[:i])]; ok {
			return v
		}
	}
	return Neutral
}

// EncodeCategory maps a category to its table value, Neutral if unknown.
func EncodeCategory(category string) float64 {
	if v, ok := categoryTable[strings.ToLower(strings.TrimSpace(category))]; ok {
		return v
	}
	return Neutral
}

// EncodePriceTier maps a price tier to its table value, Neutral if unknown.
func EncodePriceTier(tier recommend.PriceTier) float64 {
	if v, ok := priceTierTable[recommend.PriceTier(strings.ToLower(string(tier)))]; ok {
		return v
	}
	return Neutral
}

// Ratio divides v by bound and clamps to [0,1]. Non-finite or negative
// inputs are Neutral.
func Ratio(v, bound float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || bound <= 0 {
		return Neutral
	}
	r := v / bound
	if r > 1 {
		return 1
	}
	return r
}

// positiveRatio is Ratio for attributes where zero means unknown.
func positiveRatio(v, bound float64) float64 {
	if v <= 0 {
		return Neutral
	}
	return Ratio(v, bound)
}
