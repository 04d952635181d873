// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"sort"
	"strings"
)

// Preference aggregate sizes.
const (
	topCategories = 3
	topLocations  = 3
	topAmenities  = 5
)

// DeriveProfile returns a copy of base with preference aggregates computed
// from booking history. items resolves history item IDs; records for
// unknown items only contribute to the budget bracket. The inputs are not
// modified.
//
//nolint:gocritic // hugeParam: profile copied intentionally, the result is a new value
func DeriveProfile(base UserProfile, history []InteractionRecord, items map[int]ItemProfile) UserProfile {
	profile := base
	profile.PreferredCategories = nil
	profile.PreferredLocations = nil
	profile.PreferredAmenities = nil
	profile.BudgetBracket = TierMidRange

	categories := make(map[string]int)
	locations := make(map[string]int)
	amenities := make(map[string]int)
	var amountSum float64
	var amountCount int

	for i := range history {
		rec := &history[i]
		if rec.Outcome != OutcomeBooked {
			continue
		}
		if rec.Amount > 0 {
			amountSum += rec.Amount
			amountCount++
		}
		item, ok := items[rec.ItemID]
		if !ok {
			continue
		}
		if item.Category != "" {
			categories[strings.ToLower(item.Category)]++
		}
		if item.Location != "" {
			locations[strings.ToLower(item.Location)]++
		}
		for _, a := range item.Amenities {
			if a != "" {
				amenities[strings.ToLower(a)]++
			}
		}
	}

	profile.PreferredCategories = topN(categories, topCategories)
	profile.PreferredLocations = topN(locations, topLocations)
	profile.PreferredAmenities = topN(amenities, topAmenities)
	if amountCount > 0 {
		profile.BudgetBracket = TierForAmount(amountSum / float64(amountCount))
	}

	return profile
}

// topN returns the n most frequent keys, ties broken alphabetically.
func topN(counts map[string]int, n int) []string {
	if len(counts) == 0 {
		return nil
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
