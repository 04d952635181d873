// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"fmt"
	"strings"
)

// Trending score weights.
const (
	trendingBookingWeight = 2.0
	trendingReviewWeight  = 1.5
)

// trendingScore is the raw popularity of an item over a period:
//
//	score = bookings*2 + reviews*1.5 + avg rating
func trendingScore(a *ItemActivity) float64 {
	return float64(a.Bookings)*trendingBookingWeight +
		float64(a.Reviews)*trendingReviewWeight +
		a.AvgRating
}

// rankTrending scores activity rows and scales them by the top score so
// the most popular item scores 1. Rows without bookings are skipped.
func rankTrending(activity []ItemActivity, period TrendingPeriod) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(activity))
	var maxScore float64

	raw := make([]float64, len(activity))
	for i := range activity {
		if activity[i].Bookings <= 0 {
			continue
		}
		raw[i] = trendingScore(&activity[i])
		if raw[i] > maxScore {
			maxScore = raw[i]
		}
	}

	for i := range activity {
		a := &activity[i]
		if a.Bookings <= 0 {
			continue
		}
		score := 0.0
		if maxScore > 0 {
			score = raw[i] / maxScore
		}
		out = append(out, ScoredCandidate{
			Item:   a.Item,
			Score:  clamp01(score),
			Reason: trendingReason(a, period),
			Source: SourceHeuristic,
		})
	}

	sortCandidates(out)
	return out
}

func trendingReason(a *ItemActivity, period TrendingPeriod) string {
	var b strings.Builder
	if a.Bookings == 1 {
		fmt.Fprintf(&b, "Booked once in the last %s", period)
	} else {
		fmt.Fprintf(&b, "Booked %d times in the last %s", a.Bookings, period)
	}
	if a.AvgRating >= 4.5 {
		b.WriteString(", highly rated")
	}
	return b.String()
}
