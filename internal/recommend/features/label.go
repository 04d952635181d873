// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package features

import "github.com/tomtom215/lodgerank/internal/recommend"

// outcomeLabels are training targets for unrated interactions.
var outcomeLabels = map[recommend.Outcome]float64{
	recommend.OutcomeBooked:   1.0,
	recommend.OutcomeLiked:    0.8,
	recommend.OutcomeIgnored:  0.3,
	recommend.OutcomeDisliked: 0.0,
}

// Label returns the normalized training target for an interaction:
// rating/5 when rated, otherwise a fixed value per outcome.
func Label(rec *recommend.InteractionRecord) float64 {
	if rec.Rating > 0 {
		return clamp(rec.Rating / maxRating)
	}
	if v, ok := outcomeLabels[rec.Outcome]; ok {
		return v
	}
	return Neutral
}
