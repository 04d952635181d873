// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// GetRecommendations handles GET /api/v1/recommendations/users/{userID}.
//
// Query parameters: limit, location, category, price_range, exclude_booked.
// Unknown users receive recommendations for an anonymous profile.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	opts, err := parseOptions(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	results, err := h.service.GetRecommendations(ctx, userID, opts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(nonNil(results), len(results))
}

// GetSimilar handles GET /api/v1/recommendations/similar/{itemID}.
func (h *Handler) GetSimilar(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	results, err := h.service.GetSimilarItems(ctx, itemID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(nonNil(results), len(results))
}

// GetTrending handles GET /api/v1/recommendations/trending?period=24h|7d|30d.
func (h *Handler) GetTrending(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	results, err := h.service.GetTrending(ctx, r.URL.Query().Get("period"), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).List(nonNil(results), len(results))
}

// nonNil keeps empty results encoded as [] instead of null.
func nonNil(c []recommend.ScoredCandidate) []recommend.ScoredCandidate {
	if c == nil {
		return []recommend.ScoredCandidate{}
	}
	return c
}
