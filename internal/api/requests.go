// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, &recommend.ValidationError{Field: name, Message: name + " must be a positive integer"}
	}
	return id, nil
}

// queryLimit parses the optional limit parameter. Absent means 0, which
// the engine resolves to its default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, &recommend.ValidationError{Field: "limit", Message: "limit must be a non-negative integer"}
	}
	return limit, nil
}

// queryBool accepts true/false/1/0. Absent means false.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &recommend.ValidationError{Field: name, Message: name + " must be a boolean"}
	}
	return v, nil
}

// parseOptions reads recommendation filters from the query string.
// Range checks are left to the engine.
func parseOptions(r *http.Request) (recommend.Options, error) {
	limit, err := queryLimit(r)
	if err != nil {
		return recommend.Options{}, err
	}
	exclude, err := queryBool(r, "exclude_booked")
	if err != nil {
		return recommend.Options{}, err
	}

	q := r.URL.Query()
	return recommend.Options{
		Limit:         limit,
		Location:      strings.TrimSpace(q.Get("location")),
		Category:      strings.TrimSpace(q.Get("category")),
		PriceRange:    recommend.PriceTier(strings.ToLower(strings.TrimSpace(q.Get("price_range")))),
		ExcludeBooked: exclude,
	}, nil
}
