// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Filters narrow candidate retrieval.
type Filters struct {
	Location      string
	Category      string
	PriceTier     PriceTier
	MinRating     float64
	ExcludeBooked bool

	// Exclude lists item IDs that must never be returned.
	Exclude []int

	// SimilarCategory and SimilarTier keep items sharing the category or
	// the price tier, whichever are set.
	SimilarCategory string
	SimilarTier     PriceTier
}

// Retriever fetches a bounded candidate set from the catalog.
type Retriever struct {
	catalog       CatalogStore
	interactions  InteractionStore
	maxCandidates int
	timeout       time.Duration
}

// NewRetriever creates a candidate retriever.
func NewRetriever(catalog CatalogStore, interactions InteractionStore, maxCandidates int, timeout time.Duration) *Retriever {
	if maxCandidates <= 0 {
		maxCandidates = 100
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Retriever{
		catalog:       catalog,
		interactions:  interactions,
		maxCandidates: maxCandidates,
		timeout:       timeout,
	}
}

// Retrieve returns active items matching the filters, minus excluded and
// (when requested) already-booked items. No match is an empty list.
// A store that does not answer within the retrieval timeout yields
// ErrUpstreamTimeout.
//
//nolint:gocritic // hugeParam: Filters passed by value for immutability
func (r *Retriever) Retrieve(ctx context.Context, userID int, f Filters) ([]ItemProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	excluded := make(map[int]struct{}, len(f.Exclude))
	for _, id := range f.Exclude {
		excluded[id] = struct{}{}
	}

	if f.ExcludeBooked && userID > 0 {
		booked, err := r.interactions.BookedItems(ctx, userID)
		if err != nil {
			return nil, r.wrapErr(ctx, "booked items", err)
		}
		for _, id := range booked {
			excluded[id] = struct{}{}
		}
	}

	exclude := make([]int, 0, len(excluded))
	for id := range excluded {
		exclude = append(exclude, id)
	}

	items, err := r.catalog.QueryCandidates(ctx, CandidateQuery{
		Status:    ItemStatusActive,
		Location:  f.Location,
		Category:  f.Category,
		PriceTier: f.PriceTier,
		MinRating: f.MinRating,
		Exclude:   exclude,
		Limit:     r.maxCandidates,

		SimilarCategory: f.SimilarCategory,
		SimilarTier:     f.SimilarTier,
	})
	if err != nil {
		return nil, r.wrapErr(ctx, "catalog query", err)
	}

	// Filters are enforced again in process.
	out := make([]ItemProfile, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.Status != "" && !strings.EqualFold(item.Status, ItemStatusActive) {
			continue
		}
		if _, skip := excluded[item.ID]; skip {
			continue
		}
		if !matchesFilters(item, &f) {
			continue
		}
		out = append(out, *item)
		if len(out) == r.maxCandidates {
			break
		}
	}

	return out, nil
}

// wrapErr classifies a store error. Deadline errors caused by the
// retrieval timeout (not by the caller) become ErrUpstreamTimeout.
func (r *Retriever) wrapErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamTimeout, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func matchesFilters(item *ItemProfile, f *Filters) bool {
	if f.Location != "" && !strings.Contains(strings.ToLower(item.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	if f.PriceTier != "" && !strings.EqualFold(string(item.PriceTier), string(f.PriceTier)) {
		return false
	}
	if f.MinRating > 0 && item.Rating < f.MinRating {
		return false
	}
	if f.SimilarCategory != "" || f.SimilarTier != "" {
		sameCategory := f.SimilarCategory != "" && strings.EqualFold(item.Category, f.SimilarCategory)
		sameTier := f.SimilarTier != "" && strings.EqualFold(string(item.PriceTier), string(f.SimilarTier))
		if !sameCategory && !sameTier {
			return false
		}
	}
	return true
}
