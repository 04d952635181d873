// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Cache key layout:
//
//	recs:user:{id}:fresh:{hash}   personalized results
//	recs:user:{id}:stale:{hash}   last good personalized results
//	similar:{item}:{limit}
//	trending:{period}:{limit}
const (
	recsKeyPrefix     = "recs:"
	similarKeyPrefix  = "similar:"
	trendingKeyPrefix = "trending:"
)

// normalizeOptions lowercases and trims filters and applies the default
// limit so equivalent requests share a cache key.
//
//nolint:gocritic // hugeParam: Options passed by value for immutability
func normalizeOptions(o Options, defaultLimit int) Options {
	n := Options{
		Limit:         o.Limit,
		Location:      strings.ToLower(strings.TrimSpace(o.Location)),
		PriceRange:    PriceTier(strings.ToLower(strings.TrimSpace(string(o.PriceRange)))),
		Category:      strings.ToLower(strings.TrimSpace(o.Category)),
		ExcludeBooked: o.ExcludeBooked,
	}
	if n.Limit == 0 {
		n.Limit = defaultLimit
	}
	return n
}

// userKeyPrefix returns the prefix shared by all of a user's entries.
func userKeyPrefix(userID int) string {
	return fmt.Sprintf("%suser:%d:", recsKeyPrefix, userID)
}

// optionsHash returns a compact hash of normalized options.
//
//nolint:gocritic // hugeParam: Options passed by value for immutability
func optionsHash(o Options) string {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf("%v", o)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:16])
}

//nolint:gocritic // hugeParam: Options passed by value for immutability
func personalizedKey(userID int, o Options) string {
	return userKeyPrefix(userID) + "fresh:" + optionsHash(o)
}

//nolint:gocritic // hugeParam: Options passed by value for immutability
func staleKey(userID int, o Options) string {
	return userKeyPrefix(userID) + "stale:" + optionsHash(o)
}

func similarKey(itemID, limit int) string {
	return fmt.Sprintf("%s%d:%d", similarKeyPrefix, itemID, limit)
}

func trendingKey(period TrendingPeriod, limit int) string {
	return fmt.Sprintf("%s%s:%d", trendingKeyPrefix, period, limit)
}
