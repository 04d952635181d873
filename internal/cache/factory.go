// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package cache

import (
	"context"
	"fmt"

	"github.com/tomtom215/lodgerank/internal/config"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Backend is a result cache that holds resources until closed.
type Backend interface {
	recommend.Cache
	Close() error
}

// Open creates the backend selected by cfg.Backend.
//
//nolint:gocritic // hugeParam: CacheConfig passed by value for immutability
func Open(ctx context.Context, cfg config.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case config.CacheBackendMemory, "":
		return NewMemory(cfg.MaxEntries), nil
	case config.CacheBackendBadger:
		return OpenBadger(cfg.BadgerPath)
	case config.CacheBackendRedis:
		return DialRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (supported: memory, badger, redis)", cfg.Backend)
	}
}
