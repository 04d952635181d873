// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

/*
Package cache provides the result cache backends used by the recommendation
engine. All backends store opaque byte slices with a per-entry TTL and support
prefix invalidation.

# Backends

  - Memory: in-process map with a recency list, optional LRU capacity and a
    background sweep of expired entries
  - Badger: embedded BadgerDB with native entry TTLs (one second resolution),
    survives restarts of a single instance
  - Redis: shared between replicas; prefix deletes use SCAN + UNLINK

Open selects a backend from config.CacheConfig:

	c, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
	    return err
	}
	defer c.Close()

	engine, err := recommend.NewEngine(&cfg.Recommend, recommend.Deps{Cache: c, ...}, logger)

# Key Layout

Keys are built by the recommend package:

	recs:user:{id}:fresh:{hash}
	recs:user:{id}:stale:{hash}
	similar:{item}:{limit}
	trending:{period}:{limit}

Feedback deletes the "recs:user:{id}:" prefix; a model swap deletes "recs:".
*/
package cache
