// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package recommend implements the personalized lodging recommendation engine.
//
// # Architecture
//
// A request flows through these stages:
//
//   - Retriever: bounded candidate set from the catalog (active items,
//     exclusions, location/category/price filters)
//   - Profile derivation: preference aggregates from recent bookings
//   - Scoring: the trained model when it is Ready, otherwise the
//     deterministic heuristic scorer
//   - Ranking: descending score, ties by ascending item ID
//   - Caching: results stored through the injected Cache with a TTL
//
// The root package owns the data model, ports and orchestration. Feature
// encoding, heuristic scoring, the scoring model and the training pipeline
// live in subpackages that implement the Encoder, Scorer, Predictor and
// Trainer interfaces declared here; cmd/server wires them together.
//
// # Degradation
//
// Only *ValidationError reaches callers. Unknown users get an anonymous
// profile, store timeouts fall back to the last good cached result or an
// empty list, a model that cannot score a vector falls back to the
// heuristic for that candidate, and a candidate whose scoring fails is
// dropped. Every result carries its Source.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, recommend.Deps{
//	    Users:        db,
//	    Catalog:      db,
//	    Interactions: db,
//	    Activity:     db,
//	    Cache:        memCache,
//	    Encoder:      features.NewEncoder(features.LayoutV1),
//	    Heuristic:    heuristic.New(cfg.Weights, cfg.Heuristic),
//	    Model:        scoringModel,
//	    Trainer:      pipeline,
//	}, logger)
//
//	recs, err := engine.GetRecommendations(ctx, userID, recommend.Options{
//	    Limit:         5,
//	    Category:      "beach",
//	    ExcludeBooked: true,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. It holds no mutable scoring state;
// the model swaps artifacts with a single atomic pointer store.
package recommend
