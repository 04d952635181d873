// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package database is the DuckDB-backed store behind the recommendation
// engine.
//
// # Overview
//
// A single *DB implements every store port of package recommend:
//
//   - recommend.UserStore: demographics lookup, unknown users are ErrNotFound
//   - recommend.CatalogStore: filtered candidate queries and item lookups
//   - recommend.InteractionStore: booking history and feedback writes
//   - recommend.ActivityStore: trending activity and feedback statistics
//   - recommend.TrainingSource: joined training examples
//
// BreakerCatalog decorates any CatalogStore with a sony/gobreaker circuit
// breaker. Missing rows and caller cancellations do not count as failures.
//
// # Files
//
//   - database.go: connection lifecycle (open, checkpoint, close)
//   - database_schema.go: table and index creation
//   - migrations.go: versioned migrations tracked in schema_migrations
//   - catalog.go, interactions.go, activity.go, training.go: port implementations
//   - breaker.go: circuit breaker decorator
//   - query/: WHERE clause builder
//
// # Derived Fields
//
// ItemProfile.RecentBookings counts bookings in the last 30 days and is
// computed at query time. Training examples carry user preferences derived
// from the user's latest 20 bookings with recommend.DeriveProfile.
//
// # Usage
//
//	db, err := database.New(&cfg.Database, logger)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	catalog := database.NewBreakerCatalog(db, cfg.Breaker, logger)
package database
