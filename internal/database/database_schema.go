// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

/*
database_schema.go - Database Schema Management

Tables:
  - users: demographics only; preferences are derived from bookings
  - items: the lodging catalog, amenities stored as comma separated text
  - interactions: append-only interaction facts (bookings, reactions)
  - feedback: raw feedback events as submitted

Timestamps are stored as TIMESTAMP in UTC and always written by the
application, so no column default depends on the ICU extension.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			age INTEGER NOT NULL DEFAULT 0,
			home_location TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			price_tier TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			amenities TEXT NOT NULL DEFAULT '',
			rating DOUBLE NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			avg_nightly_price DOUBLE NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active'
		);`,

		`CREATE TABLE IF NOT EXISTS interactions (
			user_id INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			outcome TEXT NOT NULL,
			rating DOUBLE,
			amount DOUBLE,
			guests INTEGER,
			advance_days INTEGER
		);`,

		`CREATE TABLE IF NOT EXISTS feedback (
			id UUID PRIMARY KEY,
			user_id INTEGER NOT NULL,
			item_id INTEGER NOT NULL,
			type TEXT NOT NULL,
			rating INTEGER NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);`,
	}
}

// createIndexes creates indexes for the hot query paths
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

func getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id, occurred_at);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_item ON interactions(item_id);`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_time ON interactions(occurred_at);`,
		`CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);`,
	}
}
