// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/lodgerank/internal/metrics"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Interaction sources recorded in interactions.source.
const (
	sourceBooking  = "booking"
	sourceFeedback = "feedback"
)

// GetProfile returns the user's demographics, or recommend.ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, userID int) (*recommend.UserProfile, error) {
	start := time.Now()

	p := recommend.UserProfile{ID: userID}
	err := db.conn.QueryRowContext(ctx,
		`SELECT age, home_location FROM users WHERE id = ?`, userID).Scan(&p.Age, &p.HomeLocation)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("get_profile", "users", time.Since(start), nil)
		return nil, fmt.Errorf("user %d: %w", userID, recommend.ErrNotFound)
	}
	metrics.RecordDBQuery("get_profile", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return &p, nil
}

// UpsertUser inserts or replaces a user's demographics.
//
//nolint:gocritic // hugeParam: profile passed by value for immutability
func (db *DB) UpsertUser(ctx context.Context, profile recommend.UserProfile) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (id, age, home_location, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET age = EXCLUDED.age, home_location = EXCLUDED.home_location`,
		profile.ID, profile.Age, profile.HomeLocation, db.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", profile.ID, err)
	}
	return nil
}

// InsertInteraction appends an interaction fact, typically a completed booking.
//
//nolint:gocritic // hugeParam: record passed by value for immutability
func (db *DB) InsertInteraction(ctx context.Context, rec recommend.InteractionRecord) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "interactions", time.Since(start), err) }()

	if !rec.Outcome.IsValid() {
		return fmt.Errorf("invalid outcome %q", rec.Outcome)
	}
	_, err = db.conn.ExecContext(ctx, insertInteractionSQL,
		rec.UserID, rec.ItemID, rec.Timestamp.UTC(), string(rec.Outcome),
		nullFloat(rec.Rating), nullFloat(rec.Amount), nullInt(rec.Guests), nullInt(rec.AdvanceDays), sourceBooking)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

const insertInteractionSQL = `
	INSERT INTO interactions (user_id, item_id, occurred_at, outcome, rating, amount, guests, advance_days, source)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const interactionColumns = `x.user_id, x.item_id, x.occurred_at, x.outcome, COALESCE(x.rating, 0),
	COALESCE(x.amount, 0), COALESCE(x.guests, 0), COALESCE(x.advance_days, 0)`

func interactionDest(rec *recommend.InteractionRecord, outcome *string) []any {
	return []any{
		&rec.UserID, &rec.ItemID, &rec.Timestamp, outcome, &rec.Rating,
		&rec.Amount, &rec.Guests, &rec.AdvanceDays,
	}
}

// QueryHistory returns the user's most recent completed bookings, newest
// first. Booked feedback is not a booking and is left out.
func (db *DB) QueryHistory(ctx context.Context, userID, limit int) (history []recommend.InteractionRecord, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("query_history", "interactions", time.Since(start), err) }()

	sqlQuery := `SELECT ` + interactionColumns + `
		FROM interactions x
		WHERE x.user_id = ? AND ` + realBooking + `
		ORDER BY x.occurred_at DESC, x.item_id`
	args := []any{userID}
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		var rec recommend.InteractionRecord
		var outcome string
		if err := rows.Scan(interactionDest(&rec, &outcome)...); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		rec.Outcome = recommend.Outcome(outcome)
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return history, nil
}

// BookedItems returns the IDs of every item the user has booked.
func (db *DB) BookedItems(ctx context.Context, userID int) (ids []int, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("booked_items", "interactions", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT item_id FROM interactions WHERE user_id = ? AND outcome = ? ORDER BY item_id`,
		userID, string(recommend.OutcomeBooked))
	if err != nil {
		return nil, fmt.Errorf("failed to query booked items: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordFeedback stores the raw event and appends it to interactions so it
// becomes a training example.
//
//nolint:gocritic // hugeParam: FeedbackEvent is part of the port signature
func (db *DB) RecordFeedback(ctx context.Context, event recommend.FeedbackEvent) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("record_feedback", "feedback", time.Since(start), err) }()

	ts := event.Timestamp
	if ts.IsZero() {
		ts = db.now()
	}
	ts = ts.UTC()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO feedback (id, user_id, item_id, type, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), event.UserID, event.ItemID, string(event.Type), event.Rating, event.Comment, ts); err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	if _, err = tx.ExecContext(ctx, insertInteractionSQL,
		event.UserID, event.ItemID, ts, string(event.Type),
		nullFloat(float64(event.Rating)), nil, nil, nil, sourceFeedback); err != nil {
		return fmt.Errorf("failed to insert feedback interaction: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit feedback: %w", err)
	}
	return nil
}
