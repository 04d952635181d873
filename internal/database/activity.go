// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/lodgerank/internal/metrics"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// ItemActivity returns per-item bookings, reviews and average rating since
// the given time, for active items with at least one booking in the window.
// Busiest items come first.
func (db *DB) ItemActivity(ctx context.Context, since time.Time, limit int) (activity []recommend.ItemActivity, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("item_activity", "interactions", time.Since(start), err) }()

	sqlQuery := `SELECT ` + itemColumns + `, a.bookings, a.reviews, a.avg_rating
		FROM items i
		JOIN (
			SELECT item_id,
				COUNT(*) FILTER (WHERE ` + realBooking + `) AS bookings,
				COUNT(rating) AS reviews,
				COALESCE(AVG(rating), 0) AS avg_rating
			FROM interactions
			WHERE occurred_at >= ?
			GROUP BY item_id
		) a ON a.item_id = i.id
		` + recentBookingsJoin + `
		WHERE lower(i.status) = lower(?) AND a.bookings > 0
		ORDER BY a.bookings DESC, i.id`
	args := []any{since.UTC(), db.recentCutoff(), recommend.ItemStatusActive}
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query item activity: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		var a recommend.ItemActivity
		item, err := scanItem(rows, &a.Bookings, &a.Reviews, &a.AvgRating)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item activity: %w", err)
		}
		a.Item = item
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item activity: %w", err)
	}
	return activity, nil
}

// FeedbackStats summarizes all recorded feedback. Last24h counts events
// after now minus 24 hours.
func (db *DB) FeedbackStats(ctx context.Context, now time.Time) (stats recommend.FeedbackStats, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("feedback_stats", "feedback", time.Since(start), err) }()

	stats.ByType = make(map[recommend.Outcome]int)

	err = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(rating), 0), COUNT(*) FILTER (WHERE created_at > ?)
		FROM feedback`, now.UTC().Add(-24*time.Hour)).Scan(&stats.Total, &stats.AverageRating, &stats.Last24h)
	if err != nil {
		return recommend.FeedbackStats{}, fmt.Errorf("failed to query feedback totals: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT type, COUNT(*) FROM feedback GROUP BY type`)
	if err != nil {
		return recommend.FeedbackStats{}, fmt.Errorf("failed to query feedback by type: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return recommend.FeedbackStats{}, fmt.Errorf("failed to scan feedback type: %w", err)
		}
		stats.ByType[recommend.Outcome(t)] = n
	}
	if err := rows.Err(); err != nil {
		return recommend.FeedbackStats{}, fmt.Errorf("error iterating feedback types: %w", err)
	}
	return stats, nil
}
