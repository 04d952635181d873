// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/lodgerank/internal/database/query"
	"github.com/tomtom215/lodgerank/internal/metrics"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// itemBaseColumns selects an item without its booking count. scanItem
// expects one popularity column after it.
const itemBaseColumns = `i.id, i.name, i.category, i.price_tier, i.location, i.amenities,
	i.rating, i.review_count, i.avg_nightly_price, i.status`

// itemColumns selects an item joined with its recent booking count. Queries
// using it must join recentBookingsJoin and bind its cutoff first.
const itemColumns = itemBaseColumns + `, COALESCE(rb.n, 0)`

// realBooking matches completed bookings. Booked feedback repeats a booking
// already on record and is excluded from counts.
const realBooking = `outcome = 'booked' AND COALESCE(source, '` + sourceBooking + `') = '` + sourceBooking + `'`

const recentBookingsJoin = `LEFT JOIN (
		SELECT item_id, COUNT(*) AS n
		FROM interactions
		WHERE ` + realBooking + ` AND occurred_at >= ?
		GROUP BY item_id
	) rb ON rb.item_id = i.id`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads the itemColumns projection, followed by any extra destinations.
func scanItem(row rowScanner, extra ...any) (recommend.ItemProfile, error) {
	var item recommend.ItemProfile
	var tier, amenities string
	dest := []any{
		&item.ID, &item.Name, &item.Category, &tier, &item.Location, &amenities,
		&item.Rating, &item.ReviewCount, &item.AvgNightlyPrice, &item.Status, &item.RecentBookings,
	}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return recommend.ItemProfile{}, err
	}
	item.PriceTier = recommend.PriceTier(tier)
	item.Amenities = splitAmenities(amenities)
	return item, nil
}

func splitAmenities(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinAmenities(amenities []string) string {
	clean := make([]string, 0, len(amenities))
	for _, a := range amenities {
		if a = strings.TrimSpace(strings.ReplaceAll(a, ",", " ")); a != "" {
			clean = append(clean, a)
		}
	}
	return strings.Join(clean, ",")
}

func (db *DB) recentCutoff() time.Time {
	return db.now().UTC().Add(-recentBookingsWindow)
}

// QueryCandidates returns items matching the query, best rated first.
//
//nolint:gocritic // hugeParam: CandidateQuery is part of the port signature
func (db *DB) QueryCandidates(ctx context.Context, q recommend.CandidateQuery) ([]recommend.ItemProfile, error) {
	wb := query.NewWhereBuilder().
		AddClauseIf(q.Status != "", "lower(i.status) = lower(?)", q.Status).
		AddClauseIf(q.Location != "", "contains(lower(i.location), lower(?))", q.Location).
		AddClauseIf(q.Category != "", "lower(i.category) = lower(?)", q.Category).
		AddClauseIf(q.PriceTier != "", "lower(i.price_tier) = lower(?)", string(q.PriceTier)).
		AddClauseIf(q.MinRating > 0, "i.rating >= ?", q.MinRating).
		AddNotIn("i.id", q.Exclude)
	if clause, args := similarClause(q.SimilarCategory, q.SimilarTier); clause != "" {
		wb.AddClause(clause, args...)
	}
	where, whereArgs := wb.BuildWithPrefix()

	args := append([]any{db.recentCutoff()}, whereArgs...)
	sqlQuery := fmt.Sprintf(`SELECT %s FROM items i %s %s
		ORDER BY i.rating DESC, i.review_count DESC, i.id`, itemColumns, recentBookingsJoin, where)
	if q.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, q.Limit)
	}

	return db.queryItems(ctx, "query_candidates", sqlQuery, args...)
}

// similarClause matches the category or the price tier, whichever are set.
func similarClause(category string, tier recommend.PriceTier) (string, []any) {
	var parts []string
	var args []any
	if category != "" {
		parts = append(parts, "lower(i.category) = lower(?)")
		args = append(args, category)
	}
	if tier != "" {
		parts = append(parts, "lower(i.price_tier) = lower(?)")
		args = append(args, string(tier))
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// GetItems returns the items with the given IDs. Unknown IDs are skipped.
func (db *DB) GetItems(ctx context.Context, ids []int) ([]recommend.ItemProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	where, whereArgs := query.NewWhereBuilder().AddIn("i.id", ids).BuildWithPrefix()
	args := append([]any{db.recentCutoff()}, whereArgs...)
	sqlQuery := fmt.Sprintf(`SELECT %s FROM items i %s %s ORDER BY i.id`, itemColumns, recentBookingsJoin, where)

	return db.queryItems(ctx, "get_items", sqlQuery, args...)
}

func (db *DB) queryItems(ctx context.Context, op, sqlQuery string, args ...any) (items []recommend.ItemProfile, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, "items", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// UpsertItem inserts or replaces a catalog item. RecentBookings is derived
// from interactions and ignored here.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (db *DB) UpsertItem(ctx context.Context, item recommend.ItemProfile) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", "items", time.Since(start), err) }()

	status := item.Status
	if status == "" {
		status = recommend.ItemStatusActive
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO items (id, name, category, price_tier, location, amenities, rating, review_count, avg_nightly_price, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price_tier = EXCLUDED.price_tier,
			location = EXCLUDED.location,
			amenities = EXCLUDED.amenities,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			avg_nightly_price = EXCLUDED.avg_nightly_price,
			status = EXCLUDED.status`,
		item.ID, item.Name, item.Category, string(item.PriceTier), item.Location, joinAmenities(item.Amenities),
		item.Rating, item.ReviewCount, item.AvgNightlyPrice, status)
	if err != nil {
		return fmt.Errorf("failed to upsert item %d: %w", item.ID, err)
	}
	return nil
}

// nullFloat maps 0 to NULL for optional numeric columns.
func nullFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
