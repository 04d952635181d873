// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/lodgerank/internal/metrics"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// profileHistoryLimit matches the booking depth used for serving-time profiles.
const profileHistoryLimit = 20

// bookingsAtInteraction counts an item's bookings in the popularity window
// that ended when the interaction happened.
var bookingsAtInteraction = fmt.Sprintf(`(
		SELECT COUNT(*) FROM interactions b
		WHERE b.item_id = i.id
			AND b.outcome = 'booked' AND COALESCE(b.source, '%s') = '%s'
			AND b.occurred_at >= x.occurred_at - INTERVAL %d DAY
			AND b.occurred_at < x.occurred_at
	)`, sourceBooking, sourceBooking, int(recentBookingsWindow/(24*time.Hour)))

// QueryTrainingWindow returns up to limit examples recorded after since,
// newest first. Interactions with items missing from the catalog are
// skipped. Each example sees the user and item as they were when the
// interaction happened: preferences come from earlier bookings only and
// item popularity from the window before it.
func (db *DB) QueryTrainingWindow(ctx context.Context, since time.Time, limit int) (examples []recommend.TrainingExample, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("training_window", "interactions", time.Since(start), err) }()

	examples, err = db.scanTrainingWindow(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	if err := db.attachPreferences(ctx, examples); err != nil {
		return nil, err
	}
	return examples, nil
}

func (db *DB) scanTrainingWindow(ctx context.Context, since time.Time, limit int) ([]recommend.TrainingExample, error) {
	sqlQuery := `SELECT ` + itemBaseColumns + `, ` + bookingsAtInteraction + `, ` + interactionColumns + `,
			COALESCE(u.age, 0), COALESCE(u.home_location, ''), u.id IS NULL
		FROM interactions x
		JOIN items i ON i.id = x.item_id
		LEFT JOIN users u ON u.id = x.user_id
		WHERE x.occurred_at > ?
		ORDER BY x.occurred_at DESC, x.user_id, x.item_id`
	args := []any{since.UTC()}
	if limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query training window: %w", err)
	}
	defer closeWithLog(rows, db.logger, "rows")

	var examples []recommend.TrainingExample
	for rows.Next() {
		var ex recommend.TrainingExample
		var outcome string
		extra := interactionDest(&ex.Record, &outcome)
		extra = append(extra, &ex.User.Age, &ex.User.HomeLocation, &ex.User.Anonymous)
		item, err := scanItem(rows, extra...)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training example: %w", err)
		}
		ex.Record.Outcome = recommend.Outcome(outcome)
		ex.User.ID = ex.Record.UserID
		ex.Item = item
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training window: %w", err)
	}
	return examples, nil
}

// bookingHistory is a user's full booking history, newest first, with the
// booked items resolved.
type bookingHistory struct {
	records []recommend.InteractionRecord
	items   map[int]recommend.ItemProfile
}

// attachPreferences loads each distinct user's bookings once and derives
// every example's preferences from the bookings made before it.
func (db *DB) attachPreferences(ctx context.Context, examples []recommend.TrainingExample) error {
	loaded := make(map[int]*bookingHistory)
	for i := range examples {
		ex := &examples[i]
		h, ok := loaded[ex.User.ID]
		if !ok {
			var err error
			if h, err = db.loadBookingHistory(ctx, ex.User.ID); err != nil {
				return err
			}
			loaded[ex.User.ID] = h
		}
		prior := historyBefore(h.records, ex.Record.Timestamp, profileHistoryLimit)
		ex.User = recommend.DeriveProfile(ex.User, prior, h.items)
	}
	return nil
}

func (db *DB) loadBookingHistory(ctx context.Context, userID int) (*bookingHistory, error) {
	records, err := db.QueryHistory(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("history for user %d: %w", userID, err)
	}
	ids := make([]int, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].ItemID)
	}
	items, err := db.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("history items for user %d: %w", userID, err)
	}
	byID := make(map[int]recommend.ItemProfile, len(items))
	for i := range items {
		byID[items[i].ID] = items[i]
	}
	return &bookingHistory{records: records, items: byID}, nil
}

// historyBefore returns up to limit records strictly older than t from a
// newest-first history.
func historyBefore(history []recommend.InteractionRecord, t time.Time, limit int) []recommend.InteractionRecord {
	i := sort.Search(len(history), func(i int) bool { return history[i].Timestamp.Before(t) })
	prior := history[i:]
	if limit > 0 && len(prior) > limit {
		prior = prior[:limit]
	}
	return prior
}
