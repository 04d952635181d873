// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package feedback

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/lodgerank/internal/logging"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Message metadata keys.
const (
	MetadataUserID        = "user_id"
	MetadataType          = "type"
	MetadataCorrelationID = "correlation_id"
)

// NewMessage serializes event into a watermill message with a fresh UUID.
// The request ID of ctx, if any, travels as the correlation ID.
//
//nolint:gocritic // hugeParam: event passed by value for immutability
func NewMessage(ctx context.Context, event recommend.FeedbackEvent) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(MetadataUserID, strconv.Itoa(event.UserID))
	msg.Metadata.Set(MetadataType, string(event.Type))
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}
	return msg, nil
}

// DecodeMessage parses a message produced by NewMessage.
func DecodeMessage(msg *message.Message) (recommend.FeedbackEvent, error) {
	var event recommend.FeedbackEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return recommend.FeedbackEvent{}, fmt.Errorf("unmarshal feedback event %s: %w", msg.UUID, err)
	}
	if event.UserID <= 0 || event.ItemID <= 0 || !event.Type.IsValid() {
		return recommend.FeedbackEvent{}, fmt.Errorf("feedback event %s: invalid payload", msg.UUID)
	}
	return event, nil
}
