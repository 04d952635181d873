// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package feedback

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Publisher forwards recorded feedback onto the event bus.
type Publisher struct {
	publisher message.Publisher
	topic     string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a feedback publisher for topic.
func NewPublisher(publisher message.Publisher, topic string) *Publisher {
	return &Publisher{publisher: publisher, topic: topic}
}

// PublishFeedback serializes and publishes one event.
//
//nolint:gocritic // hugeParam: FeedbackEvent is part of the port signature
func (p *Publisher) PublishFeedback(ctx context.Context, event recommend.FeedbackEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	msg, err := NewMessage(ctx, event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish feedback %s: %w", msg.UUID, err)
	}
	return nil
}

// Close stops further publishing. The underlying bus is closed by its owner.
func (p *Publisher) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

var _ recommend.FeedbackPublisher = (*Publisher)(nil)
