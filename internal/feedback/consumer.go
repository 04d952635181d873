// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/metrics"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Handler reacts to a consumed feedback event.
type Handler interface {
	HandleFeedback(ctx context.Context, event recommend.FeedbackEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event recommend.FeedbackEvent) error

// HandleFeedback calls f.
//
//nolint:gocritic // hugeParam: FeedbackEvent is part of the port signature
func (f HandlerFunc) HandleFeedback(ctx context.Context, event recommend.FeedbackEvent) error {
	return f(ctx, event)
}

// ConsumerConfig tunes handler retries.
type ConsumerConfig struct {
	RetryCount    int
	RetryInterval time.Duration
	CloseTimeout  time.Duration
}

// Consumer runs a watermill router that feeds bus events to a Handler.
// Undecodable messages and events whose handler keeps failing after the
// retries are logged and acknowledged, so one bad event cannot stall the
// topic.
type Consumer struct {
	router  *message.Router
	handler Handler
	logger  zerolog.Logger
}

// NewConsumer wires handler to the bus topic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumer(bus *Bus, handler Handler, cfg ConsumerConfig, logger zerolog.Logger) (*Consumer, error) {
	logger = logger.With().Str("component", "feedback_consumer").Logger()
	wmLogger := NewWatermillLogger(logger)

	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	c := &Consumer{
		router:  router,
		handler: handler,
		logger:  logger,
	}

	// Middleware added first runs outermost
	router.AddMiddleware(c.ackAfterRetries)
	router.AddMiddleware(middleware.Recoverer)
	if cfg.RetryCount > 0 {
		retry := middleware.Retry{
			MaxRetries:      cfg.RetryCount,
			InitialInterval: cfg.RetryInterval,
			MaxInterval:     10 * cfg.RetryInterval,
			Multiplier:      2.0,
			Logger:          wmLogger,
		}
		router.AddMiddleware(retry.Middleware)
	}

	router.AddConsumerHandler("feedback", bus.Topic, bus.Subscriber, c.handle)

	return c, nil
}

func (c *Consumer) handle(msg *message.Message) error {
	event, err := DecodeMessage(msg)
	if err != nil {
		metrics.FeedbackConsumed.WithLabelValues("invalid").Inc()
		c.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping undecodable feedback message")
		return nil
	}

	if err := c.handler.HandleFeedback(msg.Context(), event); err != nil {
		return fmt.Errorf("handle feedback for user %d: %w", event.UserID, err)
	}
	metrics.FeedbackConsumed.WithLabelValues("ok").Inc()
	return nil
}

// ackAfterRetries turns a final handler failure into an acknowledgement.
func (c *Consumer) ackAfterRetries(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		produced, err := h(msg)
		if err != nil {
			metrics.FeedbackConsumed.WithLabelValues("failed").Inc()
			c.logger.Error().Err(err).
				Str("message_id", msg.UUID).
				Str("correlation_id", msg.Metadata.Get(MetadataCorrelationID)).
				Msg("feedback handler failed, message dropped")
			return nil, nil
		}
		return produced, nil
	}
}

// Run processes messages until ctx is canceled or Close is called.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running is closed once the router is processing messages.
func (c *Consumer) Running() <-chan struct{} {
	return c.router.Running()
}

// Close stops the router, waiting for in-flight messages.
func (c *Consumer) Close() error {
	return c.router.Close()
}

// CacheInvalidator drops a user's cached recommendations when their
// feedback arrives over the bus. With a shared bus this keeps the local
// caches of every replica consistent.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID int) error
}

// InvalidateOnFeedback returns a Handler that invalidates the user's
// cached recommendations.
func InvalidateOnFeedback(inv CacheInvalidator) Handler {
	return HandlerFunc(func(ctx context.Context, event recommend.FeedbackEvent) error {
		return inv.InvalidateUser(ctx, event.UserID)
	})
}
