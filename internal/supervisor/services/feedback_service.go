// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// FeedbackConsumer is a message router that runs once. Satisfied by
// *feedback.Consumer.
type FeedbackConsumer interface {
	Run(ctx context.Context) error
	Close() error
}

// FeedbackConsumerService runs the feedback consumer under supervision.
// A watermill router cannot be restarted after it stops, so each Serve
// builds a fresh consumer.
type FeedbackConsumerService struct {
	newConsumer func() (FeedbackConsumer, error)
	logger      zerolog.Logger
	name        string
}

// NewFeedbackConsumerService creates the service around a consumer factory.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFeedbackConsumerService(newConsumer func() (FeedbackConsumer, error), logger zerolog.Logger) *FeedbackConsumerService {
	return &FeedbackConsumerService{
		newConsumer: newConsumer,
		logger:      logger.With().Str("service", "feedback_consumer").Logger(),
		name:        "feedback-consumer",
	}
}

// Serve implements suture.Service.
func (s *FeedbackConsumerService) Serve(ctx context.Context) error {
	consumer, err := s.newConsumer()
	if err != nil {
		return fmt.Errorf("create feedback consumer: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("error closing feedback consumer")
		}
	}()

	s.logger.Info().Msg("feedback consumer starting")
	if err := consumer.Run(ctx); err != nil {
		return fmt.Errorf("feedback consumer: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// String names the service in supervisor logs.
func (s *FeedbackConsumerService) String() string {
	return s.name
}
