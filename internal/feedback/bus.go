// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package feedback

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/config"
)

// Bus is a publisher/subscriber pair for one broker backend.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Topic      string
	Backend    string

	logger  watermill.LoggerAdapter
	closers []func() error
}

// OpenBus connects the configured backend. The in-process gochannel
// backend needs no external services; nats requires a binary built with
// -tags=nats.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBus(cfg config.BrokerConfig, logger zerolog.Logger) (*Bus, error) {
	wmLogger := NewWatermillLogger(logger.With().Str("component", "feedback_bus").Logger())

	topic := cfg.Topic
	if topic == "" {
		topic = "lodgerank.feedback"
	}

	switch cfg.Backend {
	case "", config.BrokerBackendChannel:
		return newChannelBus(topic, wmLogger), nil
	case config.BrokerBackendNATS:
		return openNATSBus(&cfg, topic, wmLogger)
	default:
		return nil, fmt.Errorf("unknown broker backend %q", cfg.Backend)
	}
}

func newChannelBus(topic string, logger watermill.LoggerAdapter) *Bus {
	pubSub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: false,
	}, logger)

	return &Bus{
		Publisher:  pubSub,
		Subscriber: pubSub,
		Topic:      topic,
		Backend:    config.BrokerBackendChannel,
		logger:     logger,
		closers:    []func() error{pubSub.Close},
	}
}

// Close closes every underlying connection.
func (b *Bus) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
