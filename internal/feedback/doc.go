// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

/*
Package feedback carries recorded feedback events over a watermill bus.

The engine publishes every accepted FeedbackEvent through Publisher. A
Consumer subscribes to the same topic and hands each event to a Handler;
the server wires InvalidateOnFeedback so that a user's cached
recommendations are dropped on every replica once their feedback lands.

Backends:

  - gochannel (default): in-process, no external services
  - nats: JetStream, available in binaries built with -tags=nats

With NATS and an empty queue group each replica receives every event.
Setting NATS_QUEUE_GROUP (with NATS_DURABLE_NAME) switches to a shared
durable consumer where each event is handled by one replica.

Messages that cannot be decoded, and events whose handler still fails
after the configured retries, are logged, counted in
recommend_feedback_consumed_total and acknowledged.
*/
package feedback
