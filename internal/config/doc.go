// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

/*
Package config provides centralized configuration management for LodgeRank.

# Configuration Sources

Configuration is layered with Koanf v2, later sources overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - An optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/lodgerank/config.yaml
  - Environment variables mapped through an explicit table

Unmapped environment variables are ignored.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development, staging, production

API:
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated origins (default: *)
  - RETRAIN_PER_HOUR: on-demand retrain budget (default: 6)

Storage:
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - BREAKER_ENABLED, BREAKER_FAILURE_THRESHOLD, BREAKER_TIMEOUT
  - CACHE_BACKEND: memory, badger, redis
  - CACHE_BADGER_PATH, REDIS_URL, CACHE_MAX_ENTRIES
  - MODELS_DIR, MODELS_NAME

Feedback bus:
  - BROKER_BACKEND: gochannel or nats (nats requires the nats build tag)
  - NATS_URL, FEEDBACK_TOPIC, NATS_DURABLE_NAME, NATS_QUEUE_GROUP

Recommendation engine:
  - RECOMMEND_WEIGHT_RATING, RECOMMEND_WEIGHT_LOCATION, ... (normalized at runtime)
  - RECOMMEND_HIDDEN: comma-separated hidden layer widths, e.g. "32,16"
  - RECOMMEND_TRAIN_INTERVAL, RECOMMEND_TRAIN_ON_STARTUP, RECOMMEND_TRAIN_WINDOW
  - RECOMMEND_CACHE_TTL, RECOMMEND_SIMILAR_CACHE_TTL, RECOMMEND_TRENDING_CACHE_TTL

See envMappings in koanf.go for the full table.

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("failed to load config")
	}
*/
package config
