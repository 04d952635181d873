// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package config

import (
	"time"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	API       APIConfig        `koanf:"api"`
	Logging   LoggingConfig    `koanf:"logging"`
	Database  DatabaseConfig   `koanf:"database"`
	Breaker   BreakerConfig    `koanf:"breaker"`
	Cache     CacheConfig      `koanf:"cache"`
	Broker    BrokerConfig     `koanf:"broker"`
	Models    ModelsConfig     `koanf:"models"`
	Recommend recommend.Config `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// APIConfig holds HTTP API limits.
type APIConfig struct {
	// RateLimitReqs is the number of requests allowed per client per window.
	// Default: 100
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window.
	// Default: 1m
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off per-client rate limiting.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`

	// CORSOrigins lists allowed CORS origins.
	// Default: ["*"]
	CORSOrigins []string `koanf:"cors_origins"`

	// RetrainPerHour limits on-demand retrain requests.
	// Default: 6
	RetrainPerHour int `koanf:"retrain_per_hour"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`       // ":memory:" for an in-process database
	MaxMemory string `koanf:"max_memory"` // DuckDB memory_limit, e.g. "1GB"
	Threads   int    `koanf:"threads"`    // 0 = use NumCPU
}

// BreakerConfig holds circuit breaker settings for catalog reads.
type BreakerConfig struct {
	// Enabled wraps the catalog store in a circuit breaker.
	// Default: true
	Enabled bool `koanf:"enabled"`

	// MaxRequests is the number of probe requests allowed in half-open state.
	// Default: 3
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval is the cyclic period in closed state after which counts reset.
	// Default: 1m
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open before half-open.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout"`

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	// Default: 5
	FailureThreshold uint32 `koanf:"failure_threshold"`
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
	CacheBackendRedis  = "redis"
)

// CacheConfig selects and configures the result cache backend.
type CacheConfig struct {
	// Backend is one of memory, badger, redis.
	// Default: memory
	Backend string `koanf:"backend"`

	// MaxEntries bounds the in-memory cache. 0 means unbounded.
	// Default: 10000
	MaxEntries int `koanf:"max_entries"`

	// BadgerPath is the directory of the Badger cache.
	BadgerPath string `koanf:"badger_path"`

	// RedisURL is a redis:// or rediss:// connection URL.
	RedisURL string `koanf:"redis_url"`
}

// Broker backends.
const (
	BrokerBackendChannel = "gochannel"
	BrokerBackendNATS    = "nats"
)

// BrokerConfig holds feedback event bus settings.
type BrokerConfig struct {
	// Backend is gochannel (in-process) or nats.
	// Default: gochannel
	Backend string `koanf:"backend"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// Topic is the feedback event topic.
	// Default: lodgerank.feedback
	Topic string `koanf:"topic"`

	// DurableName is the JetStream durable consumer name, used together
	// with QueueGroup.
	// Default: lodgerank-feedback
	DurableName string `koanf:"durable_name"`

	// QueueGroup load-balances consumers across replicas. Empty delivers
	// every event to every replica, which cache invalidation relies on
	// when replicas keep local caches.
	// Default: "" (fan-out)
	QueueGroup string `koanf:"queue_group"`

	// RetryCount is the number of handler retries before a message is dropped.
	// Default: 3
	RetryCount int `koanf:"retry_count"`

	// RetryInterval is the initial retry backoff.
	// Default: 100ms
	RetryInterval time.Duration `koanf:"retry_interval"`
}

// ModelsConfig holds scoring model artifact storage settings.
type ModelsConfig struct {
	// Dir is the artifact directory.
	// Default: /data/models
	Dir string `koanf:"dir"`

	// Name prefixes artifact file names.
	// Default: scorer
	Name string `koanf:"name"`
}

// Load loads configuration from defaults, an optional YAML file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
