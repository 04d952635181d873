// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lodgerank/config.yaml",
	"/etc/lodgerank/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			RetrainPerHour:  6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/lodgerank.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Breaker: BreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		Cache: CacheConfig{
			Backend:    CacheBackendMemory,
			MaxEntries: 10000,
			BadgerPath: "/data/cache",
			RedisURL:   "",
		},
		Broker: BrokerConfig{
			Backend:       BrokerBackendChannel,
			URL:           "nats://127.0.0.1:4222",
			Topic:         "lodgerank.feedback",
			DurableName:   "lodgerank-feedback",
			QueueGroup:    "",
			RetryCount:    3,
			RetryInterval: 100 * time.Millisecond,
		},
		Models: ModelsConfig{
			Dir:  "/data/models",
			Name: "scorer",
		},
		Recommend: *recommend.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"api.cors_origins",
	"recommend.model.hidden",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// API
	"rate_limit_requests": "api.rate_limit_reqs",
	"rate_limit_window":   "api.rate_limit_window",
	"disable_rate_limit":  "api.rate_limit_disabled",
	"cors_origins":        "api.cors_origins",
	"retrain_per_hour":    "api.retrain_per_hour",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Circuit breaker
	"breaker_enabled":           "breaker.enabled",
	"breaker_max_requests":      "breaker.max_requests",
	"breaker_interval":          "breaker.interval",
	"breaker_timeout":           "breaker.timeout",
	"breaker_failure_threshold": "breaker.failure_threshold",

	// Cache
	"cache_backend":     "cache.backend",
	"cache_max_entries": "cache.max_entries",
	"cache_badger_path": "cache.badger_path",
	"redis_url":         "cache.redis_url",

	// Broker
	"broker_backend":        "broker.backend",
	"nats_url":              "broker.url",
	"feedback_topic":        "broker.topic",
	"nats_durable_name":     "broker.durable_name",
	"nats_queue_group":      "broker.queue_group",
	"broker_retry_count":    "broker.retry_count",
	"broker_retry_interval": "broker.retry_interval",

	// Model artifacts
	"models_dir":  "models.dir",
	"models_name": "models.name",

	// Heuristic weights and thresholds
	"recommend_weight_rating":      "recommend.weights.rating",
	"recommend_weight_location":    "recommend.weights.location",
	"recommend_weight_amenities":   "recommend.weights.amenities",
	"recommend_weight_budget":      "recommend.weights.budget",
	"recommend_weight_popularity":  "recommend.weights.popularity",
	"recommend_excellent_rating":   "recommend.heuristic.excellent_rating",
	"recommend_amenity_overlap":    "recommend.heuristic.amenity_overlap",
	"recommend_popular_bookings":   "recommend.heuristic.popularity_threshold",
	"recommend_profile_history":    "recommend.profile_history",
	"recommend_serving_advance":    "recommend.serving_advance_days",
	"recommend_similar_min_rating": "recommend.limits.similar_min_rating",

	// Scoring network
	"recommend_hidden":           "recommend.model.hidden",
	"recommend_learning_rate":    "recommend.model.learning_rate",
	"recommend_l2":               "recommend.model.l2",
	"recommend_epochs":           "recommend.model.epochs",
	"recommend_batch_size":       "recommend.model.batch_size",
	"recommend_validation_split": "recommend.model.validation_split",
	"recommend_patience":         "recommend.model.patience",
	"recommend_seed":             "recommend.model.seed",

	// Training
	"recommend_train_interval":   "recommend.training.interval",
	"recommend_train_on_startup": "recommend.training.on_startup",
	"recommend_train_window":     "recommend.training.window",
	"recommend_train_max":        "recommend.training.max_samples",
	"recommend_train_min":        "recommend.training.min_samples",
	"recommend_train_timeout":    "recommend.training.timeout",
	"recommend_keep_versions":    "recommend.training.keep_versions",

	// Limits
	"recommend_max_candidates":    "recommend.limits.max_candidates",
	"recommend_default_limit":     "recommend.limits.default_limit",
	"recommend_max_limit":         "recommend.limits.max_limit",
	"recommend_retrieval_timeout": "recommend.limits.retrieval_timeout",

	// Result cache TTLs
	"recommend_cache_enabled":      "recommend.cache.enabled",
	"recommend_cache_ttl":          "recommend.cache.personalized_ttl",
	"recommend_similar_cache_ttl":  "recommend.cache.similar_ttl",
	"recommend_trending_cache_ttl": "recommend.cache.trending_ttl",
	"recommend_stale_ttl":          "recommend.cache.stale_ttl",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return "" so unrelated environment variables are skipped.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - RECOMMEND_TRAIN_INTERVAL -> recommend.training.interval
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for synchronizing access to configuration
// replaced from the callback.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
