// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate runs the test from an empty directory with no config file.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "lodgerank.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Cache.Backend != CacheBackendMemory {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Broker.Backend != BrokerBackendChannel {
		t.Errorf("Broker.Backend = %q, want gochannel", cfg.Broker.Backend)
	}
	if cfg.Recommend.Training.Interval != 7*24*time.Hour {
		t.Errorf("Recommend.Training.Interval = %v, want 168h", cfg.Recommend.Training.Interval)
	}
	if !reflect.DeepEqual(cfg.API.CORSOrigins, []string{"*"}) {
		t.Errorf("API.CORSOrigins = %v, want [*]", cfg.API.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() = %v, want nil", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"DUCKDB_PATH", "database.path"},
		{"CACHE_BACKEND", "cache.backend"},
		{"REDIS_URL", "cache.redis_url"},
		{"NATS_URL", "broker.url"},
		{"MODELS_DIR", "models.dir"},
		{"RECOMMEND_WEIGHT_RATING", "recommend.weights.rating"},
		{"RECOMMEND_HIDDEN", "recommend.model.hidden"},
		{"RECOMMEND_TRAIN_INTERVAL", "recommend.training.interval"},
		{"recommend_cache_ttl", "recommend.cache.personalized_ttl"},

		// Unknown keys are skipped
		{"PATH", ""},
		{"HOME", ""},
		{"RANDOM_VAR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := isolate(t)

	t.Run("no config file exists", func(t *testing.T) {
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: {}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove(filepath.Join(dir, "config.yaml"))

		if got := findConfigFile(); got != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", got)
		}
	})

	t.Run("CONFIG_PATH takes precedence", func(t *testing.T) {
		custom := writeConfig(t, dir, "server: {}\n")
		if got := findConfigFile(); got != custom {
			t.Errorf("findConfigFile() = %q, want %q", got, custom)
		}
	})

	t.Run("CONFIG_PATH with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})
}

func TestLoadWithKoanfDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, defaultConfig()) {
		t.Errorf("LoadWithKoanf() without overrides differs from defaults:\n got %+v\nwant %+v", cfg, defaultConfig())
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)

	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")
	t.Setenv("RECOMMEND_WEIGHT_RATING", "0.7")
	t.Setenv("RECOMMEND_HIDDEN", "64, 32")
	t.Setenv("RECOMMEND_TRAIN_INTERVAL", "12h")
	t.Setenv("RECOMMEND_TRAIN_ON_STARTUP", "false")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.API.CORSOrigins, want) {
		t.Errorf("API.CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	if cfg.Cache.Backend != CacheBackendRedis || cfg.Cache.RedisURL != "redis://cache:6379/2" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Recommend.Weights.Rating != 0.7 {
		t.Errorf("Weights.Rating = %v, want 0.7", cfg.Recommend.Weights.Rating)
	}
	if want := []int{64, 32}; !reflect.DeepEqual(cfg.Recommend.Model.Hidden, want) {
		t.Errorf("Model.Hidden = %v, want %v", cfg.Recommend.Model.Hidden, want)
	}
	if cfg.Recommend.Training.Interval != 12*time.Hour {
		t.Errorf("Training.Interval = %v, want 12h", cfg.Recommend.Training.Interval)
	}
	if cfg.Recommend.Training.OnStartup {
		t.Error("Training.OnStartup = true, want false")
	}

	// Untouched values keep their defaults
	if cfg.Recommend.Weights.Location != 0.2 {
		t.Errorf("Weights.Location = %v, want default 0.2", cfg.Recommend.Weights.Location)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
server:
  port: 9090
  environment: staging
database:
  path: ":memory:"
recommend:
  weights:
    rating: 2
  model:
    hidden: [8, 4]
  training:
    min_samples: 50
`)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.Environment != "staging" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q, want :memory:", cfg.Database.Path)
	}
	if cfg.Recommend.Weights.Rating != 2 {
		t.Errorf("Weights.Rating = %v, want 2", cfg.Recommend.Weights.Rating)
	}
	if want := []int{8, 4}; !reflect.DeepEqual(cfg.Recommend.Model.Hidden, want) {
		t.Errorf("Model.Hidden = %v, want %v", cfg.Recommend.Model.Hidden, want)
	}
	if cfg.Recommend.Training.MinSamples != 50 {
		t.Errorf("Training.MinSamples = %d, want 50", cfg.Recommend.Training.MinSamples)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "server:\n  port: 9090\nlogging:\n  level: warn\n")
	t.Setenv("HTTP_PORT", "7070")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want env value 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want file value warn", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"unknown cache backend", map[string]string{"CACHE_BACKEND": "memcached"}, "CACHE_BACKEND"},
		{"redis without url", map[string]string{"CACHE_BACKEND": "redis"}, "REDIS_URL"},
		{"nats with bad url", map[string]string{"BROKER_BACKEND": "nats", "NATS_URL": "http://nats:4222"}, "NATS_URL"},
		{"negative weight", map[string]string{"RECOMMEND_WEIGHT_BUDGET": "-1"}, "weights"},
		{"max below min samples", map[string]string{"RECOMMEND_TRAIN_MAX": "10"}, "max_samples"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatal("LoadWithKoanf() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
