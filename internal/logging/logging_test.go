// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if i := strings.LastIndex(line, "\n"); i >= 0 {
		line = line[i+1:]
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_JSONOutput(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	logger := Logger().With().Str("component", "recommend").Logger()
	logger.Info().Int("user_id", 42).Msg("generated")

	out := decodeLine(t, &buf)
	if out["message"] != "generated" || out["component"] != "recommend" || out["user_id"] != float64(42) {
		t.Errorf("log line = %v", out)
	}
	if _, ok := out["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestCtx_AddsIDs(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	Ctx(ctx).Info().Msg("hello")

	out := decodeLine(t, &buf)
	if out["request_id"] != "req-1" || out["correlation_id"] != "corr-1" {
		t.Errorf("log line = %v", out)
	}

	if RequestIDFromContext(context.Background()) != "" || CorrelationIDFromContext(context.Background()) != "" {
		t.Error("empty context should carry no IDs")
	}
	if id := CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background())); len(id) != 8 {
		t.Errorf("generated correlation ID %q, want 8 characters", id)
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("request IDs should be unique")
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(NewTestLogger(&buf))

	logger.With("service", "retrain").WithGroup("job").Warn("restarting",
		"attempt", 3,
		"err", errors.New("boom"),
		slog.Group("backoff", "seconds", 1.5),
	)

	out := decodeLine(t, &buf)
	want := map[string]interface{}{
		"level":               "warn",
		"message":             "restarting",
		"service":             "retrain",
		"job.attempt":         float64(3),
		"job.err":             "boom",
		"job.backoff.seconds": 1.5,
	}
	for k, v := range want {
		if out[k] != v {
			t.Errorf("%s = %v, want %v (line %v)", k, out[k], v, out)
		}
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandler(zerolog.New(nil).Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
