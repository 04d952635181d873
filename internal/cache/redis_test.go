// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"recs:user:1:", "recs:user:1:"},
		{"a*b", `a\*b`},
		{"q?[x]", `q\?\[x\]`},
		{`back\slash`, `back\\slash`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := escapeGlob(tt.in); got != tt.want {
			t.Errorf("escapeGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDialRedis_BadURL(t *testing.T) {
	if _, err := DialRedis(context.Background(), "http://localhost:6379"); err == nil {
		t.Error("DialRedis() with http scheme should fail")
	}
}

// TestRedis_Integration runs against a live server when LODGERANK_TEST_REDIS_URL is set.
func TestRedis_Integration(t *testing.T) {
	url := os.Getenv("LODGERANK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LODGERANK_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	r, err := DialRedis(ctx, url)
	if err != nil {
		t.Fatalf("DialRedis() error = %v", err)
	}
	defer r.Close()

	ns := "test-" + uuid.NewString() + ":"
	for i := 0; i < 20; i++ {
		if err := r.Set(ctx, fmt.Sprintf("%suser:%d", ns, i), []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	v, ok, err := r.Get(ctx, ns+"user:3")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("Get() = %q, %v, %v", v, ok, err)
	}

	if err := r.DeletePrefix(ctx, ns); err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}
	if _, ok, _ := r.Get(ctx, ns+"user:3"); ok {
		t.Error("key survived DeletePrefix")
	}
}
