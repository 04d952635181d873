// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func openTestBadger(t *testing.T) *Badger {
	t.Helper()
	b, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBadger_SetGet(t *testing.T) {
	b := openTestBadger(t)
	ctx := context.Background()

	if err := b.Set(ctx, "trending:week:10", []byte(`[{"id":1}]`), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	v, ok, err := b.Get(ctx, "trending:week:10")
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v; want hit", ok, err)
	}
	if string(v) != `[{"id":1}]` {
		t.Errorf("Get() = %s", v)
	}

	_, ok, err = b.Get(ctx, "trending:month:10")
	if err != nil || ok {
		t.Errorf("Get(missing) = %v, %v; want miss without error", ok, err)
	}
}

func TestBadger_TTL(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for Badger's one second TTL resolution")
	}
	b := openTestBadger(t)
	ctx := context.Background()

	if err := b.Set(ctx, "short", []byte("x"), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := b.Get(ctx, "short"); !ok {
		t.Fatal("expected hit right after Set")
	}

	time.Sleep(2100 * time.Millisecond)

	if _, ok, _ := b.Get(ctx, "short"); ok {
		t.Error("expected entry to expire")
	}
}

func TestBadger_DeletePrefix(t *testing.T) {
	b := openTestBadger(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		key := fmt.Sprintf("recs:user:%d:fresh:h", i)
		if err := b.Set(ctx, key, []byte("v"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Set(ctx, "similar:1:10", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}

	if err := b.DeletePrefix(ctx, "recs:"); err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}

	for _, key := range []string{"recs:user:0:fresh:h", "recs:user:249:fresh:h"} {
		if _, ok, _ := b.Get(ctx, key); ok {
			t.Errorf("%s still present", key)
		}
	}
	if _, ok, _ := b.Get(ctx, "similar:1:10"); !ok {
		t.Error("similar:1:10 was deleted")
	}

	if err := b.DeletePrefix(ctx, "nothing:"); err != nil {
		t.Errorf("DeletePrefix(no match) error = %v", err)
	}
}

func TestBadger_CanceledContext(t *testing.T) {
	b := openTestBadger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Set(ctx, "k", []byte("v"), time.Hour); err == nil {
		t.Error("Set() with canceled context should fail")
	}
	if _, _, err := b.Get(ctx, "k"); err == nil {
		t.Error("Get() with canceled context should fail")
	}
}
