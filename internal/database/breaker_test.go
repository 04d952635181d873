// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lodgerank/internal/config"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

type fakeCatalog struct {
	err   error
	calls int
}

func (f *fakeCatalog) QueryCandidates(_ context.Context, _ recommend.CandidateQuery) ([]recommend.ItemProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []recommend.ItemProfile{{ID: 1}}, nil
}

func (f *fakeCatalog) GetItems(_ context.Context, ids []int) ([]recommend.ItemProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]recommend.ItemProfile, len(ids))
	for i, id := range ids {
		out[i] = recommend.ItemProfile{ID: id}
	}
	return out, nil
}

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Hour,
		FailureThreshold: 3,
	}
}

func TestBreakerCatalog_PassThrough(t *testing.T) {
	store := &fakeCatalog{}
	b := NewBreakerCatalog(store, testBreakerConfig(), zerolog.Nop())

	items, err := b.GetItems(context.Background(), []int{4, 5})
	if err != nil || len(items) != 2 {
		t.Fatalf("GetItems() = %v, %v", items, err)
	}
	if b.State() != "closed" {
		t.Errorf("State() = %s, want closed", b.State())
	}
}

func TestBreakerCatalog_OpensAfterConsecutiveFailures(t *testing.T) {
	store := &fakeCatalog{err: errors.New("IO Error: disk unavailable")}
	b := NewBreakerCatalog(store, testBreakerConfig(), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := b.QueryCandidates(ctx, recommend.CandidateQuery{}); err == nil {
			t.Fatalf("call %d: expected store error", i)
		}
	}
	if b.State() != "open" {
		t.Fatalf("State() = %s, want open", b.State())
	}

	_, err := b.QueryCandidates(ctx, recommend.CandidateQuery{})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if store.calls != 3 {
		t.Errorf("store calls = %d, want 3 (open circuit must not reach the store)", store.calls)
	}
}

func TestBreakerCatalog_IgnoredErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", fmt.Errorf("item 3: %w", recommend.ErrNotFound)},
		{"caller canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCatalog{err: tt.err}
			b := NewBreakerCatalog(store, testBreakerConfig(), zerolog.Nop())

			for i := 0; i < 10; i++ {
				_, err := b.GetItems(context.Background(), []int{3})
				if !errors.Is(err, tt.err) {
					t.Fatalf("error = %v, want %v", err, tt.err)
				}
			}
			if b.State() != "closed" {
				t.Errorf("State() = %s, want closed", b.State())
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timeout"},
		{errors.New("driver: bad connection"), "connection"},
		{errors.New("INTERNAL Error: assertion failed"), "internal"},
		{errors.New("Binder Error: column not found"), "query"},
	}
	for _, tt := range tests {
		if got := errorKind(tt.err); got != tt.want {
			t.Errorf("errorKind(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestStateConversions(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		f     float64
		s     string
	}{
		{gobreaker.StateClosed, 0, "closed"},
		{gobreaker.StateHalfOpen, 1, "half-open"},
		{gobreaker.StateOpen, 2, "open"},
	}
	for _, tt := range tests {
		if got := stateToFloat(tt.state); got != tt.f {
			t.Errorf("stateToFloat(%v) = %v, want %v", tt.state, got, tt.f)
		}
		if got := stateToString(tt.state); got != tt.s {
			t.Errorf("stateToString(%v) = %s, want %s", tt.state, got, tt.s)
		}
	}
}
