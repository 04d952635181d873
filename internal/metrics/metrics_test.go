// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantErrs  float64
	}{
		{
			name:      "successful query",
			operation: "SELECT",
			table:     "items",
		},
		{
			name:      "failed query",
			operation: "INSERT",
			table:     "feedback",
			err:       errors.New("connection refused"),
			wantErrs:  1,
		},
		{
			name:      "long error is truncated",
			operation: "SELECT",
			table:     "bookings",
			err:       errors.New(strings.Repeat("x", 80)),
			wantErrs:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)

			if tt.err == nil {
				return
			}
			errLabel := tt.err.Error()
			if len(errLabel) > 50 {
				errLabel = errLabel[:50]
			}
			got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, errLabel))
			if got != tt.wantErrs {
				t.Errorf("DBQueryErrors = %v, want %v", got, tt.wantErrs)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues("test_lookup"))
	missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues("test_lookup"))

	RecordCacheLookup("test_lookup", true)
	RecordCacheLookup("test_lookup", true)
	RecordCacheLookup("test_lookup", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("test_lookup")) - hitsBefore; got != 2 {
		t.Errorf("hits delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("test_lookup")) - missesBefore; got != 1 {
		t.Errorf("misses delta = %v, want 1", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequests.WithLabelValues("test_op", "heuristic"))
	RecordRecommendation("test_op", "heuristic", 12*time.Millisecond)
	after := testutil.ToFloat64(RecommendRequests.WithLabelValues("test_op", "heuristic"))
	if after-before != 1 {
		t.Errorf("RecommendRequests delta = %v, want 1", after-before)
	}

	m := &dto.Metric{}
	if err := RecommendDuration.WithLabelValues("test_op").(interface{ Write(*dto.Metric) error }).Write(m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if m.GetHistogram().GetSampleCount() == 0 {
		t.Error("expected at least one duration observation")
	}
}

func TestRecordTrainingRun(t *testing.T) {
	for _, result := range []string{"success", "insufficient", "failure"} {
		before := testutil.ToFloat64(TrainingRuns.WithLabelValues(result))
		RecordTrainingRun(result, time.Second)
		if got := testutil.ToFloat64(TrainingRuns.WithLabelValues(result)) - before; got != 1 {
			t.Errorf("TrainingRuns[%s] delta = %v, want 1", result, got)
		}
	}
}

func TestSetModelServing(t *testing.T) {
	SetModelServing(true, 250)
	if got := testutil.ToFloat64(ModelReady); got != 1 {
		t.Errorf("ModelReady = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ModelSamples); got != 250 {
		t.Errorf("ModelSamples = %v, want 250", got)
	}

	SetModelServing(false, 0)
	if got := testutil.ToFloat64(ModelReady); got != 0 {
		t.Errorf("ModelReady = %v, want 0", got)
	}
}
