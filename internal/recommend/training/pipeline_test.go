// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package training

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/recommend"
	"github.com/tomtom215/lodgerank/internal/recommend/features"
	"github.com/tomtom215/lodgerank/internal/recommend/model"
)

type fakeSource struct {
	examples []recommend.TrainingExample
	err      error
	release  chan struct{}
	calls    atomic.Int32
	since    atomic.Value
}

func (f *fakeSource) QueryTrainingWindow(ctx context.Context, since time.Time, limit int) ([]recommend.TrainingExample, error) {
	f.calls.Add(1)
	f.since.Store(since)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.examples) > limit {
		return f.examples[:limit], nil
	}
	return f.examples, nil
}

type memStore struct {
	mu      sync.Mutex
	saved   []*model.Artifact
	saveErr error
	pruned  []int
}

func (s *memStore) NextVersion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved) + 1
}

func (s *memStore) Save(_ context.Context, a *model.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, a)
	return nil
}

func (s *memStore) Prune(_ context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruned = append(s.pruned, keep)
	return 0, nil
}

func makeExamples(n int) []recommend.TrainingExample {
	outcomes := []recommend.Outcome{recommend.OutcomeBooked, recommend.OutcomeLiked, recommend.OutcomeIgnored, recommend.OutcomeDisliked}
	tiers := []recommend.PriceTier{recommend.TierBudget, recommend.TierEconomy, recommend.TierUpscale, recommend.TierLuxury}
	locations := []string{"Recife", "Salvador", "Curitiba", "Manaus"}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	out := make([]recommend.TrainingExample, n)
	for i := range out {
		out[i] = recommend.TrainingExample{
			Record: recommend.InteractionRecord{
				UserID:      i%17 + 1,
				ItemID:      i%23 + 1,
				Timestamp:   base.Add(time.Duration(i) * time.Hour),
				Outcome:     outcomes[i%len(outcomes)],
				Amount:      float64(100 + i%9*150),
				Guests:      i%4 + 1,
				AdvanceDays: i % 90,
			},
			User: recommend.UserProfile{
				ID:                 i%17 + 1,
				Age:                20 + i%50,
				HomeLocation:       locations[i%len(locations)],
				PreferredLocations: []string{locations[(i+1)%len(locations)]},
				BudgetBracket:      tiers[i%len(tiers)],
			},
			Item: recommend.ItemProfile{
				ID:              i%23 + 1,
				Category:        "standard",
				PriceTier:       tiers[(i/2)%len(tiers)],
				Location:        locations[(i/3)%len(locations)],
				Amenities:       []string{"wifi"},
				Rating:          float64(i%5) + 0.5,
				RecentBookings:  i % 40,
				AvgNightlyPrice: float64(80 + i%11*90),
				Status:          recommend.ItemStatusActive,
			},
		}
	}
	return out
}

func testConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Model.Hidden = []int{6, 3}
	cfg.Model.Epochs = 8
	cfg.Model.BatchSize = 16
	cfg.Training.MinSamples = 20
	cfg.Training.MaxSamples = 200
	cfg.Training.Timeout = time.Minute
	cfg.Training.KeepVersions = 3
	return cfg
}

func newTestPipeline(t *testing.T, src *fakeSource, store *memStore) (*Pipeline, *model.Model) {
	t.Helper()
	enc := features.NewEncoder(features.LayoutV1)
	m := model.New(enc.LayoutVersion(), zerolog.Nop())
	p, err := NewPipeline(testConfig(), src, enc, m, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	t.Cleanup(p.Close)
	return p, m
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestPipeline_TrainSwapsArtifact(t *testing.T) {
	src := &fakeSource{examples: makeExamples(120)}
	store := &memStore{}
	p, m := newTestPipeline(t, src, store)

	var hooked atomic.Pointer[model.Artifact]
	p.OnSwap(func(a *model.Artifact) { hooked.Store(a) })

	artifact, err := p.Train(waitCtx(t))
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if m.State() != model.StateReady || m.Current() != artifact {
		t.Errorf("model state = %v, serving %v, want ready with the new artifact", m.State(), m.Current())
	}
	if artifact.Meta.Version != 1 || artifact.Meta.SampleCount != 120 || artifact.Meta.LayoutVersion != "v1" {
		t.Errorf("artifact meta = %+v", artifact.Meta)
	}
	if artifact.Meta.ID == "" {
		t.Error("artifact has no ID")
	}
	if len(store.saved) != 1 || store.saved[0] != artifact {
		t.Errorf("store saved %d artifacts, want the trained one", len(store.saved))
	}
	if len(store.pruned) != 1 || store.pruned[0] != 3 {
		t.Errorf("Prune calls = %v, want [3]", store.pruned)
	}
	if hooked.Load() != artifact {
		t.Error("OnSwap callback did not receive the artifact")
	}

	since, _ := src.since.Load().(time.Time)
	if want := 2 * 365 * 24 * time.Hour; time.Since(since) < want-time.Hour {
		t.Errorf("window start %v is not about %v ago", since, want)
	}
}

func TestPipeline_InsufficientData(t *testing.T) {
	src := &fakeSource{examples: makeExamples(5)}
	store := &memStore{}
	p, m := newTestPipeline(t, src, store)

	_, err := p.Train(waitCtx(t))
	if !errors.Is(err, recommend.ErrTrainingDataInsufficient) {
		t.Fatalf("Train() error = %v, want ErrTrainingDataInsufficient", err)
	}
	if m.State() != model.StateUninitialized || m.Ready() {
		t.Errorf("model state = %v ready=%v, want unchanged", m.State(), m.Ready())
	}
	if len(store.saved) != 0 {
		t.Error("nothing should be persisted")
	}
}

func TestPipeline_FailuresLeaveServingArtifact(t *testing.T) {
	tests := []struct {
		name  string
		setup func(src *fakeSource, store *memStore)
	}{
		{
			name:  "source error",
			setup: func(src *fakeSource, _ *memStore) { src.err = errors.New("db down") },
		},
		{
			name:  "store error",
			setup: func(_ *fakeSource, store *memStore) { store.saveErr = errors.New("disk full") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{examples: makeExamples(60)}
			store := &memStore{}
			p, m := newTestPipeline(t, src, store)

			first, err := p.Train(waitCtx(t))
			if err != nil {
				t.Fatalf("first Train() error = %v", err)
			}

			tt.setup(src, store)
			if _, err := p.Train(waitCtx(t)); err == nil {
				t.Fatal("second Train() expected error")
			}
			if m.State() != model.StateReady || m.Current() != first {
				t.Errorf("model state = %v, want ready on the first artifact", m.State())
			}
		})
	}
}

func TestPipeline_ConcurrentTriggersCoalesce(t *testing.T) {
	src := &fakeSource{examples: makeExamples(60), release: make(chan struct{})}
	store := &memStore{}
	p, _ := newTestPipeline(t, src, store)

	const callers = 8
	jobs := make([]*Job, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			jobs[i] = p.Start()
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if jobs[i] != jobs[0] {
			t.Fatalf("caller %d got job %s, want %s", i, jobs[i].ID(), jobs[0].ID())
		}
	}
	if !p.InProgress() {
		t.Error("InProgress() = false while a job is blocked")
	}
	if handle := p.Trigger(); handle.ID() != jobs[0].ID() {
		t.Errorf("Trigger() = %s, want in-flight job %s", handle.ID(), jobs[0].ID())
	}

	close(src.release)
	if _, err := jobs[0].Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if got := src.calls.Load(); got != 1 {
		t.Errorf("source queried %d times, want 1", got)
	}
	if len(store.saved) != 1 {
		t.Errorf("saved %d artifacts, want 1", len(store.saved))
	}
	if p.InProgress() {
		t.Error("InProgress() = true after the job finished")
	}

	// A trigger after completion starts a fresh job.
	next := p.Start()
	if next == jobs[0] {
		t.Error("Start() after completion returned the finished job")
	}
	if _, err := next.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestPipeline_WaitHonorsCallerContext(t *testing.T) {
	src := &fakeSource{examples: makeExamples(60), release: make(chan struct{})}
	p, _ := newTestPipeline(t, src, &memStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Train(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Train() error = %v, want context.Canceled", err)
	}

	// The run itself is detached from the caller and completes.
	close(src.release)
	job := p.Start()
	if _, err := job.Wait(waitCtx(t)); err != nil {
		t.Errorf("job error = %v", err)
	}
}

func TestPipeline_PanicIsIsolated(t *testing.T) {
	src := &fakeSource{examples: makeExamples(60)}
	p, m := newTestPipeline(t, src, &memStore{})
	p.OnSwap(func(*model.Artifact) { panic("hook exploded") })

	_, err := p.Train(waitCtx(t))
	if err == nil {
		t.Fatal("Train() expected error from panicking hook")
	}
	if m.State() == model.StateTraining {
		t.Error("model left in training state after panic")
	}

	// A later run is still possible.
	p.mu.Lock()
	p.onSwap = nil
	p.mu.Unlock()
	if _, err := p.Train(waitCtx(t)); err != nil {
		t.Errorf("Train() after panic error = %v", err)
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	enc := features.NewEncoder(features.LayoutV1)
	m := model.New("v1", zerolog.Nop())
	other := model.New("v2", zerolog.Nop())
	src := &fakeSource{}
	store := &memStore{}

	tests := []struct {
		name  string
		build func() (*Pipeline, error)
	}{
		{"nil config", func() (*Pipeline, error) { return NewPipeline(nil, src, enc, m, store, zerolog.Nop()) }},
		{"nil source", func() (*Pipeline, error) { return NewPipeline(testConfig(), nil, enc, m, store, zerolog.Nop()) }},
		{"nil store", func() (*Pipeline, error) { return NewPipeline(testConfig(), src, enc, m, nil, zerolog.Nop()) }},
		{"layout mismatch", func() (*Pipeline, error) { return NewPipeline(testConfig(), src, enc, other, store, zerolog.Nop()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
