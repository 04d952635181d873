// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// memCatalog returns every stored item not in the exclusion list that
// passes the similarity predicate. It does not apply the other filters so
// tests observe the in-process filtering.
type memCatalog struct {
	mu      sync.Mutex
	items   []ItemProfile
	err     error
	block   bool
	queries atomic.Int32
	lastQ   CandidateQuery
}

func (c *memCatalog) QueryCandidates(ctx context.Context, q CandidateQuery) ([]ItemProfile, error) {
	c.queries.Add(1)
	c.mu.Lock()
	c.lastQ = q
	items, err, block := c.items, c.err, c.block
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	skip := make(map[int]bool, len(q.Exclude))
	for _, id := range q.Exclude {
		skip[id] = true
	}
	out := make([]ItemProfile, 0, len(items))
	for i := range items {
		if skip[items[i].ID] {
			continue
		}
		if (q.SimilarCategory != "" || q.SimilarTier != "") &&
			!matchesFilters(&items[i], &Filters{SimilarCategory: q.SimilarCategory, SimilarTier: q.SimilarTier}) {
			continue
		}
		out = append(out, items[i])
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (c *memCatalog) GetItems(_ context.Context, ids []int) ([]ItemProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	var out []ItemProfile
	for _, id := range ids {
		for i := range c.items {
			if c.items[i].ID == id {
				out = append(out, c.items[i])
				break
			}
		}
	}
	return out, nil
}

func (c *memCatalog) setBlock(b bool) {
	c.mu.Lock()
	c.block = b
	c.mu.Unlock()
}

type memInteractions struct {
	mu        sync.Mutex
	history   map[int][]InteractionRecord
	booked    map[int][]int
	feedback  []FeedbackEvent
	recordErr error
	bookedErr error
}

func newMemInteractions() *memInteractions {
	return &memInteractions{
		history: make(map[int][]InteractionRecord),
		booked:  make(map[int][]int),
	}
}

func (m *memInteractions) QueryHistory(_ context.Context, userID, limit int) ([]InteractionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.history[userID]
	if limit > 0 && len(h) > limit {
		h = h[:limit]
	}
	return h, nil
}

func (m *memInteractions) BookedItems(_ context.Context, userID int) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bookedErr != nil {
		return nil, m.bookedErr
	}
	return m.booked[userID], nil
}

func (m *memInteractions) RecordFeedback(_ context.Context, event FeedbackEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.feedback = append(m.feedback, event)
	return nil
}

type memUsers map[int]UserProfile

func (u memUsers) GetProfile(_ context.Context, userID int) (*UserProfile, error) {
	p, ok := u[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return &p, nil
}

type memActivity struct {
	activity []ItemActivity
	stats    FeedbackStats
	err      error
	since    time.Time
}

func (a *memActivity) ItemActivity(_ context.Context, since time.Time, limit int) ([]ItemActivity, error) {
	a.since = since
	if a.err != nil {
		return nil, a.err
	}
	if limit > 0 && len(a.activity) > limit {
		return a.activity[:limit], nil
	}
	return a.activity, nil
}

func (a *memActivity) FeedbackStats(context.Context, time.Time) (FeedbackStats, error) {
	return a.stats, a.err
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

func (c *memCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *memCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *memCache) deleteContaining(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.Contains(k, s) {
			delete(c.entries, k)
		}
	}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []FeedbackEvent
	err    error
}

func (p *fakePublisher) PublishFeedback(_ context.Context, event FeedbackEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

// ratingScorer scores by rating and names the rating in its reason. An
// optional hook runs before each score.
type ratingScorer struct {
	calls atomic.Int32
	hook  func(n int32, item *ItemProfile)
}

func (s *ratingScorer) Score(_ *UserProfile, item *ItemProfile) (float64, string) {
	n := s.calls.Add(1)
	if s.hook != nil {
		s.hook(n, item)
	}
	if item == nil {
		return 0, "Recommendation based on your profile"
	}
	return item.Rating / 5, fmt.Sprintf("Rated %.1f", item.Rating)
}

// idEncoder encodes the item ID and rating.
type idEncoder struct{}

func (idEncoder) Encode(_ *UserProfile, item *ItemProfile, _ EncodeContext) FeatureVector {
	return FeatureVector{Layout: "test", Values: []float64{float64(item.ID), item.Rating}}
}

func (idEncoder) LayoutVersion() string { return "test" }

// ctxEncoder is an idEncoder that records every EncodeContext it sees.
type ctxEncoder struct {
	idEncoder
	mu   sync.Mutex
	seen []EncodeContext
}

func (e *ctxEncoder) Encode(user *UserProfile, item *ItemProfile, ectx EncodeContext) FeatureVector {
	e.mu.Lock()
	e.seen = append(e.seen, ectx)
	e.mu.Unlock()
	return e.idEncoder.Encode(user, item, ectx)
}

type fakePredictor struct {
	ready   bool
	predict func(v FeatureVector) (float64, error)
}

func (p *fakePredictor) Ready() bool { return p.ready }

func (p *fakePredictor) Predict(v FeatureVector) (float64, error) {
	return p.predict(v)
}

func (p *fakePredictor) Snapshot() ModelSnapshot {
	state := "uninitialized"
	if p.ready {
		state = "ready"
	}
	return ModelSnapshot{State: state, LayoutVersion: "test", ArtifactID: "artifact-1", ArtifactVersion: 1, SampleCount: 500}
}

type fakeJob struct {
	id   string
	done chan struct{}
}

func (j *fakeJob) ID() string { return j.id }
func (j *fakeJob) StartedAt() time.Time { return time.Time{} }
func (j *fakeJob) Done() <-chan struct{} { return j.done }
func (j *fakeJob) Err() error { return nil }

type fakeTrainer struct {
	job      *fakeJob
	triggers atomic.Int32
}

func (t *fakeTrainer) Trigger() JobHandle {
	t.triggers.Add(1)
	return t.job
}

func (t *fakeTrainer) InProgress() bool { return t.triggers.Load() > 0 }

var errStoreDown = errors.New("store down")
