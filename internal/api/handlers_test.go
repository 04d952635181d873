// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

type fakeJob struct {
	id   string
	done chan struct{}
}

func (j *fakeJob) ID() string            { return j.id }
func (j *fakeJob) StartedAt() time.Time  { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
func (j *fakeJob) Done() <-chan struct{} { return j.done }
func (j *fakeJob) Err() error            { return nil }

type fakeService struct {
	mu         sync.Mutex
	lastUser   int
	lastOpts   recommend.Options
	lastItem   int
	lastPeriod string
	lastLimit  int
	feedback   []recommend.FeedbackEvent
	err        error
	retrainErr error
	results    []recommend.ScoredCandidate
}

func (f *fakeService) GetRecommendations(_ context.Context, userID int, opts recommend.Options) ([]recommend.ScoredCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser, f.lastOpts = userID, opts
	return f.results, f.err
}

func (f *fakeService) GetSimilarItems(_ context.Context, itemID, limit int) ([]recommend.ScoredCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastItem, f.lastLimit = itemID, limit
	return f.results, f.err
}

func (f *fakeService) GetTrending(_ context.Context, period string, limit int) ([]recommend.ScoredCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPeriod, f.lastLimit = period, limit
	if _, _, err := recommend.ParseTrendingPeriod(period); err != nil {
		return nil, err
	}
	return f.results, f.err
}

//nolint:gocritic // hugeParam: matches Service
func (f *fakeService) RecordFeedback(_ context.Context, event recommend.FeedbackEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.feedback = append(f.feedback, event)
	return nil
}

func (f *fakeService) GetFeedbackStats(context.Context) (recommend.FeedbackStats, error) {
	return recommend.FeedbackStats{Total: 3, ByType: map[recommend.Outcome]int{recommend.OutcomeLiked: 3}, AverageRating: 4.5}, f.err
}

func (f *fakeService) Retrain() (recommend.JobHandle, error) {
	if f.retrainErr != nil {
		return nil, f.retrainErr
	}
	return &fakeJob{id: "job-1", done: make(chan struct{})}, nil
}

func (f *fakeService) GetModelStats() recommend.ModelStats {
	return recommend.ModelStats{State: "ready", IsReady: true, LayoutVersion: "v1"}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(svc Service, db HealthChecker, cfg HandlerConfig) http.Handler {
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true
	return NewRouter(NewHandler(svc, db, cfg), mw).Setup()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, path, rec.Body.String(), err)
	}
	return rec, resp
}

func sampleResults() []recommend.ScoredCandidate {
	return []recommend.ScoredCandidate{
		{Item: recommend.ItemProfile{ID: 3, Name: "Harbor Inn", Location: "Lisbon"}, Score: 0.9, Reason: "Matches your preferred location", Source: recommend.SourceModel},
	}
}

func TestGetRecommendations(t *testing.T) {
	svc := &fakeService{results: sampleResults()}
	h := newTestRouter(svc, nil, HandlerConfig{})

	rec, resp := do(t, h, http.MethodGet,
		"/api/v1/recommendations/users/42?limit=5&location=Lisbon&category=hotel&price_range=Luxury&exclude_booked=true", "")
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.Meta == nil || resp.Meta.Count == nil || *resp.Meta.Count != 1 {
		t.Errorf("meta = %+v, want count 1", resp.Meta)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	want := recommend.Options{Limit: 5, Location: "Lisbon", Category: "hotel", PriceRange: recommend.TierLuxury, ExcludeBooked: true}
	if svc.lastUser != 42 || svc.lastOpts != want {
		t.Errorf("service called with user %d opts %+v, want 42 %+v", svc.lastUser, svc.lastOpts, want)
	}
}

func TestGetRecommendations_EmptyIsArray(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, HandlerConfig{})
	rec, _ := do(t, h, http.MethodGet, "/api/v1/recommendations/users/7", "")
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty array", rec.Body.String())
	}
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		field  string
	}{
		{"non-numeric user", http.MethodGet, "/api/v1/recommendations/users/abc", "", "userID"},
		{"zero user", http.MethodGet, "/api/v1/recommendations/users/0", "", "userID"},
		{"negative limit", http.MethodGet, "/api/v1/recommendations/users/1?limit=-1", "", "limit"},
		{"bad bool", http.MethodGet, "/api/v1/recommendations/users/1?exclude_booked=maybe", "", "exclude_booked"},
		{"bad item", http.MethodGet, "/api/v1/recommendations/similar/x", "", "itemID"},
		{"bad period", http.MethodGet, "/api/v1/recommendations/trending?period=1y", "", "period"},
	}

	h := newTestRouter(&fakeService{}, nil, HandlerConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp.Error == nil || resp.Error.Code != ErrCodeValidationFailed || resp.Error.Field != tt.field {
				t.Errorf("error = %+v, want field %q", resp.Error, tt.field)
			}
		})
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&recommend.ValidationError{Field: "limit", Message: "too big"}, http.StatusBadRequest},
		{fmt.Errorf("item 9: %w", recommend.ErrNotFound), http.StatusNotFound},
		{recommend.ErrTrainingInProgress, http.StatusConflict},
		{recommend.ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := newTestRouter(&fakeService{err: tt.err}, nil, HandlerConfig{})
			rec, resp := do(t, h, http.MethodGet, "/api/v1/recommendations/similar/9", "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if resp.Success || resp.Error == nil {
				t.Errorf("response = %+v, want error envelope", resp)
			}
			if tt.want == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "disk on fire") {
				t.Error("internal error detail leaked to client")
			}
		})
	}
}

func TestSimilarAndTrending(t *testing.T) {
	svc := &fakeService{results: sampleResults()}
	h := newTestRouter(svc, nil, HandlerConfig{})

	if rec, _ := do(t, h, http.MethodGet, "/api/v1/recommendations/similar/9?limit=3", ""); rec.Code != http.StatusOK {
		t.Fatalf("similar status = %d", rec.Code)
	}
	if svc.lastItem != 9 || svc.lastLimit != 3 {
		t.Errorf("similar called with item %d limit %d", svc.lastItem, svc.lastLimit)
	}

	if rec, _ := do(t, h, http.MethodGet, "/api/v1/recommendations/trending?period=24h", ""); rec.Code != http.StatusOK {
		t.Fatalf("trending status = %d", rec.Code)
	}
	if svc.lastPeriod != "24h" || svc.lastLimit != 0 {
		t.Errorf("trending called with period %q limit %d", svc.lastPeriod, svc.lastLimit)
	}
}

func TestPostFeedback(t *testing.T) {
	svc := &fakeService{}
	h := newTestRouter(svc, nil, HandlerConfig{})

	rec, resp := do(t, h, http.MethodPost, "/api/v1/feedback",
		`{"user_id":42,"item_id":3,"type":" Liked ","rating":5,"comment":"lovely"}`)
	if rec.Code != http.StatusCreated || !resp.Success {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(svc.feedback) != 1 {
		t.Fatalf("recorded %d events, want 1", len(svc.feedback))
	}
	got := svc.feedback[0]
	if got.UserID != 42 || got.ItemID != 3 || got.Type != recommend.OutcomeLiked || got.Rating != 5 || got.Comment != "lovely" {
		t.Errorf("event = %+v", got)
	}

	rec, resp = do(t, h, http.MethodPost, "/api/v1/feedback", `{"user_id":`)
	if rec.Code != http.StatusBadRequest || resp.Error == nil || resp.Error.Code != ErrCodeBadRequest {
		t.Errorf("malformed body: status %d error %+v", rec.Code, resp.Error)
	}
}

func TestPostFeedback_BodyTooLarge(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, HandlerConfig{MaxBodyBytes: 32})
	body := `{"user_id":1,"item_id":1,"type":"liked","rating":5,"comment":"` + strings.Repeat("a", 100) + `"}`
	if rec, _ := do(t, h, http.MethodPost, "/api/v1/feedback", body); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFeedbackStats(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, HandlerConfig{})
	rec, _ := do(t, h, http.MethodGet, "/api/v1/feedback/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, want := range []string{`"total":3`, `"liked":3`, `"average_rating":4.5`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("body %s missing %s", rec.Body.String(), want)
		}
	}
}

func TestRetrain(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, HandlerConfig{RetrainPerHour: 2})

	for i := 0; i < 2; i++ {
		rec, _ := do(t, h, http.MethodPost, "/api/v1/admin/retrain", "")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("trigger %d: status = %d", i, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"job_id":"job-1"`) || !strings.Contains(rec.Body.String(), `"status":"running"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	}

	rec, _ := do(t, h, http.MethodPost, "/api/v1/admin/retrain", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("third trigger status = %d, want 429", rec.Code)
	}
}

func TestRetrain_Unavailable(t *testing.T) {
	h := newTestRouter(&fakeService{retrainErr: errors.New("training is not configured")}, nil, HandlerConfig{})
	if rec, _ := do(t, h, http.MethodPost, "/api/v1/admin/retrain", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestModelStats(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, HandlerConfig{})
	rec, _ := do(t, h, http.MethodGet, "/api/v1/admin/model", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"state":"ready"`) {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	rec, _ := do(t, newTestRouter(&fakeService{}, fakePinger{}, HandlerConfig{}), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthy: status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, newTestRouter(&fakeService{}, fakePinger{err: errors.New("closed")}, HandlerConfig{}), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), `"database":"unreachable"`) {
		t.Errorf("unhealthy: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, HandlerConfig{})
	if rec, _ := do(t, h, http.MethodGet, "/api/v1/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec, _ := do(t, h, http.MethodDelete, "/api/v1/feedback", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(&fakeService{}, nil, HandlerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("status = %d", rec.Code)
	}
}
