// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/logging"
	"github.com/tomtom215/lodgerank/internal/metrics"
)

// Deps are the collaborators of the engine. Catalog, Interactions,
// Encoder and Heuristic are required; the rest are optional.
type Deps struct {
	Users        UserStore
	Catalog      CatalogStore
	Interactions InteractionStore
	Activity     ActivityStore
	Cache        Cache
	Publisher    FeedbackPublisher

	Encoder   Encoder
	Heuristic Scorer
	Model     Predictor
	Trainer   Trainer
}

// Engine orchestrates retrieval, scoring, ranking and caching.
type Engine struct {
	config *Config
	logger zerolog.Logger

	users        UserStore
	catalog      CatalogStore
	interactions InteractionStore
	activity     ActivityStore
	cache        Cache

	retriever *Retriever
	feedback  *FeedbackRecorder
	encoder   Encoder
	heuristic Scorer
	model     Predictor
	trainer   Trainer

	requestCount  atomic.Int64
	cacheHits     atomic.Int64
	fallbackCount atomic.Int64

	now func() time.Time
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Deps, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil || deps.Interactions == nil {
		return nil, errors.New("catalog and interaction stores are required")
	}
	if deps.Encoder == nil || deps.Heuristic == nil {
		return nil, errors.New("encoder and heuristic scorer are required")
	}

	e := &Engine{
		config:       cfg,
		logger:       logger.With().Str("component", "recommend").Logger(),
		users:        deps.Users,
		catalog:      deps.Catalog,
		interactions: deps.Interactions,
		activity:     deps.Activity,
		cache:        deps.Cache,
		encoder:      deps.Encoder,
		heuristic:    deps.Heuristic,
		model:        deps.Model,
		trainer:      deps.Trainer,
		now:          time.Now,
	}
	if !cfg.Cache.Enabled {
		e.cache = nil
	}
	e.retriever = NewRetriever(deps.Catalog, deps.Interactions, cfg.Limits.MaxCandidates, cfg.Limits.RetrievalTimeout)
	e.feedback = NewFeedbackRecorder(deps.Interactions, deps.Publisher, e.cache, logger)

	e.logger.Info().
		Str("layout", deps.Encoder.LayoutVersion()).
		Bool("model", deps.Model != nil).
		Bool("cache", e.cache != nil).
		Msg("recommendation engine initialized")

	return e, nil
}

// GetRecommendations returns up to opts.Limit ranked candidates for a user.
// Only malformed options produce an error; upstream failures degrade to a
// stale cached result or an empty list, and caller cancellation returns
// whatever was scored before the deadline.
//
//nolint:gocritic // hugeParam: Options passed by value for immutability
func (e *Engine) GetRecommendations(ctx context.Context, userID int, opts Options) ([]ScoredCandidate, error) {
	start := e.now()
	e.requestCount.Add(1)

	if userID <= 0 {
		return nil, &ValidationError{Field: "user_id", Message: "user_id must be positive"}
	}
	if err := e.validateOptions(&opts); err != nil {
		return nil, err
	}
	opts = normalizeOptions(opts, e.config.Limits.DefaultLimit)

	logger := e.requestLogger(ctx).With().Int("user_id", userID).Logger()
	key := personalizedKey(userID, opts)

	if cached, ok := e.readCache(ctx, key, "personalized"); ok {
		metrics.RecordRecommendation("personalized", "cache", e.now().Sub(start))
		return cached, nil
	}

	candidates, err := e.retriever.Retrieve(ctx, userID, Filters{
		Location:      opts.Location,
		Category:      opts.Category,
		PriceTier:     opts.PriceRange,
		ExcludeBooked: opts.ExcludeBooked,
	})
	if err != nil {
		return e.degrade(ctx, logger, staleKey(userID, opts), err), nil
	}
	if len(candidates) == 0 {
		logger.Debug().Msg("no candidates available")
		results := []ScoredCandidate{}
		e.writeCache(ctx, key, results, e.config.Cache.PersonalizedTTL)
		return results, nil
	}

	user := e.buildProfile(ctx, logger, userID)
	scored, complete := e.scoreAll(ctx, logger, &user, candidates)

	sortCandidates(scored)
	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}

	if complete {
		e.writeCache(ctx, key, scored, e.config.Cache.PersonalizedTTL)
		e.writeCache(ctx, staleKey(userID, opts), scored, e.config.Cache.StaleTTL)
	} else {
		logger.Warn().
			Int("scored", len(scored)).
			Int("candidates", len(candidates)).
			Msg("request cancelled during scoring, returning partial result")
	}

	metrics.RecordRecommendation("personalized", string(resultSource(scored)), e.now().Sub(start))
	logger.Debug().
		Int("candidates", len(candidates)).
		Int("results", len(scored)).
		Dur("duration", e.now().Sub(start)).
		Msg("recommendations generated")

	return scored, nil
}

// GetSimilarItems returns active items sharing a location and a category
// or price tier with itemID, ranked by rating.
func (e *Engine) GetSimilarItems(ctx context.Context, itemID, limit int) ([]ScoredCandidate, error) {
	start := e.now()
	e.requestCount.Add(1)

	if itemID <= 0 {
		return nil, &ValidationError{Field: "item_id", Message: "item_id must be positive"}
	}
	limit, err := e.resolveLimit(limit)
	if err != nil {
		return nil, err
	}

	logger := e.requestLogger(ctx).With().Int("item_id", itemID).Logger()
	key := similarKey(itemID, limit)
	if cached, ok := e.readCache(ctx, key, "similar"); ok {
		metrics.RecordRecommendation("similar", "cache", e.now().Sub(start))
		return cached, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.config.Limits.RetrievalTimeout)
	items, err := e.catalog.GetItems(fetchCtx, []int{itemID})
	cancel()
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load source item")
		return []ScoredCandidate{}, nil
	}
	if len(items) == 0 {
		logger.Debug().Msg("source item not found")
		return []ScoredCandidate{}, nil
	}
	source := items[0]

	if source.Category == "" && source.PriceTier == "" {
		return []ScoredCandidate{}, nil
	}

	candidates, err := e.retriever.Retrieve(ctx, 0, Filters{
		Location:        source.Location,
		MinRating:       e.config.Limits.SimilarMinRating,
		Exclude:         []int{itemID},
		SimilarCategory: source.Category,
		SimilarTier:     source.PriceTier,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("similar item retrieval failed")
		return []ScoredCandidate{}, nil
	}

	results := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if !strings.EqualFold(c.Location, source.Location) {
			continue
		}
		sameCategory := c.Category != "" && strings.EqualFold(c.Category, source.Category)
		sameTier := c.PriceTier != "" && strings.EqualFold(string(c.PriceTier), string(source.PriceTier))
		if !sameCategory && !sameTier {
			continue
		}
		reason := "Same price range in " + c.Location
		if sameCategory {
			reason = "Same category in " + c.Location
		}
		results = append(results, ScoredCandidate{
			Item:   *c,
			Score:  clamp01(c.Rating / 5),
			Reason: reason,
			Source: SourceHeuristic,
		})
	}

	sortCandidates(results)
	if len(results) > limit {
		results = results[:limit]
	}
	e.writeCache(ctx, key, results, e.config.Cache.SimilarTTL)
	metrics.RecordRecommendation("similar", string(SourceHeuristic), e.now().Sub(start))

	return results, nil
}

// GetTrending returns items ranked by recent booking, review and rating
// activity over period ("24h", "7d" or "30d"; empty selects "7d").
func (e *Engine) GetTrending(ctx context.Context, period string, limit int) ([]ScoredCandidate, error) {
	start := e.now()
	e.requestCount.Add(1)

	p, window, err := ParseTrendingPeriod(period)
	if err != nil {
		return nil, err
	}
	limit, err = e.resolveLimit(limit)
	if err != nil {
		return nil, err
	}

	key := trendingKey(p, limit)
	if cached, ok := e.readCache(ctx, key, "trending"); ok {
		metrics.RecordRecommendation("trending", "cache", e.now().Sub(start))
		return cached, nil
	}

	if e.activity == nil {
		return []ScoredCandidate{}, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.config.Limits.RetrievalTimeout)
	activity, err := e.activity.ItemActivity(fetchCtx, e.now().Add(-window), e.config.Limits.MaxCandidates)
	cancel()
	if err != nil {
		logger := e.requestLogger(ctx)
		logger.Warn().Err(err).Str("period", string(p)).Msg("trending activity query failed")
		return []ScoredCandidate{}, nil
	}

	results := rankTrending(activity, p)
	if len(results) > limit {
		results = results[:limit]
	}
	e.writeCache(ctx, key, results, e.config.Cache.TrendingTTL)
	metrics.RecordRecommendation("trending", string(SourceHeuristic), e.now().Sub(start))

	return results, nil
}

// RecordFeedback records a feedback event and invalidates the user's
// cached recommendations.
//
//nolint:gocritic // hugeParam: event passed by value for immutability
func (e *Engine) RecordFeedback(ctx context.Context, event FeedbackEvent) error {
	return e.feedback.Record(ctx, event)
}

// GetFeedbackStats summarizes recorded feedback.
func (e *Engine) GetFeedbackStats(ctx context.Context) (FeedbackStats, error) {
	if e.activity == nil {
		return FeedbackStats{ByType: map[Outcome]int{}}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.config.Limits.RetrievalTimeout)
	defer cancel()
	stats, err := e.activity.FeedbackStats(ctx, e.now())
	if err != nil {
		return FeedbackStats{}, fmt.Errorf("feedback stats: %w", err)
	}
	return stats, nil
}

// Retrain starts a training run out of band and returns its handle. A
// trigger while a run is in flight returns the in-flight run.
func (e *Engine) Retrain() (JobHandle, error) {
	if e.trainer == nil {
		return nil, errors.New("training is not configured")
	}
	job := e.trainer.Trigger()
	e.logger.Info().Str("job_id", job.ID()).Msg("retrain requested")
	return job, nil
}

// InvalidateRecommendations drops every cached personalized result.
// It runs after a model swap so new scores are served immediately.
func (e *Engine) InvalidateRecommendations(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if err := e.cache.DeletePrefix(ctx, recsKeyPrefix); err != nil {
		metrics.CacheErrors.WithLabelValues("invalidate").Inc()
		e.logger.Warn().Err(err).Msg("failed to invalidate cached recommendations")
	}
}

// InvalidateUser drops cached recommendations for one user. Failures are
// logged and returned.
func (e *Engine) InvalidateUser(ctx context.Context, userID int) error {
	if e.cache == nil {
		return nil
	}
	if err := e.cache.DeletePrefix(ctx, userKeyPrefix(userID)); err != nil {
		metrics.CacheErrors.WithLabelValues("invalidate").Inc()
		e.logger.Warn().Err(err).Int("user_id", userID).Msg("failed to invalidate cached recommendations")
		return fmt.Errorf("invalidate user %d: %w", userID, err)
	}
	return nil
}

// GetModelStats reports the served model and engine counters.
func (e *Engine) GetModelStats() ModelStats {
	stats := ModelStats{
		LayoutVersion: e.encoder.LayoutVersion(),
		State:         "heuristic_only",
		RequestCount:  e.requestCount.Load(),
		CacheHits:     e.cacheHits.Load(),
		FallbackCount: e.fallbackCount.Load(),
	}
	if e.trainer != nil {
		stats.IsTraining = e.trainer.InProgress()
	}
	if e.model == nil {
		return stats
	}

	snap := e.model.Snapshot()
	stats.State = snap.State
	stats.IsReady = e.model.Ready()
	stats.ArtifactID = snap.ArtifactID
	stats.ArtifactVersion = snap.ArtifactVersion
	stats.TrainingTimestamp = snap.TrainedAt
	stats.SampleCount = snap.SampleCount
	stats.ValidationLoss = snap.ValidationLoss
	if snap.LayoutVersion != "" {
		stats.LayoutVersion = snap.LayoutVersion
	}
	return stats
}

func (e *Engine) validateOptions(opts *Options) error {
	if err := validateStruct(opts); err != nil {
		return err
	}
	if opts.Limit > e.config.Limits.MaxLimit {
		return &ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must be at most %d", e.config.Limits.MaxLimit),
		}
	}
	return nil
}

func (e *Engine) resolveLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, &ValidationError{Field: "limit", Message: "limit must be at least 0"}
	case limit == 0:
		return e.config.Limits.DefaultLimit, nil
	case limit > e.config.Limits.MaxLimit:
		return 0, &ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must be at most %d", e.config.Limits.MaxLimit),
		}
	default:
		return limit, nil
	}
}

// buildProfile loads demographics and derives preferences from recent
// bookings. Store failures degrade to a thinner profile.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) buildProfile(ctx context.Context, logger zerolog.Logger, userID int) UserProfile {
	base := UserProfile{ID: userID}

	if e.users != nil {
		uctx, cancel := context.WithTimeout(ctx, e.config.Limits.RetrievalTimeout)
		p, err := e.users.GetProfile(uctx, userID)
		cancel()
		switch {
		case err == nil && p != nil:
			base = *p
			base.ID = userID
		case errors.Is(err, ErrNotFound):
			logger.Debug().Msg("unknown user, using anonymous profile")
			base.Anonymous = true
			return DeriveProfile(base, nil, nil)
		case err != nil:
			logger.Warn().Err(err).Msg("user profile unavailable")
		}
	}

	hctx, cancel := context.WithTimeout(ctx, e.config.Limits.RetrievalTimeout)
	defer cancel()

	history, err := e.interactions.QueryHistory(hctx, userID, e.config.ProfileHistory)
	if err != nil {
		logger.Warn().Err(err).Msg("interaction history unavailable")
		return DeriveProfile(base, nil, nil)
	}
	if len(history) == 0 {
		return DeriveProfile(base, nil, nil)
	}

	ids := make([]int, 0, len(history))
	for i := range history {
		ids = append(ids, history[i].ItemID)
	}
	items := make(map[int]ItemProfile, len(ids))
	found, err := e.catalog.GetItems(hctx, ids)
	if err != nil {
		logger.Warn().Err(err).Msg("history items unavailable")
	}
	for i := range found {
		items[found[i].ID] = found[i]
	}

	return DeriveProfile(base, history, items)
}

// scoreAll scores every candidate, dropping failures. It stops early when
// ctx is done and reports whether every candidate was visited.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) scoreAll(ctx context.Context, logger zerolog.Logger, user *UserProfile, candidates []ItemProfile) ([]ScoredCandidate, bool) {
	useModel := e.model != nil && e.model.Ready()
	ectx := ContextAt(e.now(), e.config.ServingAdvanceDays)
	scored := make([]ScoredCandidate, 0, len(candidates))

	for i := range candidates {
		if ctx.Err() != nil {
			return scored, false
		}
		sc, err := e.scoreOne(user, &candidates[i], ectx, useModel)
		if err != nil {
			metrics.RecommendDroppedCandidates.Inc()
			logger.Warn().Err(err).Int("item_id", candidates[i].ID).Msg("candidate dropped after scoring failure")
			continue
		}
		scored = append(scored, sc)
	}

	return scored, true
}

// scoreOne scores a single candidate with the model when available,
// falling back to the heuristic on ErrModelUnavailable. Panics are
// converted to errors so one bad candidate cannot fail the request.
func (e *Engine) scoreOne(user *UserProfile, item *ItemProfile, ectx EncodeContext, useModel bool) (sc ScoredCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	hScore, reason := e.heuristic.Score(user, item)

	if useModel {
		v := e.encoder.Encode(user, item, ectx)
		score, perr := e.model.Predict(v)
		switch {
		case perr == nil:
			if math.IsNaN(score) || math.IsInf(score, 0) {
				return ScoredCandidate{}, fmt.Errorf("model returned non-finite score %v", score)
			}
			return ScoredCandidate{Item: *item, Score: clamp01(score), Reason: reason, Source: SourceModel}, nil
		case errors.Is(perr, ErrModelUnavailable):
			e.fallbackCount.Add(1)
			metrics.RecommendFallbacks.Inc()
		default:
			return ScoredCandidate{}, perr
		}
	}

	if math.IsNaN(hScore) {
		hScore = 0
	}
	return ScoredCandidate{Item: *item, Score: clamp01(hScore), Reason: reason, Source: SourceHeuristic}, nil
}

// degrade answers a request whose retrieval failed: the last good result
// if one is cached, otherwise an empty list.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) degrade(ctx context.Context, logger zerolog.Logger, key string, cause error) []ScoredCandidate {
	if ctx.Err() != nil {
		logger.Debug().Err(cause).Msg("request cancelled before scoring")
		return []ScoredCandidate{}
	}

	if stale, ok := e.readCache(ctx, key, "stale"); ok {
		metrics.RecommendUpstreamDegraded.WithLabelValues("stale").Inc()
		logger.Warn().Err(cause).Msg("candidate retrieval failed, serving stale cached result")
		return stale
	}

	metrics.RecommendUpstreamDegraded.WithLabelValues("empty").Inc()
	logger.Warn().Err(cause).Msg("candidate retrieval failed, returning empty result")
	return []ScoredCandidate{}
}

func (e *Engine) readCache(ctx context.Context, key, cacheType string) ([]ScoredCandidate, bool) {
	if e.cache == nil {
		return nil, false
	}
	data, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("get").Inc()
		e.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}
	if !ok {
		metrics.RecordCacheLookup(cacheType, false)
		return nil, false
	}

	var results []ScoredCandidate
	if err := json.Unmarshal(data, &results); err != nil {
		metrics.CacheErrors.WithLabelValues("decode").Inc()
		e.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return nil, false
	}
	if results == nil {
		results = []ScoredCandidate{}
	}

	e.cacheHits.Add(1)
	metrics.RecordCacheLookup(cacheType, true)
	return results, true
}

func (e *Engine) writeCache(ctx context.Context, key string, results []ScoredCandidate, ttl time.Duration) {
	if e.cache == nil || ttl <= 0 {
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		metrics.CacheErrors.WithLabelValues("encode").Inc()
		return
	}
	if err := e.cache.Set(ctx, key, data, ttl); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		e.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (e *Engine) requestLogger(ctx context.Context) zerolog.Logger {
	l := e.logger
	if id := logging.RequestIDFromContext(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	return l
}

// sortCandidates orders by descending score, ties by ascending item ID.
func sortCandidates(c []ScoredCandidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		return c[i].Item.ID < c[j].Item.ID
	})
}

// resultSource returns the dominant source of a result set for metrics.
func resultSource(c []ScoredCandidate) Source {
	for i := range c {
		if c[i].Source == SourceModel {
			return SourceModel
		}
	}
	return SourceHeuristic
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
