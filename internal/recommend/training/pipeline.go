// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package training builds scoring model artifacts from interaction history.
//
// A run pulls a bounded window of interactions, encodes them with the
// serving encoder, fits a network, persists the artifact and swaps it into
// the live model. Runs are detached from the caller: Start returns a Job
// immediately and concurrent starts share the in-flight job.
package training

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/metrics"
	"github.com/tomtom215/lodgerank/internal/recommend"
	"github.com/tomtom215/lodgerank/internal/recommend/features"
	"github.com/tomtom215/lodgerank/internal/recommend/model"
)

// ExampleEncoder encodes training examples with the serving layout.
type ExampleEncoder interface {
	EncodeExample(ex *recommend.TrainingExample) recommend.FeatureVector
	LayoutVersion() string
}

// ArtifactStore persists trained artifacts.
type ArtifactStore interface {
	NextVersion() int
	Save(ctx context.Context, a *model.Artifact) error
	Prune(ctx context.Context, keep int) (int, error)
}

// Pipeline runs training jobs, at most one at a time.
type Pipeline struct {
	training recommend.TrainingConfig
	fit      recommend.ModelConfig
	source   recommend.TrainingSource
	encoder  ExampleEncoder
	model    *model.Model
	store    ArtifactStore
	logger   zerolog.Logger
	now      func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	current *Job
	onSwap  []func(*model.Artifact)
}

// NewPipeline creates a training pipeline.
func NewPipeline(
	cfg *recommend.Config,
	source recommend.TrainingSource,
	encoder ExampleEncoder,
	m *model.Model,
	store ArtifactStore,
	logger zerolog.Logger,
) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("training pipeline requires a config")
	}
	if source == nil || encoder == nil || m == nil || store == nil {
		return nil, errors.New("training pipeline requires a source, encoder, model and store")
	}
	if encoder.LayoutVersion() != m.LayoutVersion() {
		return nil, fmt.Errorf("encoder layout %q does not match model layout %q",
			encoder.LayoutVersion(), m.LayoutVersion())
	}

	cfg = cfg.Clone()
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		training: cfg.Training,
		fit:      cfg.Model,
		source:   source,
		encoder:  encoder,
		model:    m,
		store:    store,
		logger:   logger.With().Str("component", "training").Logger(),
		now:      time.Now,
		baseCtx:  ctx,
		cancel:   cancel,
	}, nil
}

// OnSwap registers a callback run after each successful swap.
func (p *Pipeline) OnSwap(fn func(*model.Artifact)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSwap = append(p.onSwap, fn)
}

// Start begins a training run, or returns the run already in flight.
func (p *Pipeline) Start() *Job {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && !p.current.finished() {
		return p.current
	}

	job := newJob(uuid.NewString(), p.now())
	p.current = job
	go p.execute(job)
	return job
}

// Trigger starts a run, or returns the in-flight one.
func (p *Pipeline) Trigger() recommend.JobHandle {
	return p.Start()
}

// InProgress reports whether a run is active.
func (p *Pipeline) InProgress() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil && !p.current.finished()
}

// Train starts or joins a run and waits for it. Canceling ctx stops the
// wait, not the run.
func (p *Pipeline) Train(ctx context.Context) (*model.Artifact, error) {
	return p.Start().Wait(ctx)
}

// Close cancels any in-flight run.
func (p *Pipeline) Close() {
	p.cancel()
}

func (p *Pipeline) execute(job *Job) {
	ctx := p.baseCtx
	if p.training.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.training.Timeout)
		defer cancel()
	}

	start := p.now()
	artifact, err := p.runSafe(ctx, job)
	duration := p.now().Sub(start)

	log := p.logger.With().Str("job_id", job.id).Dur("duration", duration).Logger()
	switch {
	case err == nil:
		metrics.RecordTrainingRun("success", duration)
		metrics.SetModelServing(true, artifact.Meta.SampleCount)
		log.Info().
			Str("artifact_id", artifact.Meta.ID).
			Int("version", artifact.Meta.Version).
			Int("samples", artifact.Meta.SampleCount).
			Float64("validation_loss", artifact.Meta.ValidationLoss).
			Msg("training complete")
	case errors.Is(err, recommend.ErrTrainingDataInsufficient):
		metrics.RecordTrainingRun("insufficient", duration)
		log.Warn().Err(err).Msg("training skipped")
	default:
		metrics.RecordTrainingRun("failure", duration)
		log.Error().Err(err).Msg("training failed")
	}

	job.finish(artifact, err)
}

// runSafe runs the job and converts a panic into an error so a bad run
// never takes serving down.
func (p *Pipeline) runSafe(ctx context.Context, job *Job) (artifact *model.Artifact, err error) {
	if err := p.model.BeginTraining(); err != nil {
		return nil, err
	}

	swapped := false
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("training panic: %v", r)
			artifact = nil
		}
		if !swapped {
			p.model.AbortTraining(err)
		}
	}()

	artifact, err = p.run(ctx, job)
	if err != nil {
		return nil, err
	}

	if err := p.model.Swap(artifact); err != nil {
		return nil, fmt.Errorf("swap artifact: %w", err)
	}
	swapped = true

	p.mu.Lock()
	hooks := append([]func(*model.Artifact){}, p.onSwap...)
	p.mu.Unlock()
	for _, fn := range hooks {
		fn(artifact)
	}
	return artifact, nil
}

func (p *Pipeline) run(ctx context.Context, job *Job) (*model.Artifact, error) {
	started := job.startedAt
	since := started.Add(-p.training.Window)

	examples, err := p.source.QueryTrainingWindow(ctx, since, p.training.MaxSamples)
	if err != nil {
		return nil, fmt.Errorf("query training window: %w", err)
	}
	if p.training.MaxSamples > 0 && len(examples) > p.training.MaxSamples {
		examples = examples[:p.training.MaxSamples]
	}
	if len(examples) < p.training.MinSamples {
		return nil, fmt.Errorf("%w: have %d samples, need %d",
			recommend.ErrTrainingDataInsufficient, len(examples), p.training.MinSamples)
	}

	x := make([][]float64, len(examples))
	y := make([]float64, len(examples))
	for i := range examples {
		x[i] = p.encoder.EncodeExample(&examples[i]).Values
		y[i] = features.Label(&examples[i].Record)
	}

	p.logger.Debug().
		Str("job_id", job.id).
		Int("samples", len(examples)).
		Time("since", since).
		Msg("fitting scoring model")

	net, report, err := model.Fit(ctx, p.fit, x, y)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	artifact, err := model.NewArtifact(net, model.ArtifactMetadata{
		ID:               job.id,
		Version:          p.store.NextVersion(),
		LayoutVersion:    p.encoder.LayoutVersion(),
		TrainedAt:        p.now().UTC(),
		SampleCount:      len(examples),
		ValidationLoss:   report.ValidationLoss,
		TrainingLoss:     report.TrainLoss,
		Epochs:           report.Epochs,
		TrainingDuration: p.now().Sub(started),
	})
	if err != nil {
		return nil, err
	}

	if err := p.store.Save(ctx, artifact); err != nil {
		return nil, fmt.Errorf("persist artifact: %w", err)
	}
	if p.training.KeepVersions > 0 {
		if removed, err := p.store.Prune(ctx, p.training.KeepVersions); err != nil {
			p.logger.Warn().Err(err).Msg("failed to prune old artifacts")
		} else if removed > 0 {
			p.logger.Debug().Int("removed", removed).Msg("pruned old artifacts")
		}
	}

	return artifact, nil
}

var _ recommend.Trainer = (*Pipeline)(nil)
