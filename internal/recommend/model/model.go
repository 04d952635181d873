// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package model implements the trainable scoring model and its serving
// lifecycle.
//
// The Model is a state machine:
//
//	Uninitialized --Load--> Loading --ok--> Ready
//	                                \--err-> Failed
//	Ready/Failed/Uninitialized --BeginTraining--> Training
//	Training --Swap--> Ready
//	Training --AbortTraining--> previous state
//
// Serving reads the current artifact through an atomic pointer, so a swap
// is observed either entirely or not at all and training never blocks
// Predict.
package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// State is a lifecycle state of the Model.
type State int32

// Model states.
const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
	StateTraining
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateTraining:
		return "training"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var (
	// ErrNoArtifact is returned by loaders when nothing has been persisted.
	ErrNoArtifact = errors.New("no persisted artifact")

	// ErrLayoutMismatch is returned when an artifact was trained on a
	// different feature layout than the one being served.
	ErrLayoutMismatch = errors.New("artifact layout mismatch")
)

// Loader loads the newest persisted artifact.
type Loader interface {
	LoadLatest(ctx context.Context) (*Artifact, error)
}

// Model serves predictions from the current artifact.
type Model struct {
	layout string
	logger zerolog.Logger

	mu        sync.Mutex // serializes transitions
	state     atomic.Int32
	preTrain  State
	lastErr   error
	current   atomic.Pointer[Artifact]
	swapCount atomic.Int64
}

// New creates an uninitialized model serving the given layout version.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(layoutVersion string, logger zerolog.Logger) *Model {
	return &Model{
		layout: layoutVersion,
		logger: logger.With().Str("component", "scoring_model").Logger(),
	}
}

// State returns the current lifecycle state.
func (m *Model) State() State {
	return State(m.state.Load())
}

// LastError returns the error of the last failed load or training run.
func (m *Model) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Ready reports whether an artifact is being served. This holds in the
// Ready state and while retraining from Ready.
func (m *Model) Ready() bool {
	return m.current.Load() != nil
}

// Current returns the served artifact, or nil.
func (m *Model) Current() *Artifact {
	return m.current.Load()
}

// Load restores the newest persisted artifact. It is only valid from
// Uninitialized or Failed. When nothing is persisted the model returns to
// Uninitialized; any other failure, including a layout mismatch, leaves it
// Failed until a successful retrain.
func (m *Model) Load(ctx context.Context, loader Loader) error {
	m.mu.Lock()
	from := m.State()
	if from != StateUninitialized && from != StateFailed {
		m.mu.Unlock()
		return fmt.Errorf("cannot load artifact in state %s", from)
	}
	m.state.Store(int32(StateLoading))
	m.mu.Unlock()

	a, err := loader.LoadLatest(ctx)
	if err == nil {
		err = m.checkArtifact(a)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case errors.Is(err, ErrNoArtifact):
		m.state.Store(int32(StateUninitialized))
		m.logger.Info().Msg("no persisted artifact, serving heuristic scores")
		return err
	case err != nil:
		m.lastErr = err
		m.state.Store(int32(StateFailed))
		m.logger.Error().Err(err).Msg("failed to load artifact, serving heuristic scores")
		return err
	}

	m.current.Store(a)
	m.state.Store(int32(StateReady))
	m.logger.Info().
		Str("artifact_id", a.Meta.ID).
		Int("version", a.Meta.Version).
		Int("samples", a.Meta.SampleCount).
		Msg("artifact loaded")
	return nil
}

// BeginTraining enters the Training state. Serving continues on the
// current artifact.
func (m *Model) BeginTraining() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch from := m.State(); from {
	case StateTraining:
		return recommend.ErrTrainingInProgress
	case StateLoading:
		return fmt.Errorf("cannot train in state %s", from)
	default:
		m.preTrain = from
	}
	m.state.Store(int32(StateTraining))
	return nil
}

// Swap installs a freshly trained artifact with a single atomic store and
// moves to Ready. It is only valid from Training.
func (m *Model) Swap(a *Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.State(); s != StateTraining {
		return fmt.Errorf("cannot swap artifact in state %s", s)
	}
	if err := m.checkArtifact(a); err != nil {
		return err
	}

	prev := m.current.Swap(a)
	m.swapCount.Add(1)
	m.lastErr = nil
	m.state.Store(int32(StateReady))

	ev := m.logger.Info().
		Str("artifact_id", a.Meta.ID).
		Int("version", a.Meta.Version).
		Int("samples", a.Meta.SampleCount).
		Float64("validation_loss", a.Meta.ValidationLoss)
	if prev != nil {
		ev = ev.Str("replaced_id", prev.Meta.ID)
	}
	ev.Msg("artifact swapped")
	return nil
}

// AbortTraining leaves Training and restores the previous state. The
// served artifact is unchanged.
func (m *Model) AbortTraining(cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.State() != StateTraining {
		return
	}
	if cause != nil && !errors.Is(cause, recommend.ErrTrainingDataInsufficient) {
		m.lastErr = cause
	}
	m.state.Store(int32(m.preTrain))
}

// Predict scores v with the current artifact. It returns
// ErrModelUnavailable when nothing is loaded or the layout differs.
func (m *Model) Predict(v recommend.FeatureVector) (float64, error) {
	a := m.current.Load()
	if a == nil {
		return 0, fmt.Errorf("%w: no artifact loaded", recommend.ErrModelUnavailable)
	}
	return a.Predict(v)
}

// Snapshot describes the served artifact.
func (m *Model) Snapshot() recommend.ModelSnapshot {
	snap := recommend.ModelSnapshot{
		State:         m.State().String(),
		LayoutVersion: m.layout,
	}
	if a := m.current.Load(); a != nil {
		snap.LayoutVersion = a.Meta.LayoutVersion
		snap.ArtifactID = a.Meta.ID
		snap.ArtifactVersion = a.Meta.Version
		snap.TrainedAt = a.Meta.TrainedAt
		snap.SampleCount = a.Meta.SampleCount
		snap.ValidationLoss = a.Meta.ValidationLoss
	}
	return snap
}

// LayoutVersion returns the layout version this model serves.
func (m *Model) LayoutVersion() string {
	return m.layout
}

func (m *Model) checkArtifact(a *Artifact) error {
	if a == nil {
		return errors.New("nil artifact")
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Meta.LayoutVersion != m.layout {
		return fmt.Errorf("%w: artifact %q, serving %q", ErrLayoutMismatch, a.Meta.LayoutVersion, m.layout)
	}
	return nil
}

var _ recommend.Predictor = (*Model)(nil)
