// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package model

import (
	"fmt"
	"time"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// ArtifactMetadata describes a trained artifact.
type ArtifactMetadata struct {
	// ID uniquely identifies the artifact.
	ID string `json:"id"`

	// Version increases with every persisted artifact.
	Version int `json:"version"`

	// LayoutVersion is the feature layout the network was trained on.
	LayoutVersion string `json:"layout_version"`

	TrainedAt        time.Time     `json:"trained_at"`
	SampleCount      int           `json:"sample_count"`
	ValidationLoss   float64       `json:"validation_loss"`
	TrainingLoss     float64       `json:"training_loss"`
	Epochs           int           `json:"epochs"`
	TrainingDuration time.Duration `json:"training_duration"`
}

// Artifact is a trained network plus its metadata. An artifact is never
// modified after construction; fields are exported for serialization only.
type Artifact struct {
	Meta    ArtifactMetadata
	Network Network
}

// NewArtifact wraps a fitted network. The network is copied.
//
//nolint:gocritic // hugeParam: metadata copied into the immutable artifact
func NewArtifact(net *Network, meta ArtifactMetadata) (*Artifact, error) {
	if net == nil {
		return nil, fmt.Errorf("nil network")
	}
	if meta.LayoutVersion == "" {
		return nil, fmt.Errorf("artifact layout version is required")
	}
	if err := net.validate(); err != nil {
		return nil, fmt.Errorf("invalid network: %w", err)
	}
	return &Artifact{Meta: meta, Network: *net.clone()}, nil
}

// Validate checks a decoded artifact before it is served.
func (a *Artifact) Validate() error {
	if a.Meta.LayoutVersion == "" {
		return fmt.Errorf("artifact %s has no layout version", a.Meta.ID)
	}
	return a.Network.validate()
}

// Predict scores a feature vector. Vectors built with a different layout,
// or of the wrong width, are rejected with ErrModelUnavailable.
func (a *Artifact) Predict(v recommend.FeatureVector) (float64, error) {
	if v.Layout != a.Meta.LayoutVersion {
		return 0, fmt.Errorf("%w: vector layout %q, artifact layout %q",
			recommend.ErrModelUnavailable, v.Layout, a.Meta.LayoutVersion)
	}
	if len(v.Values) != a.Network.Inputs() {
		return 0, fmt.Errorf("%w: vector has %d values, artifact expects %d",
			recommend.ErrModelUnavailable, len(v.Values), a.Network.Inputs())
	}

	s := a.Network.Forward(v.Values)
	switch {
	case s < 0:
		s = 0
	case s > 1:
		s = 1
	}
	return s, nil
}
