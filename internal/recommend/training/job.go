// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package training

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/lodgerank/internal/recommend"
	"github.com/tomtom215/lodgerank/internal/recommend/model"
)

// Job is a single training run.
type Job struct {
	id        string
	startedAt time.Time
	done      chan struct{}

	mu       sync.Mutex
	artifact *model.Artifact
	err      error
}

func newJob(id string, startedAt time.Time) *Job {
	return &Job{id: id, startedAt: startedAt, done: make(chan struct{})}
}

// ID returns the job ID. A successful job's artifact carries the same ID.
func (j *Job) ID() string { return j.id }

// StartedAt returns when the job was started.
func (j *Job) StartedAt() time.Time { return j.startedAt }

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err returns the job error, or nil while running or on success.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Artifact returns the trained artifact, or nil.
func (j *Job) Artifact() *model.Artifact {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.artifact
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) (*model.Artifact, error) {
	select {
	case <-j.done:
		return j.Artifact(), j.Err()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (j *Job) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

func (j *Job) finish(a *model.Artifact, err error) {
	j.mu.Lock()
	j.artifact, j.err = a, err
	j.mu.Unlock()
	close(j.done)
}

var _ recommend.JobHandle = (*Job)(nil)
