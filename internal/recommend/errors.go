// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores for unknown users or items.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamTimeout is returned when a store does not answer in time.
	ErrUpstreamTimeout = errors.New("upstream timeout")

	// ErrModelUnavailable is returned by the scoring model when it cannot
	// score a vector. Callers fall back to the heuristic scorer.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrTrainingDataInsufficient is returned when the training window holds
	// fewer samples than the configured minimum.
	ErrTrainingDataInsufficient = errors.New("training data insufficient")

	// ErrTrainingInProgress is returned when a training run is already active.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// ValidationError reports malformed caller input. It is the only error
// the engine surfaces to callers as a rejected request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
