// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/lodgerank/internal/logging"
	"github.com/tomtom215/lodgerank/internal/recommend"
)

// writeServiceError maps an engine error onto an HTTP status. Validation
// failures name the field; unexpected errors are logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)

	var verr *recommend.ValidationError
	switch {
	case errors.As(err, &verr):
		rw.FieldError(http.StatusBadRequest, ErrCodeValidationFailed, verr.Field, verr.Message)
	case errors.Is(err, recommend.ErrNotFound):
		rw.NotFound("resource not found")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		rw.Error(http.StatusConflict, ErrCodeConflict, "training already in progress")
	case errors.Is(err, recommend.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		rw.Error(http.StatusGatewayTimeout, ErrCodeGatewayTimeout, "upstream timeout")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		rw.InternalError("internal error")
	}
}
