// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/logging"
)

// AccessLog logs one line per request through the request-scoped logger.
// Requests slower than slowThreshold log at warn; zero disables the check.
func AccessLog(slowThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newStatusRecorder(w)

			next.ServeHTTP(rw, r)

			elapsed := time.Since(start)
			logger := logging.Ctx(r.Context())
			var event *zerolog.Event
			switch {
			case rw.status >= http.StatusInternalServerError:
				event = logger.Error()
			case slowThreshold > 0 && elapsed > slowThreshold:
				event = logger.Warn().Bool("slow", true)
			default:
				event = logger.Info()
			}
			event.
				Str("method", r.Method).
				Str("route", routePattern(r)).
				Int("status", rw.status).
				Dur("duration", elapsed).
				Msg("http request")
		})
	}
}
