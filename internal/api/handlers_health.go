// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/lodgerank/internal/logging"
)

// HealthStatus is the body of GET /healthz.
type HealthStatus struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	ModelState    string  `json:"model_state"`
	ModelReady    bool    `json:"model_ready"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Healthz handles GET /healthz. The service is healthy when the database
// answers; a missing model only degrades scoring to the heuristic.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	stats := h.service.GetModelStats()
	status := HealthStatus{
		Status:        "ok",
		Database:      "ok",
		ModelState:    stats.State,
		ModelReady:    stats.IsReady,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("health check: database unreachable")
			status.Status = "unhealthy"
			status.Database = "unreachable"
			rw := NewResponseWriter(w, r)
			rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: status, Meta: rw.meta()})
			return
		}
	}
	NewResponseWriter(w, r).Success(status)
}
