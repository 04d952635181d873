// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/lodgerank/internal/logging"
)

// retrainResponse describes an accepted retrain trigger.
type retrainResponse struct {
	JobID     string    `json:"job_id"`
	StartedAt time.Time `json:"started_at"`
	Status    string    `json:"status"`
}

// Retrain handles POST /api/v1/admin/retrain. Training runs in the
// background; a trigger during a run returns the in-flight job.
func (h *Handler) Retrain(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.retrainLimiter != nil && !h.retrainLimiter.Allow() {
		rw.TooManyRequests("retrain limit reached, try again later")
		return
	}

	job, err := h.service.Retrain()
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("retrain unavailable")
		rw.ServiceUnavailable("training is not available")
		return
	}

	status := "running"
	select {
	case <-job.Done():
		status = "completed"
		if job.Err() != nil {
			status = "failed"
		}
	default:
	}
	rw.Accepted(retrainResponse{JobID: job.ID(), StartedAt: job.StartedAt(), Status: status})
}

// ModelStats handles GET /api/v1/admin/model.
func (h *Handler) ModelStats(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.service.GetModelStats())
}
