// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// feedbackRequest is the body of POST /api/v1/feedback. The server stamps
// the event time.
type feedbackRequest struct {
	UserID  int    `json:"user_id"`
	ItemID  int    `json:"item_id"`
	Type    string `json:"type"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// PostFeedback handles POST /api/v1/feedback.
func (h *Handler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	body := http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		NewResponseWriter(w, r).BadRequest("invalid JSON body")
		return
	}

	event := recommend.FeedbackEvent{
		UserID:  req.UserID,
		ItemID:  req.ItemID,
		Type:    recommend.Outcome(strings.ToLower(strings.TrimSpace(req.Type))),
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.service.RecordFeedback(r.Context(), event); err != nil {
		writeServiceError(w, r, err)
		return
	}

	NewResponseWriter(w, r).Created(map[string]interface{}{
		"user_id": event.UserID,
		"item_id": event.ItemID,
		"type":    event.Type,
		"status":  "recorded",
	})
}

// FeedbackStats handles GET /api/v1/feedback/stats.
func (h *Handler) FeedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetFeedbackStats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(stats)
}
