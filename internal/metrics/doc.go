// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

Recommendation Metrics:
  - recommend_requests_total: Requests served (counter)
    Labels: operation, source
  - recommend_request_duration_seconds: Request latency (histogram)
    Labels: operation
  - recommend_fallbacks_total: Candidates scored by the heuristic because the model was unavailable
  - recommend_dropped_candidates_total: Candidates dropped after a scoring failure
  - recommend_upstream_degraded_total: Requests answered from stale cache or empty
    Labels: outcome ("stale", "empty")

Training Metrics:
  - recommend_training_runs_total: Training runs (counter)
    Labels: result ("success", "insufficient", "failure")
  - recommend_training_duration_seconds: Training run duration (histogram)
  - recommend_model_ready: 1 when a trained artifact is served (gauge)
  - recommend_model_samples: Sample count of the served artifact (gauge)

Feedback Metrics:
  - recommend_feedback_total: Feedback events recorded (counter)
    Labels: type

Cache, database, API and circuit breaker metrics follow the same naming.

# Usage

	metrics.RecordRecommendation("personalized", "model", time.Since(start))
	metrics.RecordTrainingRun("success", duration)
*/
package metrics
