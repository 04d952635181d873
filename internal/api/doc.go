// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

/*
Package api exposes the recommendation engine over HTTP using the chi router.

Routes:

	GET  /healthz
	GET  /metrics
	GET  /api/v1/recommendations/users/{userID}
	GET  /api/v1/recommendations/similar/{itemID}
	GET  /api/v1/recommendations/trending
	POST /api/v1/feedback
	GET  /api/v1/feedback/stats
	POST /api/v1/admin/retrain
	GET  /api/v1/admin/model

Every JSON response uses the APIResponse envelope. Engine validation
errors become 400 responses that name the offending field. /api/v1 routes
are rate limited per client IP with go-chi/httprate, and retrain triggers
are additionally capped per hour.
*/
package api
