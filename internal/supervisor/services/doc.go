// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

// Package services adapts the server's components to suture.Service.
//
//   - HTTPServerService: ListenAndServe with graceful shutdown
//   - RetrainService: scheduled and startup model retraining
//   - FeedbackConsumerService: the feedback bus consumer, rebuilt per start
//
// Each wrapper implements fmt.Stringer so supervisor events name it.
package services
