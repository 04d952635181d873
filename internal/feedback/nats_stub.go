// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

//go:build !nats

package feedback

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/lodgerank/internal/config"
)

// openNATSBus returns an error when NATS dependencies are not available.
// Build with -tags=nats to enable the NATS backend.
func openNATSBus(_ *config.BrokerConfig, _ string, _ watermill.LoggerAdapter) (*Bus, error) {
	return nil, fmt.Errorf("NATS broker not available: build with -tags=nats")
}
