// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

//go:build !nats

package feedback

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lodgerank/internal/config"
)

func TestOpenBus_NATSRequiresBuildTag(t *testing.T) {
	_, err := OpenBus(config.BrokerConfig{Backend: config.BrokerBackendNATS, URL: "nats://localhost:4222"}, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "-tags=nats") {
		t.Errorf("OpenBus() error = %v, want build tag hint", err)
	}
}
