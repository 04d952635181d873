// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

/*
Package supervisor runs the server's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("lodgerank")
	├── TrainingSupervisor ("training-layer")
	│   └── RetrainService
	├── MessagingSupervisor ("messaging-layer")
	│   └── FeedbackConsumerService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff. Each layer counts its own
failures, so a broker outage cannot take down the API.

Supervisor events are logged through sutureslog, fed by the zerolog-backed
slog handler from the logging package:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{})
	tree.AddTrainingService(services.NewRetrainService(pipeline, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)

Service implementations live in the services subpackage.
*/
package supervisor
