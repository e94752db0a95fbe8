// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

/*
Package supervisor provides process supervision for the recommendation
service using suture v4.

Every long-running component runs as a suture.Service inside a three-layer
tree:

	RootSupervisor ("marketlens")
	├── DataSupervisor ("data-layer")
	│   ├── BootstrapService   (catalog/activity import, runs once)
	│   └── ReplayService      (stops a running replay on shutdown)
	├── EngineSupervisor ("engine-layer")
	│   └── RecommendService   (startup and scheduled training)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's exponential backoff, and each
layer keeps its own failure count. Cancelling the context passed to Serve
stops every service, each bounded by TreeConfig.ShutdownTimeout.

Supervisor events (service start, failure, backoff) are logged through
sutureslog, backed by the zerolog slog adapter:

	tree, err := supervisor.NewSupervisorTree(
	    logging.NewSlogLogger("supervisor"),
	    supervisor.DefaultTreeConfig(),
	)
	tree.AddDataService(bootstrap)
	tree.AddEngineService(trainer)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

See the services subpackage for the service wrappers.
*/
package supervisor
