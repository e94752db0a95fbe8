// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

/*
Package main is the entry point for the Marketlens server.

Marketlens serves hybrid product recommendations for an e-commerce catalog.
A TF-IDF content engine and a truncated-SVD collaborative engine are trained
from the catalog and the user activity log, and their normalized scores are
blended per request.

# Application Architecture

Services run under a Suture v4 supervisor tree:

	RootSupervisor ("marketlens")
	├── DataSupervisor ("data-layer")
	│   ├── Bootstrap import (catalog, then activity into an empty store)
	│   └── Replay service (stops streaming on shutdown)
	├── EngineSupervisor ("engine-layer")
	│   └── Recommend service (training after bootstrap, then on an interval)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Store: BadgerDB (or in-memory) behind a gobreaker write breaker
 4. Engines: content and collaborative algorithms, hybrid engine
 5. Replayer: paced replay of the activity file
 6. HTTP: handlers, chi middleware, http.Server
 7. Supervisor tree: services added per layer, then served

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
  - Environment variables (HTTP_PORT, STORAGE_PATH, RECOMMEND_CONTENT_WEIGHT, ...)
  - Config file (config.yaml, or CONFIG_PATH)
  - Built-in defaults

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor then stops the
HTTP server gracefully, stops any running replay and closes the store.

# Example Usage

	./marketlens-simulate                      # writes data/*.json
	STORAGE_BACKEND=memory ./marketlens-server
	curl localhost:8000/api/v1/recommendations/U0001?limit=5
*/
package main
