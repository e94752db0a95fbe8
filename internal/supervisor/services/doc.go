// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

/*
Package services wraps application components as suture services.

Each wrapper implements Serve(ctx) error and String(). Serve blocks until
ctx is canceled, except for BootstrapService which returns
suture.ErrDoNotRestart once its import is done.

  - BootstrapService: imports the catalog (idempotent upserts) and, into an
    empty store only, the activity log; closes Ready when finished
  - RecommendService: trains the hybrid engine after Ready, then every
    TrainInterval; training errors are logged, never returned
  - ReplayService: stops a running interaction replay on shutdown
  - HTTPServerService: ListenAndServe with graceful Shutdown

Components are taken as small interfaces (Trainer, Streamer, HTTPServer,
BootstrapStore) so tests can substitute mocks.
*/
package services
