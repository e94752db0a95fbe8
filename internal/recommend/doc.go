// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package recommend implements the hybrid product recommendation engine.
//
// # Architecture
//
// Two engines produce candidate lists independently:
//
//   - Content-based: TF-IDF features of category, brand, description and a
//     price-band phrase, scored by cosine similarity to the user's weighted
//     interaction profile.
//   - Collaborative: truncated SVD of the mean-centered user×item matrix.
//
// The Blender min-max normalizes each list, merges them with fixed weights
// (0.6 content, 0.4 collaborative by default), attributes every item to the
// engine(s) that scored it, and returns the top k.
//
// # Lifecycle
//
// Engines start untrained and only change state through Engine.Train. A
// request against an untrained engine yields an empty list; it never
// triggers training. A failed training cycle leaves the previous model of
// each engine in service.
//
// # Usage
//
//	content := algorithms.NewContentBased(repo, algorithms.DefaultContentConfig())
//	collab := algorithms.NewCollaborative(repo, algorithms.DefaultCollaborativeConfig())
//	engine, err := recommend.NewEngine(cfg, content, collab, repo, logger)
//
//	if err := engine.Train(ctx); err != nil { ... }
//	out, err := engine.Formatted(ctx, "U0001", 10)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Only one training cycle runs at a
// time; requests issued during training are served by the previous models.
package recommend
