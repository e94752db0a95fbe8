// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

/*
Package config provides centralized configuration management for Marketlens.

Configuration is loaded with Koanf v2 in three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, or the first of config.yaml,
    config.yml, /etc/marketlens/config.yaml, /etc/marketlens/config.yml
 3. Environment variables, through an explicit name table

# Environment Variables

Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8000)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)
  - HTTP_SHUTDOWN_TIMEOUT: Graceful shutdown budget (default: 10s)
  - ENVIRONMENT: development, staging or production

Security:
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Per-IP limit (default: 100 per 1m)
  - DISABLE_RATE_LIMIT: Turn rate limiting off

Storage:
  - STORAGE_BACKEND: badger or memory (default: badger)
  - BADGER_PATH, BADGER_IN_MEMORY, BADGER_SYNC_WRITES
  - STORAGE_BREAKER_THRESHOLD / STORAGE_BREAKER_TIMEOUT: Write circuit breaker
  - DETAILS_CACHE_SIZE / DETAILS_CACHE_TTL: Item details cache (default: 10000 / 5m, size 0 disables)

Recommendations:
  - RECOMMEND_CONTENT_WEIGHT / RECOMMEND_COLLABORATIVE_WEIGHT (default: 0.6 / 0.4)
  - RECOMMEND_FACTORS: Latent factors for the SVD (default: 20)
  - RECOMMEND_CONTENT_PURCHASE_WEIGHT / RECOMMEND_CONTENT_VIEW_WEIGHT (default: 3 / 1)
  - RECOMMEND_CONTENT_SCORE_FLOOR: Lowest content score (default: 0.3)
  - RECOMMEND_COLLAB_PURCHASE_WEIGHT / RECOMMEND_COLLAB_VIEW_WEIGHT (default: 5 / 1)
  - RECOMMEND_DEFAULT_K / RECOMMEND_MAX_K / RECOMMEND_CANDIDATE_MULTIPLIER
  - RECOMMEND_TRAIN_INTERVAL (default: 1h, 0 disables)
  - RECOMMEND_TRAIN_TIMEOUT (default: 10m)
  - RECOMMEND_TRAIN_ON_STARTUP (default: true)

Replay:
  - REPLAY_STOP_TIMEOUT (default: 2s)
  - REPLAY_DEFAULT_SPEED (default: 100)

Data:
  - CATALOG_PATH, ACTIVITY_PATH
  - IMPORT_ON_STARTUP, IMPORT_ACTIVITY_ON_STARTUP

Simulation (cmd/simulate):
  - SIMULATE_USERS, SIMULATE_PRODUCTS, SIMULATE_BRANDS, SIMULATE_DAYS,
    SIMULATE_AVG_ACTIONS, SIMULATE_SEED, SIMULATE_OUTPUT_DIR

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include file:line

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	engineCfg := cfg.Recommend.EngineConfig()
*/
package config
