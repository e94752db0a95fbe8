// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marketlens/config.yaml",
	"/etc/marketlens/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Storage: StorageConfig{
			Backend:          BackendBadger,
			Path:             "/data/marketlens",
			InMemory:         false,
			SyncWrites:       false,
			BreakerThreshold: 5,
			BreakerTimeout:   30 * time.Second,
			DetailsCacheSize: 10000,
			DetailsCacheTTL:  5 * time.Minute,
		},
		Recommend: RecommendConfig{
			ContentWeight:         0.6,
			CollaborativeWeight:   0.4,
			Factors:               20,
			ContentPurchaseWeight: 3.0,
			ContentViewWeight:     1.0,
			ContentScoreFloor:     0.3,
			CollabPurchaseWeight:  5.0,
			CollabViewWeight:      1.0,
			DefaultK:              10,
			MaxK:                  100,
			CandidateMultiplier:   2,
			TrainInterval:         time.Hour,
			TrainTimeout:          10 * time.Minute,
			TrainOnStartup:        true,
		},
		Replay: ReplayConfig{
			StopTimeout:  2 * time.Second,
			DefaultSpeed: 100,
		},
		Data: DataConfig{
			CatalogPath:     "data/product_catalog.json",
			ActivityPath:    "data/user_activity.json",
			ImportOnStartup: true,
		},
		Simulate: SimulateConfig{
			Users:      100,
			Products:   500,
			Brands:     20,
			Days:       30,
			AvgActions: 5,
			Seed:       42,
			OutputDir:  "data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// HTTP_PORT -> server.port
	// RECOMMEND_CONTENT_WEIGHT -> recommend.content_weight
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Security mappings
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Storage mappings
	"storage_backend":           "storage.backend",
	"badger_path":               "storage.path",
	"badger_in_memory":          "storage.in_memory",
	"badger_sync_writes":        "storage.sync_writes",
	"storage_breaker_threshold": "storage.breaker_threshold",
	"storage_breaker_timeout":   "storage.breaker_timeout",
	"details_cache_size":        "storage.details_cache_size",
	"details_cache_ttl":         "storage.details_cache_ttl",

	// Recommendation engine mappings
	"recommend_content_weight":          "recommend.content_weight",
	"recommend_collaborative_weight":    "recommend.collaborative_weight",
	"recommend_factors":                 "recommend.factors",
	"recommend_content_purchase_weight": "recommend.content_purchase_weight",
	"recommend_content_view_weight":     "recommend.content_view_weight",
	"recommend_content_score_floor":     "recommend.content_score_floor",
	"recommend_collab_purchase_weight":  "recommend.collab_purchase_weight",
	"recommend_collab_view_weight":      "recommend.collab_view_weight",
	"recommend_default_k":               "recommend.default_k",
	"recommend_max_k":                   "recommend.max_k",
	"recommend_candidate_multiplier":    "recommend.candidate_multiplier",
	"recommend_train_interval":          "recommend.train_interval",
	"recommend_train_timeout":           "recommend.train_timeout",
	"recommend_train_on_startup":        "recommend.train_on_startup",

	// Replay mappings
	"replay_stop_timeout":  "replay.stop_timeout",
	"replay_default_speed": "replay.default_speed",

	// Data file mappings
	"catalog_path":               "data.catalog_path",
	"activity_path":              "data.activity_path",
	"import_on_startup":          "data.import_on_startup",
	"import_activity_on_startup": "data.import_activity_on_startup",

	// Simulation mappings
	"simulate_users":       "simulate.users",
	"simulate_products":    "simulate.products",
	"simulate_brands":      "simulate.brands",
	"simulate_days":        "simulate.days",
	"simulate_avg_actions": "simulate.avg_actions",
	"simulate_seed":        "simulate.seed",
	"simulate_output_dir":  "simulate.output_dir",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return an empty string and are skipped, so unrelated
// environment variables never pollute the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
