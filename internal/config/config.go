// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package config

import (
	"time"

	"github.com/tomtom215/marketlens/internal/logging"
	"github.com/tomtom215/marketlens/internal/recommend"
	"github.com/tomtom215/marketlens/internal/recommend/algorithms"
	"github.com/tomtom215/marketlens/internal/replay"
	"github.com/tomtom215/marketlens/internal/simulate"
	"github.com/tomtom215/marketlens/internal/store"
)

// Storage backends
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Storage   StorageConfig   `koanf:"storage"`
	Recommend RecommendConfig `koanf:"recommend"`
	Replay    ReplayConfig    `koanf:"replay"`
	Data      DataConfig      `koanf:"data"`
	Simulate  SimulateConfig  `koanf:"simulate"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	// Backend is "badger" (default) or "memory".
	Backend string `koanf:"backend"`

	// Path is the Badger data directory.
	Path string `koanf:"path"`

	// InMemory runs Badger without touching disk.
	InMemory bool `koanf:"in_memory"`

	SyncWrites bool `koanf:"sync_writes"`

	// BreakerThreshold is the number of consecutive write failures that
	// opens the circuit breaker.
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`

	// DetailsCacheSize is the number of item details kept in memory in
	// front of the backend; 0 disables the cache.
	DetailsCacheSize int           `koanf:"details_cache_size"`
	DetailsCacheTTL  time.Duration `koanf:"details_cache_ttl"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	ContentWeight       float64 `koanf:"content_weight"`
	CollaborativeWeight float64 `koanf:"collaborative_weight"`

	// Factors is the requested number of latent factors for the SVD.
	Factors int `koanf:"factors"`

	// Interaction weights of the content profile and the factorized matrix.
	ContentPurchaseWeight float64 `koanf:"content_purchase_weight"`
	ContentViewWeight     float64 `koanf:"content_view_weight"`
	ContentScoreFloor     float64 `koanf:"content_score_floor"`
	CollabPurchaseWeight  float64 `koanf:"collab_purchase_weight"`
	CollabViewWeight      float64 `koanf:"collab_view_weight"`

	DefaultK            int `koanf:"default_k"`
	MaxK                int `koanf:"max_k"`
	CandidateMultiplier int `koanf:"candidate_multiplier"`

	// TrainInterval is how often the models are retrained; 0 disables
	// scheduled retraining.
	TrainInterval  time.Duration `koanf:"train_interval"`
	TrainTimeout   time.Duration `koanf:"train_timeout"`
	TrainOnStartup bool          `koanf:"train_on_startup"`
}

// ReplayConfig holds interaction replay settings.
type ReplayConfig struct {
	StopTimeout  time.Duration `koanf:"stop_timeout"`
	DefaultSpeed int           `koanf:"default_speed"`
}

// DataConfig locates the catalog and activity files.
type DataConfig struct {
	CatalogPath  string `koanf:"catalog_path"`
	ActivityPath string `koanf:"activity_path"`

	// ImportOnStartup loads the catalog file into the store at boot.
	ImportOnStartup bool `koanf:"import_on_startup"`

	// ImportActivityOnStartup also bulk-loads the whole activity file,
	// bypassing the replayer's pacing.
	ImportActivityOnStartup bool `koanf:"import_activity_on_startup"`
}

// SimulateConfig sizes the synthetic dataset written by cmd/simulate.
type SimulateConfig struct {
	Users      int     `koanf:"users"`
	Products   int     `koanf:"products"`
	Brands     int     `koanf:"brands"`
	Days       int     `koanf:"days"`
	AvgActions float64 `koanf:"avg_actions"`
	Seed       uint64  `koanf:"seed"`
	OutputDir  string  `koanf:"output_dir"`
}

// LoggingConfig holds zerolog configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// EngineConfig converts the recommend section into the engine's configuration.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.Weights.Content = r.ContentWeight
	cfg.Weights.Collaborative = r.CollaborativeWeight
	cfg.Limits.DefaultK = r.DefaultK
	cfg.Limits.MaxK = r.MaxK
	cfg.Limits.CandidateMultiplier = r.CandidateMultiplier
	cfg.Training.Interval = r.TrainInterval
	cfg.Training.Timeout = r.TrainTimeout
	cfg.Training.OnStartup = r.TrainOnStartup
	return cfg
}

// ContentConfig returns the content engine configuration.
func (r *RecommendConfig) ContentConfig() algorithms.ContentConfig {
	return algorithms.ContentConfig{
		PurchaseWeight: r.ContentPurchaseWeight,
		ViewWeight:     r.ContentViewWeight,
		ScoreFloor:     r.ContentScoreFloor,
	}
}

// CollaborativeConfig returns the factorization engine configuration.
func (r *RecommendConfig) CollaborativeConfig() algorithms.CollaborativeConfig {
	cfg := algorithms.DefaultCollaborativeConfig()
	cfg.Factors = r.Factors
	cfg.PurchaseWeight = r.CollabPurchaseWeight
	cfg.ViewWeight = r.CollabViewWeight
	return cfg
}

// BadgerConfig returns the Badger store configuration.
func (s *StorageConfig) BadgerConfig() store.BadgerConfig {
	return store.BadgerConfig{Path: s.Path, InMemory: s.InMemory, SyncWrites: s.SyncWrites}
}

// BreakerConfig returns the write breaker configuration.
func (s *StorageConfig) BreakerConfig() store.BreakerConfig {
	cfg := store.DefaultBreakerConfig()
	cfg.FailureThreshold = s.BreakerThreshold
	cfg.Timeout = s.BreakerTimeout
	return cfg
}

// DetailsCacheConfig returns the item details cache configuration.
func (s *StorageConfig) DetailsCacheConfig() store.DetailsCacheConfig {
	return store.DetailsCacheConfig{Capacity: s.DetailsCacheSize, TTL: s.DetailsCacheTTL}
}

// ReplayerConfig returns the replayer configuration.
func (r *ReplayConfig) ReplayerConfig() replay.Config {
	return replay.Config{StopTimeout: r.StopTimeout}
}

// GeneratorConfig returns the synthetic data generator configuration.
func (s *SimulateConfig) GeneratorConfig() simulate.Config {
	cfg := simulate.DefaultConfig()
	cfg.Users = s.Users
	cfg.Products = s.Products
	cfg.Brands = s.Brands
	cfg.Days = s.Days
	cfg.AvgActionsPerDay = s.AvgActions
	cfg.Seed = s.Seed
	return cfg
}

// LoggerConfig returns the logging package configuration.
func (l *LoggingConfig) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = l.Level
	if l.Format != "" {
		cfg.Format = l.Format
	}
	cfg.Caller = l.Caller
	return cfg
}

// Load reads configuration with the following precedence (highest first):
//  1. Environment variables
//  2. Config file (CONFIG_PATH, or the first of DefaultConfigPaths that exists)
//  3. Built-in defaults
func Load() (*Config, error) {
	return LoadWithKoanf()
}
