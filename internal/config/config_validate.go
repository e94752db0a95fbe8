// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package config

import (
	"fmt"
	"time"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateRateLimits,
		c.validateStorage,
		c.validateRecommend,
		c.validateReplay,
		c.validateData,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

var validEnvironments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if a production deployment accepts any origin.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.hasWildcardCORS()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendMemory:
		return nil
	case BackendBadger:
		if c.Storage.Path == "" && !c.Storage.InMemory {
			return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: badger, memory")
	}
	if c.Storage.BreakerThreshold == 0 {
		return fmt.Errorf("STORAGE_BREAKER_THRESHOLD must be positive")
	}
	if c.Storage.BreakerTimeout <= 0 {
		return fmt.Errorf("STORAGE_BREAKER_TIMEOUT must be positive, got %v", c.Storage.BreakerTimeout)
	}
	if c.Storage.DetailsCacheSize < 0 {
		return fmt.Errorf("DETAILS_CACHE_SIZE must not be negative, got %d", c.Storage.DetailsCacheSize)
	}
	return nil
}

// validateRecommend checks the section, then the engine configuration built from it.
func (c *Config) validateRecommend() error {
	if c.Recommend.Factors < 1 {
		return fmt.Errorf("RECOMMEND_FACTORS must be positive, got %d", c.Recommend.Factors)
	}
	r := c.Recommend
	for _, w := range []struct {
		env   string
		value float64
	}{
		{"RECOMMEND_CONTENT_PURCHASE_WEIGHT", r.ContentPurchaseWeight},
		{"RECOMMEND_CONTENT_VIEW_WEIGHT", r.ContentViewWeight},
		{"RECOMMEND_COLLAB_PURCHASE_WEIGHT", r.CollabPurchaseWeight},
		{"RECOMMEND_COLLAB_VIEW_WEIGHT", r.CollabViewWeight},
	} {
		if w.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", w.env, w.value)
		}
	}
	if r.ContentScoreFloor <= 0 || r.ContentScoreFloor >= 1 {
		return fmt.Errorf("RECOMMEND_CONTENT_SCORE_FLOOR must be in (0, 1), got %v", r.ContentScoreFloor)
	}
	if c.Recommend.TrainInterval < 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_INTERVAL must not be negative, got %v", c.Recommend.TrainInterval)
	}
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

func (c *Config) validateReplay() error {
	if c.Replay.StopTimeout <= 0 {
		return fmt.Errorf("REPLAY_STOP_TIMEOUT must be positive, got %v", c.Replay.StopTimeout)
	}
	if c.Replay.DefaultSpeed < 1 {
		return fmt.Errorf("REPLAY_DEFAULT_SPEED must be positive, got %d", c.Replay.DefaultSpeed)
	}
	return nil
}

func (c *Config) validateData() error {
	if c.Data.ImportOnStartup && c.Data.CatalogPath == "" {
		return fmt.Errorf("CATALOG_PATH is required when IMPORT_ON_STARTUP=true")
	}
	if c.Data.ImportActivityOnStartup && c.Data.ActivityPath == "" {
		return fmt.Errorf("ACTIVITY_PATH is required when IMPORT_ACTIVITY_ON_STARTUP=true")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
