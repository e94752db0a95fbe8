// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"unknown environment", func(c *Config) { c.Server.Environment = "qa" }, true},
		{"zero timeout", func(c *Config) { c.Server.Timeout = 0 }, true},
		{"rate limit too low", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, false},
		{"rate window too long", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, true},
		{"memory backend needs no path", func(c *Config) {
			c.Storage.Backend = BackendMemory
			c.Storage.Path = ""
		}, false},
		{"badger without path", func(c *Config) { c.Storage.Path = "" }, true},
		{"badger in memory without path", func(c *Config) {
			c.Storage.Path = ""
			c.Storage.InMemory = true
		}, false},
		{"zero breaker threshold", func(c *Config) { c.Storage.BreakerThreshold = 0 }, true},
		{"details cache disabled", func(c *Config) { c.Storage.DetailsCacheSize = 0 }, false},
		{"negative details cache", func(c *Config) { c.Storage.DetailsCacheSize = -1 }, true},
		{"zero factors", func(c *Config) { c.Recommend.Factors = 0 }, true},
		{"zero content purchase weight", func(c *Config) { c.Recommend.ContentPurchaseWeight = 0 }, true},
		{"negative collab view weight", func(c *Config) { c.Recommend.CollabViewWeight = -1 }, true},
		{"content score floor of one", func(c *Config) { c.Recommend.ContentScoreFloor = 1 }, true},
		{"content score floor zero", func(c *Config) { c.Recommend.ContentScoreFloor = 0 }, true},
		{"max_k below default_k", func(c *Config) { c.Recommend.MaxK = 5 }, true},
		{"content only", func(c *Config) { c.Recommend.CollaborativeWeight = 0 }, false},
		{"zero stop timeout", func(c *Config) { c.Replay.StopTimeout = 0 }, true},
		{"import without catalog", func(c *Config) { c.Data.CatalogPath = "" }, true},
		{"no import, no catalog", func(c *Config) {
			c.Data.ImportOnStartup = false
			c.Data.CatalogPath = ""
		}, false},
		{"activity import without path", func(c *Config) {
			c.Data.ImportActivityOnStartup = true
			c.Data.ActivityPath = ""
		}, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"empty log format", func(c *Config) { c.Logging.Format = "" }, false},
	}

	for _, tt := range tests {
		cfg := defaultConfig()
		tt.modify(cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.ShouldWarnAboutCORS() {
		t.Error("development wildcard should not warn")
	}
	cfg.Server.Environment = "production"
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("production wildcard should warn")
	}
	cfg.Security.CORSOrigins = []string{"https://shop.example.com"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origins should not warn")
	}
}

func TestConversions(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Recommend.ContentWeight = 0.5
	cfg.Recommend.CollaborativeWeight = 0.5
	cfg.Recommend.Factors = 12
	cfg.Recommend.ContentPurchaseWeight = 4
	cfg.Recommend.ContentScoreFloor = 0.25
	cfg.Recommend.CollabViewWeight = 2
	cfg.Recommend.MaxK = 40
	cfg.Storage.BreakerThreshold = 9
	cfg.Simulate.Users = 3
	cfg.Logging.Format = ""

	engine := cfg.Recommend.EngineConfig()
	if engine.Weights.Content != 0.5 || engine.Weights.Collaborative != 0.5 {
		t.Errorf("engine weights = %+v", engine.Weights)
	}
	if engine.Limits.MaxK != 40 || engine.Training.Timeout != 10*time.Minute {
		t.Errorf("engine config = %+v", engine)
	}
	if err := engine.Validate(); err != nil {
		t.Errorf("engine config invalid: %v", err)
	}

	if got := cfg.Recommend.CollaborativeConfig(); got.Factors != 12 || got.PurchaseWeight != 5 || got.ViewWeight != 2 {
		t.Errorf("CollaborativeConfig() = %+v", got)
	}
	if got := cfg.Recommend.ContentConfig(); got.PurchaseWeight != 4 || got.ViewWeight != 1 || got.ScoreFloor != 0.25 {
		t.Errorf("ContentConfig() = %+v", got)
	}
	if got := cfg.Storage.BreakerConfig(); got.FailureThreshold != 9 || got.Timeout != 30*time.Second {
		t.Errorf("BreakerConfig() = %+v", got)
	}
	if got := cfg.Storage.DetailsCacheConfig(); got.Capacity != 10000 || got.TTL != 5*time.Minute {
		t.Errorf("DetailsCacheConfig() = %+v", got)
	}
	if got := cfg.Storage.BadgerConfig(); got.Path != "/data/marketlens" {
		t.Errorf("BadgerConfig() = %+v", got)
	}
	if got := cfg.Replay.ReplayerConfig(); got.StopTimeout != 2*time.Second {
		t.Errorf("ReplayerConfig() = %+v", got)
	}
	if got := cfg.Simulate.GeneratorConfig(); got.Users != 3 || got.Seed != 42 || len(got.Categories) == 0 {
		t.Errorf("GeneratorConfig() = %+v", got)
	}
	if got := cfg.Logging.LoggerConfig(); got.Format != "json" || got.Level != "info" {
		t.Errorf("LoggerConfig() = %+v", got)
	}
}
