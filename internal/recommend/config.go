// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the contribution of each engine to the blended score.
	Weights BlendWeights `json:"weights"`

	// Training contains training schedule parameters.
	Training TrainingConfig `json:"training"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`
}

// BlendWeights are applied to the min-max normalized engine scores.
type BlendWeights struct {
	// Content is the weight of the content-based engine.
	Content float64 `json:"content"`

	// Collaborative is the weight of the collaborative engine.
	Collaborative float64 `json:"collaborative"`
}

// TrainingConfig contains training schedule parameters.
type TrainingConfig struct {
	// Interval between scheduled retrains. Zero disables scheduling.
	Interval time.Duration `json:"interval"`

	// Timeout bounds a single training cycle.
	Timeout time.Duration `json:"timeout"`

	// OnStartup trains once as soon as the service starts.
	OnStartup bool `json:"on_startup"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultK is used when a request does not specify how many items it wants.
	DefaultK int `json:"default_k"`

	// MaxK caps the number of items a request may ask for.
	MaxK int `json:"max_k"`

	// CandidateMultiplier is how many candidates per requested item each
	// engine contributes before blending.
	CandidateMultiplier int `json:"candidate_multiplier"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: BlendWeights{
			Content:       0.6,
			Collaborative: 0.4,
		},
		Training: TrainingConfig{
			Interval:  time.Hour,
			Timeout:   10 * time.Minute,
			OnStartup: true,
		},
		Limits: LimitsConfig{
			DefaultK:            10,
			MaxK:                100,
			CandidateMultiplier: 2,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.Content < 0 {
		return fmt.Errorf("weights.content must be non-negative, got %f", c.Weights.Content)
	}
	if c.Weights.Collaborative < 0 {
		return fmt.Errorf("weights.collaborative must be non-negative, got %f", c.Weights.Collaborative)
	}
	if c.Weights.Content+c.Weights.Collaborative == 0 {
		return fmt.Errorf("at least one blend weight must be positive")
	}

	if c.Training.Interval < 0 {
		return fmt.Errorf("training.interval must be non-negative, got %v", c.Training.Interval)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.CandidateMultiplier < 1 {
		return fmt.Errorf("limits.candidate_multiplier must be positive, got %d", c.Limits.CandidateMultiplier)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	clone := *c
	return &clone
}

// ClampK returns DefaultK for non-positive k and caps k at MaxK.
func (c *Config) ClampK(k int) int {
	if k <= 0 {
		return c.Limits.DefaultK
	}
	return min(k, c.Limits.MaxK)
}
