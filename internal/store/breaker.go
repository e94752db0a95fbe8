// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marketlens/internal/metrics"
	"github.com/tomtom215/marketlens/internal/models"
)

// ErrCircuitOpen is returned while the write breaker rejects calls.
var ErrCircuitOpen = errors.New("store circuit breaker open")

// BreakerConfig configures the write circuit breaker.
type BreakerConfig struct {
	// Name labels metrics and logs.
	Name string

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before allowing a probe.
	Timeout time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval clears the counts while closed; 0 never clears.
	Interval time.Duration
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "store-writes",
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
		Interval:         time.Minute,
	}
}

// BreakerStore guards the writes of an inner Repository with a circuit
// breaker. Reads pass straight through. Failed writes are never retried.
type BreakerStore struct {
	Repository
	cb     *gobreaker.CircuitBreaker[struct{}]
	name   string
	logger zerolog.Logger
}

// NewBreakerStore wraps inner.
//
//nolint:gocritic // hugeParam: zerolog.Logger is designed to be passed by value
func NewBreakerStore(inner Repository, cfg BreakerConfig, logger zerolog.Logger) *BreakerStore {
	if cfg.Name == "" {
		cfg.Name = "store-writes"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	b := &BreakerStore{
		Repository: inner,
		name:       cfg.Name,
		logger:     logger.With().Str("component", "store-breaker").Logger(),
	}

	threshold := cfg.FailureThreshold
	b.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Caller mistakes are not backend failures.
			return err == nil || errors.Is(err, ErrInvalidInteraction) || errors.Is(err, ErrInvalidItem) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateValue(to))
		},
	})
	return b
}

// State returns the breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

// Ping reports ErrCircuitOpen while the breaker is open, so readiness
// follows the write path.
func (b *BreakerStore) Ping(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return ErrCircuitOpen
	}
	return b.Repository.Ping(ctx)
}

// UpsertItem writes through the breaker.
func (b *BreakerStore) UpsertItem(ctx context.Context, item *models.Item) error {
	return b.execute(func() error { return b.Repository.UpsertItem(ctx, item) })
}

// InsertInteraction writes through the breaker.
func (b *BreakerStore) InsertInteraction(ctx context.Context, in *models.Interaction) error {
	return b.execute(func() error { return b.Repository.InsertInteraction(ctx, in) })
}

// SaveRecommendationSnapshot writes through the breaker.
func (b *BreakerStore) SaveRecommendationSnapshot(ctx context.Context, snap *models.RecommendationSnapshot) error {
	return b.execute(func() error { return b.Repository.SaveRecommendationSnapshot(ctx, snap) })
}

func (b *BreakerStore) execute(write func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, write()
	})
	metrics.RecordCircuitBreakerRequest(b.name, err, isRejection)
	if isRejection(err) {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return err
}

func isRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
