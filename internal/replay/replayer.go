// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package replay streams a recorded interaction log back into the store at
// an accelerated pace, simulating live user activity.
//
// A Replayer is either idle, streaming, or stopping. Start moves it from
// idle to streaming and launches a single background loop; the loop returns
// it to idle when the log is exhausted or when Stop is observed. Writes are
// never interrupted: cancellation is checked before each event and while
// waiting between events.
package replay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/metrics"
	"github.com/tomtom215/marketlens/internal/models"
)

var (
	// ErrAlreadyStreaming is returned by Start while a replay is active.
	ErrAlreadyStreaming = errors.New("streaming already in progress")

	// ErrNotStreaming is returned by Stop when no replay is active.
	ErrNotStreaming = errors.New("streaming is not running")

	// ErrInvalidSpeed is returned for a speed factor below one.
	ErrInvalidSpeed = errors.New("speed factor must be a positive integer")

	// ErrNoEvents is returned when the event source yields nothing to replay.
	ErrNoEvents = errors.New("no events to replay")

	// ErrStopTimeout is returned when the loop does not exit within
	// StopTimeout. The replayer still returns to idle once it does.
	ErrStopTimeout = errors.New("timed out waiting for replay to stop")
)

// State is the replayer state.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateStreaming State = "streaming"
	StateStopping  State = "stopping"
)

// EventSource loads the interaction log to replay.
type EventSource interface {
	Load(ctx context.Context) ([]models.Interaction, error)
}

// Writer receives replayed interactions.
type Writer interface {
	InsertInteraction(ctx context.Context, in *models.Interaction) error
}

// Config contains replayer settings.
type Config struct {
	// StopTimeout bounds how long Stop waits for the loop to exit.
	StopTimeout time.Duration
}

// DefaultConfig returns the default replayer settings.
func DefaultConfig() Config {
	return Config{StopTimeout: 2 * time.Second}
}

// Status is a point-in-time view of the replayer.
type Status struct {
	State      State     `json:"state"`
	Speed      int       `json:"speed_factor,omitempty"`
	Total      int       `json:"total_events"`
	Written    int64     `json:"written"`
	Failed     int64     `json:"failed"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Replayer replays an interaction log into a Writer.
type Replayer struct {
	cfg    Config
	source EventSource
	writer Writer
	logger zerolog.Logger

	// running is the flag the loop checks before every event.
	running atomic.Bool
	written atomic.Int64
	failed  atomic.Int64

	mu         sync.Mutex
	state      State
	events     []models.Interaction
	speed      int
	cancel     context.CancelFunc
	done       chan struct{}
	startedAt  time.Time
	finishedAt time.Time
}

// New creates an idle replayer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, source EventSource, writer Writer, logger zerolog.Logger) *Replayer {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultConfig().StopTimeout
	}
	return &Replayer{
		cfg:    cfg,
		source: source,
		writer: writer,
		logger: logger.With().Str("component", "replay").Logger(),
		state:  StateIdle,
	}
}

// Start begins replaying at speed times real time. The event log is loaded
// on the first successful start and reused afterwards. ctx bounds loading
// only; the replay itself runs until completion or Stop.
//
// The first load runs without holding the lock; the replayer reports
// StateLoading until it completes.
func (r *Replayer) Start(ctx context.Context, speed int) error {
	if speed < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSpeed, speed)
	}

	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrAlreadyStreaming
	}
	if r.events == nil {
		r.state = StateLoading
		r.mu.Unlock()

		events, err := r.load(ctx)

		r.mu.Lock()
		if err != nil {
			r.state = StateIdle
			r.mu.Unlock()
			return err
		}
		r.events = events
	}
	defer r.mu.Unlock()

	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.state = StateStreaming
	r.speed = speed
	r.startedAt = time.Now()
	r.finishedAt = time.Time{}
	r.written.Store(0)
	r.failed.Store(0)
	r.running.Store(true)
	metrics.SetReplayStreaming(true)

	r.logger.Info().Int("speed_factor", speed).Msg("streaming started")
	go r.run(loopCtx, r.events, speed, r.done)
	return nil
}

// load reads and orders the event log.
func (r *Replayer) load(ctx context.Context) ([]models.Interaction, error) {
	events, err := r.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	slices.SortStableFunc(events, func(a, b models.Interaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	r.logger.Info().Int("events", len(events)).Msg("loaded interaction log")
	return events, nil
}

// Stop asks the loop to exit and waits up to StopTimeout for it.
func (r *Replayer) Stop() error {
	r.mu.Lock()
	if r.state != StateStreaming {
		r.mu.Unlock()
		return ErrNotStreaming
	}
	r.state = StateStopping
	r.running.Store(false)
	r.cancel()
	done := r.done
	r.mu.Unlock()

	timer := time.NewTimer(r.cfg.StopTimeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		r.logger.Warn().Dur("timeout", r.cfg.StopTimeout).Msg("replay did not stop in time")
		return ErrStopTimeout
	}
}

// Wait blocks until the current replay finishes or ctx is done.
func (r *Replayer) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsStreaming reports whether a replay is active.
func (r *Replayer) IsStreaming() bool {
	return r.running.Load()
}

// Status returns the current state and counters.
func (r *Replayer) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		State:      r.state,
		Speed:      r.speed,
		Total:      len(r.events),
		Written:    r.written.Load(),
		Failed:     r.failed.Load(),
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
	}
}

func (r *Replayer) run(ctx context.Context, events []models.Interaction, speed int, done chan struct{}) {
	defer close(done)
	defer r.finish()

	// Writes must complete even after Stop.
	writeCtx := context.WithoutCancel(ctx)

	var prev time.Time
	for i := range events {
		if !r.running.Load() {
			return
		}

		if i > 0 {
			if wait := events[i].Timestamp.Sub(prev) / time.Duration(speed); wait > 0 {
				if !sleep(ctx, wait) {
					return
				}
			}
		}

		ev := events[i]
		now := time.Now().UTC()
		ev.IngestedAt = &now
		ev.ID = ""

		err := r.writer.InsertInteraction(writeCtx, &ev)
		metrics.RecordReplayWrite(err)
		if err != nil {
			r.failed.Add(1)
			r.logger.Warn().
				Err(err).
				Str("user_id", ev.UserID).
				Str("item_id", ev.ItemID).
				Msg("failed to write replayed interaction")
		} else {
			r.written.Add(1)
		}

		prev = events[i].Timestamp
	}
}

func (r *Replayer) finish() {
	r.running.Store(false)
	metrics.SetReplayStreaming(false)

	r.mu.Lock()
	stopped := r.state == StateStopping
	r.state = StateIdle
	r.finishedAt = time.Now()
	r.cancel()
	r.mu.Unlock()

	r.logger.Info().
		Bool("stopped", stopped).
		Int64("written", r.written.Load()).
		Int64("failed", r.failed.Load()).
		Msg("streaming finished")
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
