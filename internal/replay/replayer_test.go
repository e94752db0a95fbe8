// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package replay

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/models"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// mockWriter records interactions and can fail or block on demand.
type mockWriter struct {
	mu      sync.Mutex
	written []models.Interaction
	failFor map[string]bool
	block   chan struct{}
	wrote   chan struct{}
}

func newMockWriter() *mockWriter {
	return &mockWriter{failFor: map[string]bool{}, wrote: make(chan struct{}, 100)}
}

func (w *mockWriter) InsertInteraction(ctx context.Context, in *models.Interaction) error {
	if w.block != nil {
		<-w.block
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	w.mu.Lock()
	defer func() {
		w.mu.Unlock()
		w.wrote <- struct{}{}
	}()
	if w.failFor[in.ItemID] {
		return errors.New("write failed")
	}
	w.written = append(w.written, *in)
	return nil
}

func (w *mockWriter) items() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, len(w.written))
	for i, in := range w.written {
		ids[i] = in.ItemID
	}
	return ids
}

// countingSource counts Load calls.
type countingSource struct {
	events []models.Interaction
	err    error
	calls  atomic.Int32
}

func (s *countingSource) Load(_ context.Context) ([]models.Interaction, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.Interaction(nil), s.events...), nil
}

func event(item string, offset time.Duration) models.Interaction {
	return models.Interaction{UserID: "U1", ItemID: item, Action: models.ActionView, Timestamp: base.Add(offset)}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for write")
	}
}

func waitDone(t *testing.T, r *Replayer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestReplayer_StartValidation(t *testing.T) {
	t.Parallel()

	errLoad := errors.New("file missing")
	tests := []struct {
		name   string
		source EventSource
		speed  int
		want   error
	}{
		{"zero speed", SliceSource{event("P1", 0)}, 0, ErrInvalidSpeed},
		{"negative speed", SliceSource{event("P1", 0)}, -5, ErrInvalidSpeed},
		{"source error", &countingSource{err: errLoad}, 10, errLoad},
		{"empty log", SliceSource{}, 10, ErrNoEvents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := New(DefaultConfig(), tt.source, newMockWriter(), zerolog.Nop())
			if err := r.Start(context.Background(), tt.speed); !errors.Is(err, tt.want) {
				t.Errorf("Start() error = %v, want %v", err, tt.want)
			}
			if s := r.Status(); s.State != StateIdle {
				t.Errorf("State = %s, want idle", s.State)
			}
		})
	}
}

func TestReplayer_NaturalCompletion(t *testing.T) {
	t.Parallel()

	w := newMockWriter()
	// Deliberately out of order; the replayer sorts by timestamp.
	src := SliceSource{event("P3", 2*time.Second), event("P1", 0), event("P2", time.Second)}
	r := New(DefaultConfig(), src, w, zerolog.Nop())

	if err := r.Start(context.Background(), 1000); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitDone(t, r)

	got := w.items()
	if len(got) != 3 || got[0] != "P1" || got[1] != "P2" || got[2] != "P3" {
		t.Errorf("written = %v, want [P1 P2 P3]", got)
	}

	status := r.Status()
	if status.State != StateIdle || status.Written != 3 || status.Total != 3 || status.FinishedAt.IsZero() {
		t.Errorf("Status() = %+v", status)
	}
	if r.IsStreaming() {
		t.Error("IsStreaming() = true after completion")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, in := range w.written {
		if in.IngestedAt == nil || in.IngestedAt.IsZero() {
			t.Errorf("%s has no ingestion time", in.ItemID)
		}
	}
	if src[0].IngestedAt != nil {
		t.Error("source events must not be modified")
	}
}

func TestReplayer_Pacing(t *testing.T) {
	t.Parallel()

	w := newMockWriter()
	src := SliceSource{event("P1", 0), event("P2", 2*time.Second)}
	r := New(DefaultConfig(), src, w, zerolog.Nop())

	if err := r.Start(context.Background(), 10); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, w.wrote)
	first := time.Now()
	waitFor(t, w.wrote)
	elapsed := time.Since(first)

	// 2s of log time at 10x is 200ms of wall time.
	if elapsed < 150*time.Millisecond || elapsed > time.Second {
		t.Errorf("gap between writes = %v, want about 200ms", elapsed)
	}
	waitDone(t, r)
}

func TestReplayer_StartWhileStreaming(t *testing.T) {
	t.Parallel()

	w := newMockWriter()
	src := &countingSource{events: []models.Interaction{event("P1", 0), event("P2", time.Hour)}}
	r := New(DefaultConfig(), src, w, zerolog.Nop())

	if err := r.Start(context.Background(), 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, w.wrote)

	if err := r.Start(context.Background(), 5); !errors.Is(err, ErrAlreadyStreaming) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStreaming", err)
	}
	if s := r.Status(); s.Speed != 1 || s.State != StateStreaming {
		t.Errorf("Status() = %+v, want unchanged streaming at speed 1", s)
	}

	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestReplayer_StopMidStream(t *testing.T) {
	t.Parallel()

	w := newMockWriter()
	src := &countingSource{events: []models.Interaction{event("P1", 0), event("P2", time.Hour), event("P3", 2*time.Hour)}}
	r := New(DefaultConfig(), src, w, zerolog.Nop())

	if err := r.Stop(); !errors.Is(err, ErrNotStreaming) {
		t.Errorf("Stop() while idle error = %v, want ErrNotStreaming", err)
	}

	if err := r.Start(context.Background(), 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, w.wrote)

	start := time.Now()
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Stop() should interrupt the wait between events")
	}

	status := r.Status()
	if status.State != StateIdle || status.Written != 1 {
		t.Errorf("Status() = %+v, want idle with one write", status)
	}

	// Restart reuses the cached log.
	if err := r.Start(context.Background(), 1); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	waitFor(t, w.wrote)
	if err := r.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("source loaded %d times, want 1", n)
	}
}

func TestReplayer_StopTimeout(t *testing.T) {
	t.Parallel()

	w := newMockWriter()
	w.block = make(chan struct{})
	r := New(Config{StopTimeout: 50 * time.Millisecond}, SliceSource{event("P1", 0), event("P2", 0)}, w, zerolog.Nop())

	if err := r.Start(context.Background(), 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if err := r.Stop(); !errors.Is(err, ErrStopTimeout) {
		t.Fatalf("Stop() error = %v, want ErrStopTimeout", err)
	}
	if s := r.Status(); s.State != StateStopping {
		t.Errorf("State = %s, want stopping while the write is in flight", s.State)
	}

	close(w.block)
	waitDone(t, r)

	status := r.Status()
	if status.State != StateIdle {
		t.Errorf("State = %s, want idle", status.State)
	}
	// The in-flight write completes; nothing after it is written.
	if got := w.items(); len(got) != 1 || got[0] != "P1" {
		t.Errorf("written = %v, want [P1]", got)
	}
}

func TestReplayer_WriteFailuresContinue(t *testing.T) {
	t.Parallel()

	w := newMockWriter()
	w.failFor["P2"] = true
	r := New(DefaultConfig(), SliceSource{event("P1", 0), event("P2", 0), event("P3", 0)}, w, zerolog.Nop())

	if err := r.Start(context.Background(), 1); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitDone(t, r)

	status := r.Status()
	if status.Written != 2 || status.Failed != 1 {
		t.Errorf("Status() = %+v, want 2 written and 1 failed", status)
	}
	if got := w.items(); len(got) != 2 || got[1] != "P3" {
		t.Errorf("written = %v, want [P1 P3]", got)
	}
}

// gatedSource blocks Load until release is closed.
type gatedSource struct {
	events  []models.Interaction
	entered chan struct{}
	release chan struct{}
}

func (s *gatedSource) Load(ctx context.Context) ([]models.Interaction, error) {
	close(s.entered)
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return append([]models.Interaction(nil), s.events...), nil
}

func TestReplayer_StatusDuringLoad(t *testing.T) {
	t.Parallel()

	src := &gatedSource{
		events:  []models.Interaction{event("P1", 0), event("P2", time.Hour)},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := New(DefaultConfig(), src, newMockWriter(), zerolog.Nop())

	started := make(chan error, 1)
	go func() { started <- r.Start(context.Background(), 1) }()
	waitFor(t, src.entered)

	statusCh := make(chan Status, 1)
	go func() { statusCh <- r.Status() }()
	select {
	case s := <-statusCh:
		if s.State != StateLoading {
			t.Errorf("State = %s, want loading", s.State)
		}
	case <-time.After(time.Second):
		t.Fatal("Status() blocked while the log was loading")
	}

	if err := r.Start(context.Background(), 1); !errors.Is(err, ErrAlreadyStreaming) {
		t.Errorf("concurrent Start() error = %v, want ErrAlreadyStreaming", err)
	}
	if err := r.Stop(); !errors.Is(err, ErrNotStreaming) {
		t.Errorf("Stop() while loading error = %v, want ErrNotStreaming", err)
	}

	close(src.release)
	if err := <-started; err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s := r.Status(); s.State != StateStreaming || s.Total != 2 {
		t.Errorf("Status() = %+v, want streaming with 2 events", s)
	}
	if err := r.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestReplayer_FailedLoadReturnsToIdle(t *testing.T) {
	t.Parallel()

	src := &countingSource{err: errors.New("file missing")}
	r := New(DefaultConfig(), src, newMockWriter(), zerolog.Nop())

	if err := r.Start(context.Background(), 10); err == nil {
		t.Fatal("expected load error")
	}
	src.err = nil
	src.events = []models.Interaction{event("P1", 0)}
	if err := r.Start(context.Background(), 10); err != nil {
		t.Fatalf("Start() after failed load error = %v", err)
	}
	waitDone(t, r)
	if src.calls.Load() != 2 {
		t.Errorf("Load calls = %d, want 2", src.calls.Load())
	}
}
