// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marketlens/internal/replay"
)

type mockStreamer struct {
	mu        sync.Mutex
	streaming bool
	stopErr   error
	stops     int
}

func (m *mockStreamer) IsStreaming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streaming
}

func (m *mockStreamer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.streaming = false
	return m.stopErr
}

func (m *mockStreamer) stopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

func TestReplayService_Interface(t *testing.T) {
	var _ suture.Service = (*ReplayService)(nil)
	var _ Streamer = (*replay.Replayer)(nil)
}

func TestReplayService_StopsStreamingOnShutdown(t *testing.T) {
	tests := []struct {
		name      string
		streaming bool
		stopErr   error
		wantStops int
	}{
		{"idle", false, nil, 0},
		{"streaming", true, nil, 1},
		{"stop timeout", true, replay.ErrStopTimeout, 1},
		{"already stopped", true, replay.ErrNotStreaming, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streamer := &mockStreamer{streaming: tt.streaming, stopErr: tt.stopErr}
			svc := NewReplayService(streamer, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() {
				done <- svc.Serve(ctx)
			}()

			time.Sleep(10 * time.Millisecond)
			if streamer.stopCalls() != 0 {
				t.Fatal("Stop called before shutdown")
			}
			cancel()

			select {
			case err := <-done:
				if !errors.Is(err, context.Canceled) {
					t.Errorf("Serve() = %v, want context.Canceled", err)
				}
			case <-time.After(time.Second):
				t.Fatal("Serve() did not return")
			}

			if got := streamer.stopCalls(); got != tt.wantStops {
				t.Errorf("Stop() called %d times, want %d", got, tt.wantStops)
			}
		})
	}
}

func TestReplayService_String(t *testing.T) {
	svc := NewReplayService(&mockStreamer{}, zerolog.Nop())
	if svc.String() != "replay-service" {
		t.Errorf("String() = %q", svc.String())
	}
}
