// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package recommend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/store"
)

// mockAlgorithm implements Algorithm for testing.
type mockAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	trainErr      error
	trainDelay    time.Duration
	recs          []models.ScoredCandidate
	recommendErr  error
	lastK         int
	mu            sync.RWMutex
}

func newMockAlgorithm(name string, recs ...models.ScoredCandidate) *mockAlgorithm {
	return &mockAlgorithm{name: name, recs: recs}
}

func (m *mockAlgorithm) Name() string {
	return m.name
}

func (m *mockAlgorithm) Train(ctx context.Context) error {
	if m.trainDelay > 0 {
		select {
		case <-time.After(m.trainDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.trainErr != nil {
		return m.trainErr
	}
	m.trained = true
	m.version++
	m.lastTrainedAt = time.Now()
	return nil
}

func (m *mockAlgorithm) Recommend(_ context.Context, _ string, k int) ([]models.ScoredCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastK = k
	if m.recommendErr != nil {
		return nil, m.recommendErr
	}
	if !m.trained {
		return []models.ScoredCandidate{}, nil
	}
	return m.recs, nil
}

func (m *mockAlgorithm) IsTrained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trained
}

func (m *mockAlgorithm) Version() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

func (m *mockAlgorithm) LastTrainedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastTrainedAt
}

func (m *mockAlgorithm) setTrainErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trainErr = err
}

// testLogger returns a zerolog logger for testing.
func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestEngine(t *testing.T, content, collab *mockAlgorithm) (*Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })

	engine, err := NewEngine(DefaultConfig(), content, collab, st, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine, st
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	content, collab := newMockAlgorithm("content"), newMockAlgorithm("collaborative")

	tests := []struct {
		name    string
		cfg     *Config
		content Algorithm
		collab  Algorithm
		store   Store
		wantErr bool
	}{
		{"nil config uses defaults", nil, content, collab, st, false},
		{"invalid config", &Config{}, content, collab, st, true},
		{"missing content", DefaultConfig(), nil, collab, st, true},
		{"missing collaborative", DefaultConfig(), content, nil, st, true},
		{"missing store", DefaultConfig(), content, collab, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine, err := NewEngine(tt.cfg, tt.content, tt.collab, tt.store, testLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && engine.Config().Weights.Content != 0.6 {
				t.Errorf("Config() = %+v", engine.Config())
			}
		})
	}
}

func TestEngine_Config_ReturnsCopy(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, newMockAlgorithm("content"), newMockAlgorithm("collaborative"))
	engine.Config().Limits.MaxK = 1
	if engine.Config().Limits.MaxK != 100 {
		t.Error("Config() must return a copy")
	}
}

func TestEngine_Train(t *testing.T) {
	t.Parallel()

	content, collab := newMockAlgorithm("content"), newMockAlgorithm("collaborative")
	engine, _ := newTestEngine(t, content, collab)

	status := engine.Status()
	if status.Trained || status.ModelVersion != 0 {
		t.Errorf("initial status = %+v", status)
	}

	if err := engine.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	status = engine.Status()
	if !status.Trained || status.IsTraining {
		t.Errorf("status after train = %+v", status)
	}
	if status.ModelVersion != 1 || status.LastTrainedAt.IsZero() || status.LastError != "" {
		t.Errorf("status after train = %+v", status)
	}
	if len(status.Algorithms) != 2 || status.Algorithms[0].Name != "content" || !status.Algorithms[1].Trained {
		t.Errorf("Algorithms = %+v", status.Algorithms)
	}
}

func TestEngine_Train_PartialFailure(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	content, collab := newMockAlgorithm("content"), newMockAlgorithm("collaborative")
	engine, _ := newTestEngine(t, content, collab)

	if err := engine.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	collab.setTrainErr(errBoom)
	err := engine.Train(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("Train() error = %v, want errBoom", err)
	}
	if !strings.Contains(err.Error(), "collaborative") {
		t.Errorf("error %q should name the failed algorithm", err)
	}

	status := engine.Status()
	if status.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1 (failed cycle does not count)", status.ModelVersion)
	}
	if status.LastError == "" {
		t.Error("LastError should be recorded")
	}
	// The content engine retrained; the collaborative one kept its model.
	if content.Version() != 2 || collab.Version() != 1 || !status.Trained {
		t.Errorf("content v%d, collab v%d, trained %v", content.Version(), collab.Version(), status.Trained)
	}
}

func TestEngine_Train_AlreadyInProgress(t *testing.T) {
	t.Parallel()

	content, collab := newMockAlgorithm("content"), newMockAlgorithm("collaborative")
	content.trainDelay = 500 * time.Millisecond
	engine, _ := newTestEngine(t, content, collab)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = engine.Train(context.Background())
	}()

	// Give time for first training to acquire the lock.
	time.Sleep(100 * time.Millisecond)

	if !engine.Status().IsTraining {
		t.Error("Status().IsTraining = false during training")
	}
	if err := engine.Train(context.Background()); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("second Train() error = %v, want ErrTrainingInProgress", err)
	}

	wg.Wait()
	if firstErr != nil {
		t.Errorf("first Train() error = %v", firstErr)
	}
}

func TestEngine_Train_Timeout(t *testing.T) {
	t.Parallel()

	content, collab := newMockAlgorithm("content"), newMockAlgorithm("collaborative")
	content.trainDelay = time.Second

	st := store.NewMemoryStore()
	cfg := DefaultConfig()
	cfg.Training.Timeout = 20 * time.Millisecond
	engine, err := NewEngine(cfg, content, collab, st, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if err := engine.Train(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Train() error = %v, want DeadlineExceeded", err)
	}
}

func TestEngine_Recommend_Untrained(t *testing.T) {
	t.Parallel()

	engine, _ := newTestEngine(t, newMockAlgorithm("content"), newMockAlgorithm("collaborative"))
	recs, err := engine.Recommend(context.Background(), "U1", 5)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("untrained Recommend() = %v, want empty", recs)
	}
}

func TestEngine_Recommend(t *testing.T) {
	t.Parallel()

	content := newMockAlgorithm("content",
		models.ScoredCandidate{ItemID: "A", Score: 1},
		models.ScoredCandidate{ItemID: "B", Score: 0.3},
	)
	collab := newMockAlgorithm("collaborative",
		models.ScoredCandidate{ItemID: "B", Score: 0.9},
		models.ScoredCandidate{ItemID: "C", Score: 0.1},
	)
	engine, _ := newTestEngine(t, content, collab)
	if err := engine.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	recs, err := engine.Recommend(context.Background(), "U1", 2)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if content.lastK != 4 || collab.lastK != 4 {
		t.Errorf("candidate requests = %d/%d, want 2k = 4", content.lastK, collab.lastK)
	}
	// A = 0.6, B = 0.4 (bottom of content, top of collaborative), C = 0.
	if len(recs) != 2 || recs[0].ItemID != "A" || recs[1].ItemID != "B" {
		t.Fatalf("Recommend() = %+v", recs)
	}
	if recs[0].Attribution != models.AttributionContent || recs[1].Attribution != models.AttributionHybrid {
		t.Errorf("attributions = %s/%s, want content/hybrid", recs[0].Attribution, recs[1].Attribution)
	}

	if _, err := engine.Recommend(context.Background(), "U1", 0); err != nil {
		t.Fatal(err)
	}
	if content.lastK != 20 {
		t.Errorf("default k candidate request = %d, want 20", content.lastK)
	}
}

func TestEngine_Recommend_AlgorithmError(t *testing.T) {
	t.Parallel()

	errDown := errors.New("store down")
	content := newMockAlgorithm("content")
	content.recommendErr = errDown
	engine, _ := newTestEngine(t, content, newMockAlgorithm("collaborative"))

	if _, err := engine.Recommend(context.Background(), "U1", 5); !errors.Is(err, errDown) {
		t.Errorf("Recommend() error = %v, want errDown", err)
	}
}

func TestEngine_Generate_PersistsSnapshot(t *testing.T) {
	t.Parallel()

	content := newMockAlgorithm("content", models.ScoredCandidate{ItemID: "A", Score: 0.8})
	engine, st := newTestEngine(t, content, newMockAlgorithm("collaborative"))
	ctx := context.Background()

	// Untrained: the empty result still replaces the snapshot.
	snap, err := engine.Generate(ctx, "U1", 5)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(snap.Items) != 0 {
		t.Errorf("untrained Generate() = %v", snap.Items)
	}
	stored, err := st.GetRecommendationSnapshot(ctx, "U1")
	if err != nil {
		t.Fatalf("GetRecommendationSnapshot() error = %v", err)
	}
	if len(stored.Items) != 0 {
		t.Errorf("stored snapshot = %+v", stored)
	}

	if err := engine.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if _, err := engine.Generate(ctx, "U1", 5); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	stored, err = st.GetRecommendationSnapshot(ctx, "U1")
	if err != nil {
		t.Fatalf("GetRecommendationSnapshot() error = %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].ItemID != "A" || stored.GeneratedAt.IsZero() {
		t.Errorf("stored snapshot = %+v", stored)
	}
}

func TestEngine_Formatted(t *testing.T) {
	t.Parallel()

	content := newMockAlgorithm("content",
		models.ScoredCandidate{ItemID: "A", Score: 1},
		models.ScoredCandidate{ItemID: "GONE", Score: 0.9},
	)
	collab := newMockAlgorithm("collaborative",
		models.ScoredCandidate{ItemID: "A", Score: 0.5},
		models.ScoredCandidate{ItemID: "B", Score: 0.4},
	)
	engine, st := newTestEngine(t, content, collab)
	ctx := context.Background()

	for _, item := range []models.Item{
		{ItemID: "A", Name: "Kettle", Category: "Kitchen", Price: 25},
		{ItemID: "B", Name: "Speaker", Category: "Audio", Price: 420},
	} {
		if err := st.UpsertItem(ctx, &item); err != nil {
			t.Fatalf("UpsertItem() error = %v", err)
		}
	}
	if err := engine.Train(ctx); err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	out, err := engine.Formatted(ctx, "U1", 10)
	if err != nil {
		t.Fatalf("Formatted() error = %v", err)
	}
	if out.UserID != "U1" {
		t.Errorf("UserID = %q", out.UserID)
	}
	if len(out.RecommendedProducts) != 2 {
		t.Fatalf("RecommendedProducts = %+v, want A and B (GONE has no details)", out.RecommendedProducts)
	}

	first := out.RecommendedProducts[0]
	if first.ItemID != "A" || first.Name != "Kettle" || first.Category != "Kitchen" || first.Price != 25 {
		t.Errorf("first product = %+v", first)
	}
	if first.Reason != "hybrid" {
		t.Errorf("first reason = %q, want hybrid", first.Reason)
	}
	if out.RecommendedProducts[1].Reason != "collaborative filtering similarity" {
		t.Errorf("second reason = %q", out.RecommendedProducts[1].Reason)
	}
}

func TestEngine_ConcurrentTrainAndRecommend(t *testing.T) {
	t.Parallel()

	content := newMockAlgorithm("content", models.ScoredCandidate{ItemID: "A", Score: 1})
	collab := newMockAlgorithm("collaborative", models.ScoredCandidate{ItemID: "B", Score: 1})
	content.trainDelay = 5 * time.Millisecond
	engine, _ := newTestEngine(t, content, collab)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := engine.Train(ctx)
			if err != nil && !errors.Is(err, ErrTrainingInProgress) {
				t.Errorf("Train() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := engine.Recommend(ctx, "U1", 3); err != nil {
				t.Errorf("Recommend() error = %v", err)
			}
			_ = engine.Status()
		}()
	}
	wg.Wait()
}
