// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileSource_Load(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	catalog := writeFile(t, dir, "product_catalog.json", `[
		{"product_id": "P0001", "product_name": "Kettle", "category": "Kitchen", "price": 25},
		{"item_id": "P0002", "name": "Speaker", "category": "Audio", "price": 420}
	]`)
	activity := writeFile(t, dir, "user_activity.json", `[
		{"user_id": "U0001", "product_id": "P0001", "action": "view", "timestamp": "2026-03-01T10:00:00"},
		{"user_id": "U0001", "item_id": "P0002", "action": "buy", "timestamp": "2026-03-01T09:00:00Z"}
	]`)

	st := store.NewMemoryStore()
	src := &FileSource{ActivityPath: activity, CatalogPath: catalog, Catalog: st, Logger: zerolog.Nop()}

	events, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].ItemID != "P0001" || events[1].Action != models.ActionPurchase {
		t.Errorf("events = %+v", events)
	}

	items, err := st.GetAllItems(context.Background())
	if err != nil || len(items) != 2 {
		t.Errorf("catalog not imported: %v, %v", items, err)
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	t.Parallel()

	src := &FileSource{ActivityPath: filepath.Join(t.TempDir(), "missing.json"), Logger: zerolog.Nop()}
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("Load() with a missing file should fail")
	}
}

func TestFileSource_ReplayIntoStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	activity := writeFile(t, dir, "user_activity.json", `[
		{"user_id": "U0001", "product_id": "P0001", "action": "view", "timestamp": "2026-03-01T10:00:00"},
		{"user_id": "U0002", "product_id": "P0001", "action": "purchase", "timestamp": "2026-03-01T10:00:01"}
	]`)

	st := store.NewMemoryStore()
	r := New(DefaultConfig(), &FileSource{ActivityPath: activity, Logger: zerolog.Nop()}, st, zerolog.Nop())
	if err := r.Start(context.Background(), 100); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitDone(t, r)

	users, err := st.GetUserIDs(context.Background())
	if err != nil || len(users) != 2 {
		t.Errorf("GetUserIDs() = %v, %v", users, err)
	}
	ins, _ := st.GetInteractions(context.Background(), "U0002")
	if len(ins) != 1 || ins[0].IngestedAt == nil || ins[0].ID == "" {
		t.Errorf("replayed interaction = %+v", ins)
	}
}
