// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package algorithms

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/tomtom215/marketlens/internal/models"
)

// mockSource serves a fixed catalog and interaction log.
type mockSource struct {
	mu           sync.Mutex
	items        []models.Item
	interactions []models.Interaction
	itemsErr     error
	block        chan struct{} // when set, GetAllItems waits on it
	entered      chan struct{}
}

func (m *mockSource) GetAllItems(_ context.Context) ([]models.Item, error) {
	m.mu.Lock()
	block, entered := m.block, m.entered
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return slices.Clone(m.items), nil
}

func (m *mockSource) GetUserIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, in := range m.interactions {
		if !slices.Contains(ids, in.UserID) {
			ids = append(ids, in.UserID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *mockSource) GetInteractions(_ context.Context, userID string) ([]models.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Interaction
	for _, in := range m.interactions {
		if userID == "" || in.UserID == userID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *mockSource) add(user, item string, action models.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, models.Interaction{
		UserID:    user,
		ItemID:    item,
		Action:    action,
		Timestamp: time.Date(2026, 1, 1, 0, len(m.interactions), 0, 0, time.UTC),
	})
}

func (m *mockSource) setItemsErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemsErr = err
}

var errSourceDown = errors.New("source down")

// testCatalog has two clear clusters (kitchen and audio) across price bands.
func testCatalog() []models.Item {
	return []models.Item{
		{ItemID: "K1", Name: "Kettle", Category: "Kitchen", Brand: "Brewmaster", Price: 25, Description: "stainless steel electric kettle"},
		{ItemID: "K2", Name: "Toaster", Category: "Kitchen", Brand: "Brewmaster", Price: 35, Description: "two slice stainless toaster"},
		{ItemID: "K3", Name: "Coffee Grinder", Category: "Kitchen", Brand: "Brewmaster", Price: 45, Description: "electric burr coffee grinder"},
		{ItemID: "A1", Name: "Headphones", Category: "Audio", Brand: "Sonique", Price: 350, Description: "wireless noise cancelling headphones"},
		{ItemID: "A2", Name: "Speaker", Category: "Audio", Brand: "Sonique", Price: 420, Description: "wireless bluetooth speaker"},
		{ItemID: "A3", Name: "Turntable", Category: "Audio", Brand: "Vinylux", Price: 150, Description: "belt drive turntable"},
	}
}
