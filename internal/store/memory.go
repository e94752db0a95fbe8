// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package store

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/tomtom215/marketlens/internal/models"
)

// MemoryStore implements Repository in process memory.
type MemoryStore struct {
	mu           sync.RWMutex
	items        map[string]models.Item
	interactions []models.Interaction
	users        map[string]struct{}
	snapshots    map[string]models.RecommendationSnapshot
	closed       bool
}

var _ Repository = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:     make(map[string]models.Item),
		users:     make(map[string]struct{}),
		snapshots: make(map[string]models.RecommendationSnapshot),
	}
}

// Close marks the store closed; later calls return ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Ping returns ErrClosed after Close.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.check(ctx)
}

func (m *MemoryStore) check(ctx context.Context) error {
	if m.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// UpsertItem inserts or replaces a catalog item.
func (m *MemoryStore) UpsertItem(ctx context.Context, item *models.Item) error {
	if item == nil || item.ItemID == "" {
		return ErrInvalidItem
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	m.items[item.ItemID] = *item
	return nil
}

// GetAllItems returns the catalog ordered by item ID.
func (m *MemoryStore) GetAllItems(ctx context.Context) ([]models.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(m.items))
	for _, it := range m.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

// GetItemDetails returns details for the requested items that exist.
func (m *MemoryStore) GetItemDetails(ctx context.Context, itemIDs []string) (map[string]models.ItemDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	out := make(map[string]models.ItemDetails, len(itemIDs))
	for _, id := range itemIDs {
		if it, ok := m.items[id]; ok {
			out[id] = it.Details()
		}
	}
	return out, nil
}

// InsertInteraction appends an interaction.
func (m *MemoryStore) InsertInteraction(ctx context.Context, in *models.Interaction) error {
	if err := prepareInteraction(in); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	m.interactions = append(m.interactions, *in)
	m.users[in.UserID] = struct{}{}
	return nil
}

// GetUserIDs returns every user with at least one interaction, sorted.
func (m *MemoryStore) GetUserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// GetInteractions returns interactions newest first; userID "" means all users.
func (m *MemoryStore) GetInteractions(ctx context.Context, userID string) ([]models.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	var out []models.Interaction
	for _, in := range m.interactions {
		if userID == "" || in.UserID == userID {
			out = append(out, in)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// SaveRecommendationSnapshot overwrites the user's snapshot.
func (m *MemoryStore) SaveRecommendationSnapshot(ctx context.Context, snap *models.RecommendationSnapshot) error {
	if snap == nil || snap.UserID == "" {
		return errors.New("snapshot requires a user id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}

	cp := *snap
	cp.Items = slices.Clone(snap.Items)
	m.snapshots[snap.UserID] = cp
	return nil
}

// GetRecommendationSnapshot returns the user's last snapshot or ErrNotFound.
func (m *MemoryStore) GetRecommendationSnapshot(ctx context.Context, userID string) (*models.RecommendationSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	snap, ok := m.snapshots[userID]
	if !ok {
		return nil, ErrNotFound
	}
	snap.Items = slices.Clone(snap.Items)
	return &snap, nil
}

// ListSnapshotUsers returns the users that have a stored snapshot, sorted.
func (m *MemoryStore) ListSnapshotUsers(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(m.snapshots))
	for id := range m.snapshots {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
