// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package store

import (
	"context"
	"time"

	"github.com/tomtom215/marketlens/internal/cache"
	"github.com/tomtom215/marketlens/internal/metrics"
	"github.com/tomtom215/marketlens/internal/models"
)

// DetailsCacheConfig sizes the item details cache.
type DetailsCacheConfig struct {
	// Capacity is the maximum number of cached items; 0 disables the cache.
	Capacity int
	TTL      time.Duration
}

// CachedStore serves GetItemDetails from an LRU cache in front of an inner
// Repository. UpsertItem invalidates the written item, so a cached entry
// is never older than the last write made through this store.
type CachedStore struct {
	Repository
	details *cache.LRU[models.ItemDetails]
}

// NewCachedStore wraps inner. A zero capacity returns inner unchanged.
func NewCachedStore(inner Repository, cfg DetailsCacheConfig) Repository {
	if cfg.Capacity <= 0 {
		return inner
	}
	return &CachedStore{
		Repository: inner,
		details:    cache.NewLRU[models.ItemDetails](cfg.Capacity, cfg.TTL),
	}
}

// GetItemDetails returns cached details and loads the rest from the inner
// store. Unknown IDs are not cached and stay absent from the result.
func (c *CachedStore) GetItemDetails(ctx context.Context, itemIDs []string) (map[string]models.ItemDetails, error) {
	out := make(map[string]models.ItemDetails, len(itemIDs))
	var missing []string
	for _, id := range itemIDs {
		if d, ok := c.details.Get(id); ok {
			out[id] = d
			continue
		}
		missing = append(missing, id)
	}
	metrics.RecordDetailsCache(len(itemIDs)-len(missing), len(missing))

	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := c.Repository.GetItemDetails(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, d := range loaded {
		c.details.Add(id, d)
		out[id] = d
	}
	return out, nil
}

// UpsertItem writes through and drops the cached entry.
func (c *CachedStore) UpsertItem(ctx context.Context, item *models.Item) error {
	err := c.Repository.UpsertItem(ctx, item)
	if item != nil {
		c.details.Remove(item.ItemID)
	}
	return err
}
