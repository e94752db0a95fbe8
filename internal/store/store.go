// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package store persists the catalog, the interaction log, and the latest
// recommendation snapshot per user.
//
// Two implementations of Repository are provided: BadgerStore (embedded,
// durable) and MemoryStore (tests and ephemeral deployments). BreakerStore
// wraps either one and fails writes fast while the backend is unhealthy.
//
// Reads never treat absence as an error: an unknown user has no
// interactions, and GetItemDetails simply omits unknown items. The only
// not-found error is GetRecommendationSnapshot's ErrNotFound.
package store

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/marketlens/internal/metrics"
	"github.com/tomtom215/marketlens/internal/models"
)

var (
	// ErrNotFound is returned when a requested snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInteraction is returned for interactions missing a user, an
	// item, or a known action.
	ErrInvalidInteraction = errors.New("invalid interaction")

	// ErrInvalidItem is returned for items without an ID.
	ErrInvalidItem = errors.New("invalid item")

	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("store closed")
)

// CatalogReader provides catalog access.
type CatalogReader interface {
	GetAllItems(ctx context.Context) ([]models.Item, error)
	GetItemDetails(ctx context.Context, itemIDs []string) (map[string]models.ItemDetails, error)
}

// InteractionReader provides interaction log access.
type InteractionReader interface {
	GetUserIDs(ctx context.Context) ([]string, error)
	// GetInteractions returns interactions newest first. An empty userID
	// returns every user's interactions.
	GetInteractions(ctx context.Context, userID string) ([]models.Interaction, error)
}

// InteractionWriter appends to the interaction log.
type InteractionWriter interface {
	InsertInteraction(ctx context.Context, in *models.Interaction) error
}

// SnapshotStore persists blended recommendation results.
type SnapshotStore interface {
	SaveRecommendationSnapshot(ctx context.Context, snap *models.RecommendationSnapshot) error
	GetRecommendationSnapshot(ctx context.Context, userID string) (*models.RecommendationSnapshot, error)
	ListSnapshotUsers(ctx context.Context) ([]string, error)
}

// Repository is the full persistence contract.
type Repository interface {
	CatalogReader
	InteractionReader
	InteractionWriter
	SnapshotStore
	UpsertItem(ctx context.Context, item *models.Item) error
	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error
	Close() error
}

// prepareInteraction validates in and fills the ID and Timestamp if empty.
func prepareInteraction(in *models.Interaction) error {
	if in == nil || strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.ItemID) == "" {
		return ErrInvalidInteraction
	}
	if !in.Action.Valid() {
		return ErrInvalidInteraction
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}
	return nil
}

// sortNewestFirst orders interactions by timestamp descending, ties by ID.
func sortNewestFirst(ins []models.Interaction) {
	slices.SortStableFunc(ins, func(a, b models.Interaction) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreOperation(op, time.Since(start), *err)
}
