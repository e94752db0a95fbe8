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

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marketlens/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	itemKeyPrefix        = "item:"
	interactionKeyPrefix = "interaction:"
	userKeyPrefix        = "user:"
	snapshotKeyPrefix    = "snapshot:"
)

// BadgerConfig configures the embedded store.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM (tests, demos).
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

// BadgerStore implements Repository on BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

var _ Repository = (*BadgerStore)(nil)

// OpenBadger opens (or creates) a BadgerDB-backed store.
//
//nolint:gocritic // hugeParam: zerolog.Logger is designed to be passed by value
func OpenBadger(cfg BadgerConfig, logger zerolog.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger path is required unless in-memory")
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}
	opts.Logger = nil // zerolog handles logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "badger-store").Logger(),
	}
	s.logger.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("Store opened")
	return s, nil
}

// NewBadgerStore wraps an already-open database.
//
//nolint:gocritic // hugeParam: zerolog.Logger is designed to be passed by value
func NewBadgerStore(db *badger.DB, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{db: db, logger: logger.With().Str("component", "badger-store").Logger()}
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Ping fails once the database is closed.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return ctx.Err()
}

// interactionKey orders a user's interactions by timestamp within the
// user's prefix. The ID suffix keeps same-instant events distinct.
func interactionKey(in *models.Interaction) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", interactionKeyPrefix, in.UserID, in.Timestamp.UnixNano(), in.ID))
}

// UpsertItem inserts or replaces a catalog item.
func (s *BadgerStore) UpsertItem(ctx context.Context, item *models.Item) (err error) {
	defer observe("upsert_item", time.Now(), &err)

	if item == nil || item.ItemID == "" {
		return ErrInvalidItem
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(itemKeyPrefix+item.ItemID), data)
	})
}

// GetAllItems returns the catalog ordered by item ID.
func (s *BadgerStore) GetAllItems(ctx context.Context) (items []models.Item, err error) {
	defer observe("get_all_items", time.Now(), &err)

	err = s.scan(ctx, itemKeyPrefix, func(val []byte) error {
		var item models.Item
		if err := json.Unmarshal(val, &item); err != nil {
			return fmt.Errorf("unmarshal item: %w", err)
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

// GetItemDetails returns details for the requested items that exist.
func (s *BadgerStore) GetItemDetails(ctx context.Context, itemIDs []string) (details map[string]models.ItemDetails, err error) {
	defer observe("get_item_details", time.Now(), &err)

	details = make(map[string]models.ItemDetails, len(itemIDs))
	if len(itemIDs) == 0 {
		return details, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range itemIDs {
			entry, err := txn.Get([]byte(itemKeyPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get item %s: %w", id, err)
			}
			var item models.Item
			if err := entry.Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				return fmt.Errorf("unmarshal item %s: %w", id, err)
			}
			details[id] = item.Details()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// InsertInteraction appends an interaction and registers its user.
func (s *BadgerStore) InsertInteraction(ctx context.Context, in *models.Interaction) (err error) {
	defer observe("insert_interaction", time.Now(), &err)

	if err := prepareInteraction(in); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(interactionKey(in), data); err != nil {
			return fmt.Errorf("set interaction: %w", err)
		}
		if err := txn.Set([]byte(userKeyPrefix+in.UserID), nil); err != nil {
			return fmt.Errorf("set user marker: %w", err)
		}
		return nil
	})
}

// GetUserIDs returns every user with at least one interaction, sorted.
func (s *BadgerStore) GetUserIDs(ctx context.Context) (ids []string, err error) {
	defer observe("get_user_ids", time.Now(), &err)
	return s.keySuffixes(ctx, userKeyPrefix)
}

// GetInteractions returns interactions newest first; userID "" means all users.
func (s *BadgerStore) GetInteractions(ctx context.Context, userID string) (ins []models.Interaction, err error) {
	defer observe("get_interactions", time.Now(), &err)

	prefix := interactionKeyPrefix
	if userID != "" {
		prefix += userID + ":"
	}

	err = s.scan(ctx, prefix, func(val []byte) error {
		var in models.Interaction
		if err := json.Unmarshal(val, &in); err != nil {
			return fmt.Errorf("unmarshal interaction: %w", err)
		}
		// A user ID containing ':' shares a key prefix with shorter IDs.
		if userID != "" && in.UserID != userID {
			return nil
		}
		ins = append(ins, in)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(ins)
	return ins, nil
}

// SaveRecommendationSnapshot overwrites the user's snapshot.
func (s *BadgerStore) SaveRecommendationSnapshot(ctx context.Context, snap *models.RecommendationSnapshot) (err error) {
	defer observe("save_snapshot", time.Now(), &err)

	if snap == nil || snap.UserID == "" {
		return errors.New("snapshot requires a user id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKeyPrefix+snap.UserID), data)
	})
}

// GetRecommendationSnapshot returns the user's last snapshot or ErrNotFound.
func (s *BadgerStore) GetRecommendationSnapshot(ctx context.Context, userID string) (snap *models.RecommendationSnapshot, err error) {
	defer observe("get_snapshot", time.Now(), &err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out models.RecommendationSnapshot
	err = s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(snapshotKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSnapshotUsers returns the users that have a stored snapshot, sorted.
func (s *BadgerStore) ListSnapshotUsers(ctx context.Context) (ids []string, err error) {
	defer observe("list_snapshot_users", time.Now(), &err)
	return s.keySuffixes(ctx, snapshotKeyPrefix)
}

// scan calls fn with every value under prefix, in key order.
func (s *BadgerStore) scan(ctx context.Context, prefix string, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

// keySuffixes lists the key remainders under prefix without reading values.
func (s *BadgerStore) keySuffixes(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			out = append(out, string(it.Item().Key()[len(p):]))
		}
		return nil
	})
	return out, err
}
