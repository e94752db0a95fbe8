// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marketlens/internal/models"
)

// Timestamp layouts accepted in activity files. Naive timestamps are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats found in activity files.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// catalogRecord accepts the legacy product_id and product_name keys.
type catalogRecord struct {
	models.Item
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
}

// activityRecord accepts item_id or product_id, action or action_type, and
// naive timestamps.
type activityRecord struct {
	ID         string        `json:"id"`
	UserID     string        `json:"user_id"`
	ItemID     string        `json:"item_id"`
	ProductID  string        `json:"product_id"`
	Action     models.Action `json:"action"`
	ActionType models.Action `json:"action_type"`
	Timestamp  string        `json:"timestamp"`
	Category   string        `json:"category"`
	Price      float64       `json:"price"`
}

// ReadCatalogFile reads a JSON array of items.
func ReadCatalogFile(path string) ([]models.Item, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var records []catalogRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", path, err)
	}

	items := make([]models.Item, 0, len(records))
	for i := range records {
		item := records[i].Item
		if item.ItemID == "" {
			item.ItemID = records[i].ProductID
		}
		if item.Name == "" {
			item.Name = records[i].ProductName
		}
		if item.ItemID == "" {
			return nil, fmt.Errorf("catalog entry %d: %w", i, ErrInvalidItem)
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadActivityFile reads a JSON array of interactions.
func ReadActivityFile(path string) ([]models.Interaction, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read activity file: %w", err)
	}

	var records []activityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode activity file %s: %w", path, err)
	}

	out := make([]models.Interaction, 0, len(records))
	for i := range records {
		r := &records[i]
		in := models.Interaction{
			ID:       r.ID,
			UserID:   r.UserID,
			ItemID:   r.ItemID,
			Action:   r.Action,
			Category: r.Category,
			Price:    r.Price,
		}
		if in.ItemID == "" {
			in.ItemID = r.ProductID
		}
		if in.Action == "" {
			in.Action = r.ActionType
		}
		if r.Timestamp != "" {
			ts, err := ParseTimestamp(r.Timestamp)
			if err != nil {
				return nil, fmt.Errorf("activity entry %d: %w", i, err)
			}
			in.Timestamp = ts
		}
		out = append(out, in)
	}
	return out, nil
}

// ItemWriter is the write side needed by ImportCatalog.
type ItemWriter interface {
	UpsertItem(ctx context.Context, item *models.Item) error
}

// ImportCatalogFile loads a catalog file into w and returns the number of
// items written.
func ImportCatalogFile(ctx context.Context, path string, w ItemWriter) (int, error) {
	items, err := ReadCatalogFile(path)
	if err != nil {
		return 0, err
	}
	for i := range items {
		if err := w.UpsertItem(ctx, &items[i]); err != nil {
			return i, fmt.Errorf("upsert item %s: %w", items[i].ItemID, err)
		}
	}
	return len(items), nil
}

// ImportActivityFile loads an activity file into w and returns the number
// of interactions written.
func ImportActivityFile(ctx context.Context, path string, w InteractionWriter) (int, error) {
	ins, err := ReadActivityFile(path)
	if err != nil {
		return 0, err
	}
	for i := range ins {
		if err := w.InsertInteraction(ctx, &ins[i]); err != nil {
			return i, fmt.Errorf("insert interaction %d: %w", i, err)
		}
	}
	return len(ins), nil
}

// WriteJSONFile writes v as indented JSON, creating parent directories.
func WriteJSONFile(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
