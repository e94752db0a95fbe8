// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package models defines the data types shared by the store, the
// recommendation engines, the replayer, and the HTTP API.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Item is a catalog entry. Only Category, Brand, Price and Description feed
// the content features; Name is used for formatted output.
type Item struct {
	ItemID      string  `json:"item_id" validate:"required"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Available   bool    `json:"available"`
}

// ItemDetails is the subset of Item joined into formatted recommendation output.
type ItemDetails struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Details projects an Item onto ItemDetails.
func (i *Item) Details() ItemDetails {
	return ItemDetails{ItemID: i.ItemID, Name: i.Name, Category: i.Category, Price: i.Price}
}

// Action is the kind of user-item interaction.
type Action string

const (
	ActionView     Action = "view"
	ActionPurchase Action = "purchase"
)

// ParseAction accepts "view" and "purchase" in any case. "buy" is accepted
// as an alias of purchase because activity logs exported by the generator
// and older collectors use it.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return ActionView, nil
	case "purchase", "buy":
		return ActionPurchase, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionView || a == ActionPurchase
}

// Interaction is one user-item event.
type Interaction struct {
	ID         string     `json:"id,omitempty"`
	UserID     string     `json:"user_id"`
	ItemID     string     `json:"item_id"`
	Action     Action     `json:"action"`
	Timestamp  time.Time  `json:"timestamp"`
	Category   string     `json:"category,omitempty"`
	Price      float64    `json:"price,omitempty"`
	IngestedAt *time.Time `json:"ingested_at,omitempty"`
}
