// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package api

import (
	"time"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/store"
)

// ActivityRequest is the body of POST /api/v1/activity.
//
// The legacy product_id and action_type keys are accepted in place of
// item_id and action.
type ActivityRequest struct {
	UserID     string  `json:"user_id" validate:"required,identifier"`
	ItemID     string  `json:"item_id" validate:"required,identifier"`
	ProductID  string  `json:"product_id,omitempty" validate:"-"`
	Action     string  `json:"action" validate:"required,action"`
	ActionType string  `json:"action_type,omitempty" validate:"-"`
	Timestamp  string  `json:"timestamp,omitempty" validate:"omitempty,timestamp"`
	Category   string  `json:"category,omitempty" validate:"max=128"`
	Price      float64 `json:"price,omitempty" validate:"gte=0"`
}

// normalize folds the legacy keys into the canonical fields.
func (r *ActivityRequest) normalize() {
	if r.ItemID == "" {
		r.ItemID = r.ProductID
	}
	if r.Action == "" {
		r.Action = r.ActionType
	}
}

// interaction converts a validated request. A missing timestamp becomes now.
func (r *ActivityRequest) interaction(now time.Time) (*models.Interaction, error) {
	action, err := models.ParseAction(r.Action)
	if err != nil {
		return nil, err
	}

	ts := now.UTC()
	if r.Timestamp != "" {
		if ts, err = store.ParseTimestamp(r.Timestamp); err != nil {
			return nil, err
		}
	}

	return &models.Interaction{
		UserID:    r.UserID,
		ItemID:    r.ItemID,
		Action:    action,
		Timestamp: ts,
		Category:  r.Category,
		Price:     r.Price,
	}, nil
}

// userParams validates the {userID} path parameter.
type userParams struct {
	UserID string `json:"user_id" validate:"required,identifier"`
}

// limitParams validates recommendation list sizes.
type limitParams struct {
	Limit int `json:"limit" validate:"min=1"`
}

// evaluateParams validates the evaluation cutoff.
type evaluateParams struct {
	K int `json:"k" validate:"min=1,max=100"`
}

// streamingParams validates the replay speed.
type streamingParams struct {
	SpeedFactor int `json:"speed_factor" validate:"min=1,max=1000000"`
}
