// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/marketlens/internal/models"
)

var (
	// ErrInsufficientData is returned by Train when there is nothing to fit
	// (empty catalog, no users, no interactions, or a rank below one).
	ErrInsufficientData = errors.New("insufficient data for training")

	// ErrTrainingInProgress is returned when Train is called on an algorithm
	// that is already training.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// Algorithm is a single recommendation engine.
//
// Engines start untrained and only become trained through an explicit call
// to Train. Recommend on an untrained engine returns an empty list. A failed
// Train leaves the previously trained state (if any) in service.
type Algorithm interface {
	// Name returns the algorithm identifier ("content", "collaborative").
	Name() string

	// Train rebuilds the model from the data source.
	Train(ctx context.Context) error

	// Recommend returns up to k unseen items for the user, best first, with
	// scores in [0, 1]. Unknown users and empty histories yield an empty list.
	Recommend(ctx context.Context, userID string, k int) ([]models.ScoredCandidate, error)

	// IsTrained returns whether the model has been trained.
	IsTrained() bool

	// Version returns the model version (incremented on each successful train).
	Version() int

	// LastTrainedAt returns when the model was last trained.
	LastTrainedAt() time.Time
}

// AlgorithmStatus describes one engine.
type AlgorithmStatus struct {
	Name          string    `json:"name"`
	Trained       bool      `json:"trained"`
	Version       int       `json:"version"`
	LastTrainedAt time.Time `json:"last_trained_at,omitempty"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether a training cycle is in progress.
	IsTraining bool `json:"is_training"`

	// Trained is true once both engines have trained successfully at least once.
	Trained bool `json:"trained"`

	// LastTrainedAt is when the last successful cycle completed.
	LastTrainedAt time.Time `json:"last_trained_at,omitempty"`

	// LastTrainingDurationMS is how long the last cycle took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// ModelVersion counts successful training cycles.
	ModelVersion int `json:"model_version"`

	// Algorithms reports each engine.
	Algorithms []AlgorithmStatus `json:"algorithms"`
}
