// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package recommend

import (
	"math"
	"testing"

	"github.com/tomtom215/marketlens/internal/models"
)

func candidates(pairs ...any) []models.ScoredCandidate {
	out := make([]models.ScoredCandidate, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.ScoredCandidate{ItemID: pairs[i].(string), Score: pairs[i+1].(float64)})
	}
	return out
}

func TestNormalizeScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []models.ScoredCandidate
		want map[string]float64
	}{
		{"empty", nil, map[string]float64{}},
		{"range", candidates("a", 0.2, "b", 0.6, "c", 1.0), map[string]float64{"a": 0, "b": 0.5, "c": 1}},
		{"equal positive", candidates("a", 0.4, "b", 0.4), map[string]float64{"a": 1, "b": 1}},
		{"equal zero", candidates("a", 0.0, "b", 0.0), map[string]float64{"a": 0, "b": 0}},
		{"single", candidates("a", 0.7), map[string]float64{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NormalizeScores(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("NormalizeScores() = %v, want %v", got, tt.want)
			}
			for id, w := range tt.want {
				if math.Abs(got[id]-w) > 1e-12 {
					t.Errorf("score[%s] = %v, want %v", id, got[id], w)
				}
			}
		})
	}
}

func TestBlender_Blend(t *testing.T) {
	t.Parallel()

	b := NewBlender(DefaultConfig().Weights)
	content := candidates("A", 0.9, "B", 0.6, "C", 0.3)
	collab := candidates("B", 0.8, "D", 0.4, "E", 0.2)

	got := b.Blend(content, collab, 10)
	want := []struct {
		id          string
		score       float64
		attribution models.Attribution
	}{
		{"B", 0.6*0.5 + 0.4, models.AttributionHybrid},
		{"A", 0.6, models.AttributionContent},
		{"D", 0.4 * (0.2 / 0.6), models.AttributionCollaborative},
		{"C", 0, models.AttributionContent},
		{"E", 0, models.AttributionCollaborative},
	}

	if len(got) != len(want) {
		t.Fatalf("Blend() returned %d items: %v", len(got), got)
	}
	for i, w := range want {
		if got[i].ItemID != w.id {
			t.Errorf("position %d = %s, want %s", i, got[i].ItemID, w.id)
			continue
		}
		if math.Abs(got[i].Score-w.score) > 1e-9 {
			t.Errorf("%s score = %v, want %v", w.id, got[i].Score, w.score)
		}
		if got[i].Attribution != w.attribution {
			t.Errorf("%s attribution = %s, want %s", w.id, got[i].Attribution, w.attribution)
		}
	}
}

func TestBlender_AttributionFollowsMembership(t *testing.T) {
	t.Parallel()

	b := NewBlender(DefaultConfig().Weights)

	tests := []struct {
		name    string
		content []models.ScoredCandidate
		collab  []models.ScoredCandidate
		want    map[string]models.Attribution
	}{
		{
			name:    "content only, lowest item",
			content: candidates("A", 1.0, "C", 0.3),
			want:    map[string]models.Attribution{"A": models.AttributionContent, "C": models.AttributionContent},
		},
		{
			name:   "collaborative only, lowest item",
			collab: candidates("X", 0.9, "Y", 0.1),
			want:   map[string]models.Attribution{"X": models.AttributionCollaborative, "Y": models.AttributionCollaborative},
		},
		{
			name:    "minimum of both lists",
			content: candidates("A", 1.0, "B", 0.3),
			collab:  candidates("A", 0.9, "B", 0.1),
			want:    map[string]models.Attribution{"A": models.AttributionHybrid, "B": models.AttributionHybrid},
		},
		{
			name:    "minimum of one list",
			content: candidates("A", 1.0, "B", 0.3),
			collab:  candidates("B", 0.9, "Z", 0.1),
			want: map[string]models.Attribution{
				"A": models.AttributionContent,
				"B": models.AttributionHybrid,
				"Z": models.AttributionCollaborative,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := b.Blend(tt.content, tt.collab, 10)
			if len(got) != len(tt.want) {
				t.Fatalf("Blend() = %v, want %d items", got, len(tt.want))
			}
			for _, c := range got {
				if c.Attribution != tt.want[c.ItemID] {
					t.Errorf("%s attribution = %s, want %s", c.ItemID, c.Attribution, tt.want[c.ItemID])
				}
			}
		})
	}

	// Scores are unchanged by the attribution rule: B sits at the bottom of both lists.
	got := b.Blend(candidates("A", 1.0, "B", 0.3), candidates("A", 0.9, "B", 0.1), 10)
	if got[0].ItemID != "A" || math.Abs(got[0].Score-1) > 1e-12 || got[1].Score != 0 {
		t.Errorf("Blend() scores = %v", got)
	}
}

func TestBlender_Truncates(t *testing.T) {
	t.Parallel()

	b := NewBlender(DefaultConfig().Weights)
	got := b.Blend(candidates("A", 0.9, "B", 0.5), candidates("C", 0.8, "D", 0.4), 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// A: 0.6, C: 0.4, B: 0, D: 0.
	if got[0].ItemID != "A" || got[1].ItemID != "C" {
		t.Errorf("Blend() = %v", got)
	}

	if out := b.Blend(candidates("A", 0.9), nil, 0); out == nil || len(out) != 0 {
		t.Errorf("k=0 should give an empty non-nil slice, got %v", out)
	}
}

func TestBlender_OneSideEmpty(t *testing.T) {
	t.Parallel()

	b := NewBlender(DefaultConfig().Weights)

	onlyCollab := b.Blend(nil, candidates("X", 0.5, "Y", 0.5), 5)
	if len(onlyCollab) != 2 {
		t.Fatalf("len = %d, want 2", len(onlyCollab))
	}
	for _, c := range onlyCollab {
		if c.Attribution != models.AttributionCollaborative || math.Abs(c.Score-0.4) > 1e-12 {
			t.Errorf("collab-only item = %+v", c)
		}
	}
	if onlyCollab[0].ItemID != "X" {
		t.Error("ties must be broken by item ID")
	}

	onlyContent := b.Blend(candidates("P", 1.0), nil, 5)
	if len(onlyContent) != 1 || onlyContent[0].Attribution != models.AttributionContent {
		t.Errorf("content-only blend = %v", onlyContent)
	}

	if both := b.Blend(nil, nil, 5); len(both) != 0 {
		t.Errorf("empty inputs gave %v", both)
	}
}

func TestBlender_ScoresBounded(t *testing.T) {
	t.Parallel()

	b := NewBlender(DefaultConfig().Weights)
	got := b.Blend(candidates("A", 1.0, "B", 0.3), candidates("A", 0.9, "B", 0.1), 5)
	for _, c := range got {
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("score %v outside [0, 1]", c.Score)
		}
	}
	if got[0].ItemID != "A" || math.Abs(got[0].Score-1) > 1e-12 || got[0].Attribution != models.AttributionHybrid {
		t.Errorf("top = %+v, want A with score 1 attributed hybrid", got[0])
	}
}
