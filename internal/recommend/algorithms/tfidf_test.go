// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package algorithms

import (
	"errors"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/recommend"
)

func TestPriceBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price float64
		want  string
	}{
		{0, budgetPhrase},
		{49.99, budgetPhrase},
		{50, midPhrase},
		{199.99, midPhrase},
		{200, premiumPhrase},
		{999.99, premiumPhrase},
	}
	for _, tt := range tests {
		if got := priceBucket(tt.price); got != tt.want {
			t.Errorf("priceBucket(%v) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	got := tokenize("The Wireless speaker, with a 2x BASS boost and a mid-range driver")
	want := []string{"wireless", "speaker", "2x", "bass", "boost", "mid", "range", "driver"}
	if !slices.Equal(got, want) {
		t.Errorf("tokenize() = %v, want %v", got, want)
	}
}

func TestBuildFeatureIndex_Empty(t *testing.T) {
	t.Parallel()

	if _, err := BuildFeatureIndex(nil); !errors.Is(err, recommend.ErrInsufficientData) {
		t.Errorf("BuildFeatureIndex(nil) error = %v, want ErrInsufficientData", err)
	}
}

func TestBuildFeatureIndex(t *testing.T) {
	t.Parallel()

	items := []models.Item{
		{ItemID: "P1", Category: "Books", Brand: "Acme", Price: 10, Description: "paperback novel"},
		{ItemID: "P2", Category: "Books", Brand: "Zenith", Price: 500, Description: "signed novel"},
	}
	fi, err := BuildFeatureIndex(items)
	if err != nil {
		t.Fatalf("BuildFeatureIndex() error = %v", err)
	}

	if fi.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", fi.Len())
	}
	for i := 0; i < fi.Len(); i++ {
		idx, ok := fi.Index(fi.ItemID(i))
		if !ok || idx != i {
			t.Errorf("Index(ItemID(%d)) = %d, %v", i, idx, ok)
		}
		if n := floats.Norm(fi.Vector(i), 2); math.Abs(n-1) > 1e-9 {
			t.Errorf("row %d norm = %v, want 1", i, n)
		}
	}

	terms := fi.Terms()
	if !slices.IsSorted(terms) {
		t.Errorf("vocabulary not sorted: %v", terms)
	}

	// "books" and "novel" occur in every document: idf = ln(3/3) + 1 = 1.
	// "acme" occurs once: idf = ln(3/2) + 1.
	books := slices.Index(terms, "books")
	acme := slices.Index(terms, "acme")
	if books < 0 || acme < 0 {
		t.Fatalf("expected terms missing from %v", terms)
	}
	if math.Abs(fi.idf[books]-1) > 1e-12 {
		t.Errorf("idf(books) = %v, want 1", fi.idf[books])
	}
	if want := math.Log(1.5) + 1; math.Abs(fi.idf[acme]-want) > 1e-12 {
		t.Errorf("idf(acme) = %v, want %v", fi.idf[acme], want)
	}

	// "cheap" and "acme" share an idf, but the price phrase is counted twice.
	v := fi.Vector(0)
	cheap := slices.Index(terms, "cheap")
	if math.Abs(v[cheap]-2*v[acme]) > 1e-12 {
		t.Errorf("weight(cheap) = %v, want 2 * weight(acme) = %v", v[cheap], 2*v[acme])
	}
	if fi.Vector(1)[cheap] != 0 {
		t.Error("premium item should not carry the budget phrase")
	}
}

func TestFeatureIndex_Profile(t *testing.T) {
	t.Parallel()

	fi, err := BuildFeatureIndex(testCatalog())
	if err != nil {
		t.Fatalf("BuildFeatureIndex() error = %v", err)
	}

	if _, ok := fi.Profile(map[string]float64{"unknown": 3}); ok {
		t.Error("profile of unindexed items should not be ok")
	}

	p, ok := fi.Profile(map[string]float64{"K1": 3, "missing": 100})
	if !ok {
		t.Fatal("Profile() not ok")
	}
	k1, _ := fi.Index("K1")
	if !floats.EqualApprox(p, fi.Vector(k1), 1e-12) {
		t.Error("a single-item profile must equal that item's vector regardless of weight")
	}

	norm := floats.Norm(p, 2)
	if sim := fi.Cosine(k1, p, norm); math.Abs(sim-1) > 1e-9 {
		t.Errorf("Cosine(self) = %v, want 1", sim)
	}
	if fi.Cosine(k1, p, 0) != 0 {
		t.Error("Cosine with zero norm should be 0")
	}
}
