// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package algorithms

import (
	"math"
	"regexp"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/recommend"
)

// Price-bucket phrases appended to each item document.
const (
	budgetPhrase  = "affordable cheap budget"
	midPhrase     = "mid-range moderate standard"
	premiumPhrase = "premium expensive luxury"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// priceBucket returns the phrase describing the item's price band.
func priceBucket(price float64) string {
	switch {
	case price < 50:
		return budgetPhrase
	case price < 200:
		return midPhrase
	default:
		return premiumPhrase
	}
}

// itemDocument builds the text that is vectorized for an item. The price
// phrase appears twice so it outweighs a single descriptive term.
func itemDocument(item *models.Item) string {
	bucket := priceBucket(item.Price)
	return strings.Join([]string{item.Category, item.Brand, item.Description, bucket, bucket}, " ")
}

// tokenize lower-cases doc and returns its non-stop-word tokens.
func tokenize(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}

// sparseRow is one item's feature vector: parallel index/value slices,
// indices ascending.
type sparseRow struct {
	idx []int
	val []float64
}

// dot returns the inner product of the row with a dense vector.
func (r sparseRow) dot(dense []float64) float64 {
	var s float64
	for i, j := range r.idx {
		s += r.val[i] * dense[j]
	}
	return s
}

// FeatureIndex maps catalog items to L2-normalized TF-IDF vectors.
//
// IDF uses the smoothed form ln((1+n)/(1+df)) + 1, term frequency is the raw
// count, and the vocabulary is ordered alphabetically.
type FeatureIndex struct {
	itemIDs   []string
	itemIndex map[string]int
	terms     []string
	termIndex map[string]int
	idf       []float64
	rows      []sparseRow
}

// BuildFeatureIndex vectorizes the catalog. An empty catalog returns
// recommend.ErrInsufficientData.
func BuildFeatureIndex(items []models.Item) (*FeatureIndex, error) {
	if len(items) == 0 {
		return nil, recommend.ErrInsufficientData
	}

	docs := make([][]string, len(items))
	df := make(map[string]int)
	for i := range items {
		docs[i] = tokenize(itemDocument(&items[i]))
		seen := make(map[string]struct{}, len(docs[i]))
		for _, tok := range docs[i] {
			if _, ok := seen[tok]; !ok {
				seen[tok] = struct{}{}
				df[tok]++
			}
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	slices.Sort(terms)

	fi := &FeatureIndex{
		itemIDs:   make([]string, len(items)),
		itemIndex: make(map[string]int, len(items)),
		terms:     terms,
		termIndex: make(map[string]int, len(terms)),
		idf:       make([]float64, len(terms)),
		rows:      make([]sparseRow, len(items)),
	}

	n := float64(len(items))
	for j, t := range terms {
		fi.termIndex[t] = j
		fi.idf[j] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	for i := range items {
		fi.itemIDs[i] = items[i].ItemID
		fi.itemIndex[items[i].ItemID] = i
		fi.rows[i] = fi.vectorize(docs[i])
	}
	return fi, nil
}

// vectorize turns tokens into a normalized sparse TF-IDF row.
func (f *FeatureIndex) vectorize(tokens []string) sparseRow {
	counts := make(map[int]float64, len(tokens))
	for _, tok := range tokens {
		counts[f.termIndex[tok]]++
	}

	row := sparseRow{idx: make([]int, 0, len(counts))}
	for j := range counts {
		row.idx = append(row.idx, j)
	}
	slices.Sort(row.idx)

	row.val = make([]float64, len(row.idx))
	for i, j := range row.idx {
		row.val[i] = counts[j] * f.idf[j]
	}
	if norm := floats.Norm(row.val, 2); norm > 0 {
		floats.Scale(1/norm, row.val)
	}
	return row
}

// Len returns the number of indexed items.
func (f *FeatureIndex) Len() int { return len(f.itemIDs) }

// NumFeatures returns the vocabulary size.
func (f *FeatureIndex) NumFeatures() int { return len(f.terms) }

// ItemID returns the item at row i.
func (f *FeatureIndex) ItemID(i int) string { return f.itemIDs[i] }

// Index returns the row of itemID.
func (f *FeatureIndex) Index(itemID string) (int, bool) {
	i, ok := f.itemIndex[itemID]
	return i, ok
}

// Terms returns the vocabulary in feature order.
func (f *FeatureIndex) Terms() []string { return slices.Clone(f.terms) }

// Vector returns a dense copy of item i's feature vector.
func (f *FeatureIndex) Vector(i int) []float64 {
	v := make([]float64, len(f.terms))
	r := f.rows[i]
	for k, j := range r.idx {
		v[j] = r.val[k]
	}
	return v
}

// Profile returns the weighted mean of the indexed items' vectors. Items
// absent from the index are ignored. ok is false when no weighted item is
// indexed or the weights sum to zero.
func (f *FeatureIndex) Profile(weights map[string]float64) (profile []float64, ok bool) {
	profile = make([]float64, len(f.terms))
	var total float64
	for id, w := range weights {
		i, indexed := f.itemIndex[id]
		if !indexed {
			continue
		}
		r := f.rows[i]
		for k, j := range r.idx {
			profile[j] += w * r.val[k]
		}
		total += w
	}
	if total == 0 {
		return nil, false
	}
	floats.Scale(1/total, profile)
	return profile, true
}

// Cosine returns the cosine similarity between item i and a dense vector
// with the given precomputed L2 norm.
func (f *FeatureIndex) Cosine(i int, dense []float64, denseNorm float64) float64 {
	if denseNorm == 0 {
		return 0
	}
	r := f.rows[i]
	rowNorm := floats.Norm(r.val, 2)
	if rowNorm == 0 {
		return 0
	}
	return r.dot(dense) / (rowNorm * denseNorm)
}
