// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

// Package simulate generates a synthetic product catalog and user activity
// log with realistic preference structure.
//
// Every user prefers a few categories and brands and has a price
// sensitivity. Each simulated day a user performs a Poisson-distributed
// number of actions; 70% of them target preferred products, and the chance
// that an action is a purchase falls with price and sensitivity. The output
// is fully determined by the seed.
package simulate

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tomtom215/marketlens/internal/models"
	"github.com/tomtom215/marketlens/internal/store"
)

// Output file names, shared with the server's data configuration.
const (
	CatalogFile  = "product_catalog.json"
	ActivityFile = "user_activity.json"
)

// DefaultCategories is the category list used when Config.Categories is empty.
var DefaultCategories = []string{
	"Electronics", "Clothing", "Home & Kitchen", "Books", "Sports",
	"Beauty", "Toys", "Grocery", "Automotive", "Health",
}

const (
	minPrice          = 9.99
	maxPrice          = 999.99
	availableRate     = 0.75
	preferredRate     = 0.7
	baseBuyRate       = 0.2
	preferenceCount   = 3
	firstActiveHour   = 8
	lastActiveHour    = 22
	minSensitivity    = 0.1
	maxSensitivity    = 0.9
	priceSensitivityK = 1000.0
)

// Config controls the size and shape of the generated data.
type Config struct {
	Users            int
	Products         int
	Brands           int
	Days             int
	AvgActionsPerDay float64
	Categories       []string
	Seed             uint64
	// End is the last simulated day. Zero means today (UTC).
	End time.Time
}

// DefaultConfig returns the standard simulation size.
func DefaultConfig() Config {
	return Config{
		Users:            100,
		Products:         500,
		Brands:           20,
		Days:             30,
		AvgActionsPerDay: 5,
		Categories:       DefaultCategories,
		Seed:             42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch {
	case c.Users < 1:
		return fmt.Errorf("users must be positive, got %d", c.Users)
	case c.Products < 1:
		return fmt.Errorf("products must be positive, got %d", c.Products)
	case c.Brands < 1:
		return fmt.Errorf("brands must be positive, got %d", c.Brands)
	case c.Days < 1:
		return fmt.Errorf("days must be positive, got %d", c.Days)
	case c.AvgActionsPerDay <= 0:
		return fmt.Errorf("avg_actions_per_day must be positive, got %f", c.AvgActionsPerDay)
	}
	return nil
}

// Dataset is a generated catalog plus activity log.
type Dataset struct {
	Items        []models.Item
	Interactions []models.Interaction
}

type preferences struct {
	categories  map[string]struct{}
	brands      map[string]struct{}
	sensitivity float64
}

// Generator produces a Dataset from a Config.
type Generator struct {
	cfg     Config
	src     *rand.ChaCha8
	rng     *rand.Rand
	actions distuv.Poisson
	brands  []string
	users   []string
}

// New creates a generator. Invalid sizes are replaced by defaults.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.Users < 1 {
		cfg.Users = def.Users
	}
	if cfg.Products < 1 {
		cfg.Products = def.Products
	}
	if cfg.Brands < 1 {
		cfg.Brands = def.Brands
	}
	if cfg.Days < 1 {
		cfg.Days = def.Days
	}
	if cfg.AvgActionsPerDay <= 0 {
		cfg.AvgActionsPerDay = def.AvgActionsPerDay
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories
	}
	if cfg.End.IsZero() {
		cfg.End = time.Now().UTC()
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:8], cfg.Seed)
	src := rand.NewChaCha8(seed)

	g := &Generator{
		cfg:     cfg,
		src:     src,
		rng:     rand.New(src),
		actions: distuv.Poisson{Lambda: cfg.AvgActionsPerDay, Src: src},
	}
	g.brands = g.brandNames(cfg.Brands)
	g.users = make([]string, cfg.Users)
	for i := range g.users {
		g.users[i] = g.id("U")
	}
	return g
}

// Generate builds the catalog and then the activity log.
func (g *Generator) Generate() Dataset {
	items := g.Products()
	return Dataset{Items: items, Interactions: g.Activities(items)}
}

// Users returns the generated user IDs.
func (g *Generator) Users() []string {
	return slices.Clone(g.users)
}

// Products generates the catalog.
func (g *Generator) Products() []models.Item {
	items := make([]models.Item, g.cfg.Products)
	for i := range items {
		brand := g.pick(g.brands)
		items[i] = models.Item{
			ItemID:      g.id("P"),
			Name:        fmt.Sprintf("%s %s %s", capitalize(g.pick(nouns)), strings.Fields(brand)[0], g.pick(productKinds)),
			Category:    g.pick(g.cfg.Categories),
			Brand:       brand,
			Price:       math.Round((minPrice+g.rng.Float64()*(maxPrice-minPrice))*100) / 100,
			Description: g.paragraph(3),
			Available:   g.rng.Float64() < availableRate,
		}
	}
	return items
}

// Activities generates the interaction log over items, sorted by timestamp.
func (g *Generator) Activities(items []models.Item) []models.Interaction {
	if len(items) == 0 {
		return []models.Interaction{}
	}

	prefs := make(map[string]preferences, len(g.users))
	for _, u := range g.users {
		prefs[u] = preferences{
			categories:  toSet(g.sample(g.cfg.Categories, preferenceCount)),
			brands:      toSet(g.sample(g.brands, preferenceCount)),
			sensitivity: minSensitivity + g.rng.Float64()*(maxSensitivity-minSensitivity),
		}
	}

	end := g.cfg.End.UTC()
	start := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -g.cfg.Days)

	var out []models.Interaction
	for day := 0; day < g.cfg.Days; day++ {
		date := start.AddDate(0, 0, day)
		for _, u := range g.users {
			p := prefs[u]
			preferred := preferredItems(items, p)
			n := int(g.actions.Rand())

			for range n {
				item := g.pickItem(items)
				if g.rng.Float64() < preferredRate {
					item = g.pickItem(preferred)
				}

				buy := baseBuyRate * (1 - item.Price/priceSensitivityK*p.sensitivity)
				action := models.ActionView
				if g.rng.Float64() < buy {
					action = models.ActionPurchase
				}

				ts := date.Add(time.Duration(firstActiveHour+g.rng.IntN(lastActiveHour-firstActiveHour+1))*time.Hour +
					time.Duration(g.rng.IntN(60))*time.Minute +
					time.Duration(g.rng.IntN(60))*time.Second)

				out = append(out, models.Interaction{
					UserID:    u,
					ItemID:    item.ItemID,
					Action:    action,
					Timestamp: ts,
					Category:  item.Category,
					Price:     item.Price,
				})
			}
		}
	}

	slices.SortStableFunc(out, func(a, b models.Interaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// WriteFiles writes the dataset to dir as CatalogFile and ActivityFile.
func WriteFiles(dir string, ds Dataset) (catalogPath, activityPath string, err error) {
	catalogPath = filepath.Join(dir, CatalogFile)
	activityPath = filepath.Join(dir, ActivityFile)
	if err := store.WriteJSONFile(catalogPath, ds.Items); err != nil {
		return "", "", err
	}
	if err := store.WriteJSONFile(activityPath, ds.Interactions); err != nil {
		return "", "", err
	}
	return catalogPath, activityPath, nil
}

func preferredItems(items []models.Item, p preferences) []models.Item {
	var out []models.Item
	for i := range items {
		_, cat := p.categories[items[i].Category]
		_, brand := p.brands[items[i].Brand]
		if cat || brand {
			out = append(out, items[i])
		}
	}
	if len(out) == 0 {
		return items
	}
	return out
}

// id returns prefix plus the first eight hex digits of a seeded UUID.
func (g *Generator) id(prefix string) string {
	u, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 reads never fail.
		panic(err)
	}
	return prefix + u.String()[:8]
}

func (g *Generator) pick(xs []string) string {
	return xs[g.rng.IntN(len(xs))]
}

func (g *Generator) pickItem(items []models.Item) models.Item {
	return items[g.rng.IntN(len(items))]
}

// sample returns up to n distinct elements of xs.
func (g *Generator) sample(xs []string, n int) []string {
	perm := g.rng.Perm(len(xs))
	n = min(n, len(xs))
	out := make([]string, n)
	for i := range out {
		out[i] = xs[perm[i]]
	}
	return out
}

func (g *Generator) brandNames(n int) []string {
	seen := make(map[string]struct{}, n)
	names := make([]string, 0, n)
	for len(names) < n {
		name := fmt.Sprintf("%s %s", g.pick(brandStems), g.pick(brandSuffixes))
		if _, dup := seen[name]; dup && len(seen) < len(brandStems)*len(brandSuffixes) {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func (g *Generator) paragraph(sentences int) string {
	parts := make([]string, sentences)
	for i := range parts {
		words := make([]string, 6+g.rng.IntN(6))
		for j := range words {
			words[j] = g.pick(descriptionWords)
		}
		parts[i] = capitalize(strings.Join(words, " ")) + "."
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func toSet(xs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		set[x] = struct{}{}
	}
	return set
}
