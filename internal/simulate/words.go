// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

package simulate

var productKinds = []string{"Device", "Product", "Item"}

var brandStems = []string{
	"Acme", "Apex", "Brightline", "Cobalt", "Crescent", "Evergreen", "Falcon",
	"Granite", "Harbor", "Ironwood", "Juniper", "Keystone", "Lumen", "Meridian",
	"Northwind", "Orchid", "Pinnacle", "Quarry", "Redwood", "Summit", "Tidewater",
	"Vantage", "Willow", "Zephyr",
}

var brandSuffixes = []string{
	"Industries", "Group", "Labs", "Works", "Supply", "Goods", "Co", "Brands",
}

var nouns = []string{
	"anchor", "beacon", "canvas", "drift", "ember", "fable", "glide", "harvest",
	"island", "jolt", "kernel", "lantern", "meadow", "nimbus", "orbit", "prism",
	"quill", "ripple", "sierra", "timber", "uplift", "vertex", "wander", "zenith",
}

var descriptionWords = []string{
	"durable", "compact", "lightweight", "premium", "classic", "modern", "design",
	"quality", "everyday", "comfort", "portable", "reliable", "performance",
	"material", "finish", "crafted", "versatile", "simple", "powerful", "smart",
	"efficient", "sleek", "natural", "soft", "bright", "easy", "clean", "fresh",
	"wireless", "stainless", "organic", "handmade", "ergonomic", "adjustable",
	"waterproof", "rechargeable", "travel", "home", "outdoor", "kitchen", "office",
}
