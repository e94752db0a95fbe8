// Marketlens - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marketlens

/*
Package cache provides a generic, thread-safe LRU cache with TTL expiry.

The store package uses it to keep item details in front of the persistent
backend, since every formatted recommendation joins up to k catalog entries:

	details := cache.NewLRU[models.ItemDetails](10000, 5*time.Minute)
	details.Add(item.ItemID, item.Details())
	if d, ok := details.Get("P42"); ok {
	    ...
	}

Entries expire lazily on access; CleanupExpired sweeps them eagerly. Writers
invalidate with Remove.
*/
package cache
