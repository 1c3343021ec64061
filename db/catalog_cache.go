/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

const (
	catalogCacheSize = 64
	catalogCacheTTL  = 5 * time.Minute
	allItemsKey      = "*"
)

// catalogCache holds test item lists keyed by category, with allItemsKey for
// the full catalog. Every catalog write purges it.
var catalogCache = expirable.NewLRU[string, []clinical.TestItem](catalogCacheSize, nil, catalogCacheTTL)

func invalidateCatalog() {
	catalogCache.Purge()
}

// CachedTestItems returns the full catalog, reading through the cache.
func CachedTestItems(ctx context.Context) ([]clinical.TestItem, error) {
	if items, ok := catalogCache.Get(allItemsKey); ok {
		return slices.Clone(items), nil
	}

	items, err := ListTestItems(ctx)
	if err != nil {
		return nil, err
	}

	catalogCache.Add(allItemsKey, items)

	return slices.Clone(items), nil
}

// CachedTestItemsByCategory returns the catalog items of one category,
// reading through the cache.
func CachedTestItemsByCategory(ctx context.Context, category string) ([]clinical.TestItem, error) {
	if items, ok := catalogCache.Get(category); ok {
		return slices.Clone(items), nil
	}

	items, err := ListTestItemsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	catalogCache.Add(category, items)

	return slices.Clone(items), nil
}
