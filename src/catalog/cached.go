package catalog

import (
	"context"
	"time"

	"github.com/Quotient-Labs/quote-agent/src/cache"
)

// CachedSource wraps a Source and caches successful lookups. Misses are not
// cached, so a SKU added to the backing store becomes visible on the next
// lookup.
type CachedSource struct {
	Source Source
	Cache  *cache.LRUCache
}

// NewCachedSource creates a caching front for the given source.
func NewCachedSource(source Source, size int, ttl time.Duration) *CachedSource {
	return &CachedSource{
		Source: source,
		Cache:  cache.NewLRUCache(size, ttl),
	}
}

// Item checks the cache before hitting the backing source.
func (cs *CachedSource) Item(ctx context.Context, sku string) (Item, bool, error) {
	if val, ok := cs.Cache.Get(sku); ok {
		if item, ok := val.(Item); ok {
			return item, true, nil
		}
	}

	item, found, err := cs.Source.Item(ctx, sku)
	if err != nil || !found {
		return Item{}, false, err
	}
	cs.Cache.Set(sku, item)
	return item, true, nil
}

// Items passes through to the backing source; full listings are not cached.
func (cs *CachedSource) Items(ctx context.Context) ([]Item, error) {
	return cs.Source.Items(ctx)
}

var _ Source = (*CachedSource)(nil)
