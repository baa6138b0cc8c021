package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Entry holds a cached value with its expiration time.
type Entry struct {
	Value     any
	ExpiresAt time.Time
}

// LRUCache is a thread-safe LRU cache with TTL support. It fronts the
// catalog sources and model adapters so repeated lookups do not hit the
// backing store or provider again.
type LRUCache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
}

type lruEntry struct {
	key   string
	value Entry
}

// NewLRUCache creates a cache with the given capacity and TTL.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 128
	}
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Get retrieves a value, evicting it first if its TTL has passed.
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	ent := elem.Value.(*lruEntry)
	if time.Now().After(ent.value.ExpiresAt) {
		c.lru.Remove(elem)
		delete(c.items, key)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return ent.value.Value, true
}

// Set adds or refreshes a value, evicting the least recently used entry
// when the cache is over capacity.
func (c *LRUCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*lruEntry).value = Entry{Value: value, ExpiresAt: expiresAt}
		return
	}

	elem := c.lru.PushFront(&lruEntry{key: key, value: Entry{Value: value, ExpiresAt: expiresAt}})
	c.items[key] = elem

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.items, oldest.Value.(*lruEntry).key)
		}
	}
}

// Clear removes every entry.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.lru.Init()
}

// Len returns the number of live entries.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lru.Len()
}

// HashKey derives a stable cache key from arbitrary text (e.g. a prompt).
func HashKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Dump snapshots the cache contents for persistence.
func (c *LRUCache) Dump() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dump := make(map[string]Entry, len(c.items))
	for k, elem := range c.items {
		dump[k] = elem.Value.(*lruEntry).value
	}
	return dump
}

// Restore repopulates the cache from a dump, skipping expired entries and
// enforcing capacity.
func (c *LRUCache) Restore(dump map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Init()
	c.items = make(map[string]*list.Element, c.capacity)

	now := time.Now()
	for k, v := range dump {
		if now.After(v.ExpiresAt) {
			continue
		}
		elem := c.lru.PushFront(&lruEntry{key: k, value: v})
		c.items[k] = elem
	}

	for c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.lru.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}
}
