package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StaticSource is the default in-memory Source used by tests and demos.
// Items are returned in registration order.
type StaticSource struct {
	mu    sync.RWMutex
	items map[string]Item
	order []string
}

// NewStaticSource constructs a source seeded with the provided items.
// Invalid entries are skipped silently.
func NewStaticSource(items []Item) *StaticSource {
	s := &StaticSource{items: make(map[string]Item)}
	for _, item := range items {
		_ = s.Register(item)
	}
	return s
}

// Register adds an item keyed by its SKU. Duplicate SKUs return an error.
func (s *StaticSource) Register(item Item) error {
	key := strings.TrimSpace(item.ID)
	if key == "" {
		return fmt.Errorf("item SKU is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; exists {
		return fmt.Errorf("item %s already registered", key)
	}
	s.items[key] = item
	s.order = append(s.order, key)
	return nil
}

// Item looks up an item by SKU.
func (s *StaticSource) Item(_ context.Context, sku string) (Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[sku]
	return item, ok, nil
}

// Items returns a snapshot of the inventory in registration order.
func (s *StaticSource) Items(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, 0, len(s.order))
	for _, key := range s.order {
		items = append(items, s.items[key])
	}
	return items, nil
}

var _ Source = (*StaticSource)(nil)
