// Package catalog provides read-only access to the inventory items the
// assistant is allowed to quote. Lookups are keyed by SKU; the directive
// engine never mutates inventory.
package catalog

import "context"

// Item is a single inventory entry. ID is the SKU key the directive
// grammar refers to.
type Item struct {
	ID          string
	Name        string
	Description string
	UnitPrice   float64
}

// Source is the read-only lookup capability handed to the directive engine.
// Implementations must be safe for concurrent readers.
type Source interface {
	// Item returns the inventory item for a SKU. The boolean reports
	// whether the SKU exists; err is reserved for backing-store failures.
	Item(ctx context.Context, sku string) (Item, bool, error)
	// Items returns the full inventory in a stable order.
	Items(ctx context.Context) ([]Item, error)
}
