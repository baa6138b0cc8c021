// Package quote holds the mutable shopping-quote state the directive engine
// operates on, plus the bill-of-materials payload produced by building
// analysis.
package quote

import (
	"sync"

	"github.com/Quotient-Labs/quote-agent/src/catalog"
)

// LineItem is a single priced row of the quote.
type LineItem struct {
	SKU         string
	Description string
	Quantity    int
	UnitPrice   float64
}

// Quote is the ordered set of line items for one conversation. Adding a SKU
// that is already quoted merges quantities into the existing line, keeping
// its position.
type Quote struct {
	mu    sync.RWMutex
	items []LineItem
	index map[string]int
}

// New creates an empty quote.
func New() *Quote {
	return &Quote{index: make(map[string]int)}
}

// Add appends an item to the quote or merges it into an existing line.
func (q *Quote) Add(item catalog.Item, quantity int) {
	if quantity <= 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if idx, ok := q.index[item.ID]; ok {
		q.items[idx].Quantity += quantity
		return
	}
	q.index[item.ID] = len(q.items)
	q.items = append(q.items, LineItem{
		SKU:         item.ID,
		Description: item.Name,
		Quantity:    quantity,
		UnitPrice:   item.UnitPrice,
	})
}

// Remove deletes the line for a SKU. Removing an absent SKU is a no-op.
func (q *Quote) Remove(sku string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx, ok := q.index[sku]
	if !ok {
		return
	}
	q.items = append(q.items[:idx], q.items[idx+1:]...)
	delete(q.index, sku)
	for i := idx; i < len(q.items); i++ {
		q.index[q.items[i].SKU] = i
	}
}

// Items returns a snapshot of the quote lines in insertion order.
func (q *Quote) Items() []LineItem {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return append([]LineItem(nil), q.items...)
}

// Len returns the number of quote lines.
func (q *Quote) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// Subtotal returns the sum of quantity times unit price over all lines.
func (q *Quote) Subtotal() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var total float64
	for _, item := range q.items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}
