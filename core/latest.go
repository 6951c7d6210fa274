package core

import "context"

// LatestOrderCache is the single-slot order snapshot the presentation
// layer reads on a cold load, when the Orders container is empty but
// the customer expects to still see their last order. Checkout writes
// it; it is deliberately separate from Orders, which never persists its
// current-order pointer.
type LatestOrderCache struct {
	store  Store
	logger Logger
}

// NewLatestOrderCache wraps the store's latestOrder slot.
func NewLatestOrderCache(store Store, logger Logger) *LatestOrderCache {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &LatestOrderCache{store: store, logger: logger}
}

// Put overwrites the slot with the given order.
func (l *LatestOrderCache) Put(ctx context.Context, order Order) {
	if err := setJSON(ctx, l.store, KeyLatestOrder, order); err != nil {
		l.logger.Error("Failed to cache latest order", map[string]interface{}{
			"key":   KeyLatestOrder,
			"error": err.Error(),
		})
	}
}

// Get reads the slot. A missing or unreadable slot yields ok=false.
func (l *LatestOrderCache) Get(ctx context.Context) (Order, bool) {
	var order Order
	found, err := getJSON(ctx, l.store, KeyLatestOrder, &order)
	if err != nil {
		l.logger.Warn("Discarding unreadable latest-order cache", map[string]interface{}{
			"key":   KeyLatestOrder,
			"error": err.Error(),
		})
		return Order{}, false
	}
	return order, found
}

// Clear removes the slot.
func (l *LatestOrderCache) Clear(ctx context.Context) {
	if err := l.store.Delete(ctx, KeyLatestOrder); err != nil {
		l.logger.Error("Failed to clear latest-order cache", map[string]interface{}{
			"key":   KeyLatestOrder,
			"error": err.Error(),
		})
	}
}
