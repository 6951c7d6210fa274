package core

import (
	"context"
	"sync"
)

// PaymentMethod is how the customer intends to settle the order.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentCard   PaymentMethod = "Card"
	PaymentUPI    PaymentMethod = "UPI"
	PaymentOnline PaymentMethod = "Online"
)

// PaymentMethods lists the accepted values in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCash, PaymentCard, PaymentUPI, PaymentOnline}
}

// CartItem is one line of the cart. Lines are unique by ID; a line with
// quantity zero is never stored (removal deletes the line instead).
type CartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	ImageURL string  `json:"image_url,omitempty"`
}

// cartSnapshot is the persisted shape. The derived total is not part of
// it: it is recomputed from the items on load.
type cartSnapshot struct {
	CartItems     []CartItem    `json:"cartItems"`
	TableNumber   string        `json:"tableNumber"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// Cart owns the set of selected menu items, the chosen table, and the
// payment method, and keeps the running total consistent with the items
// after every mutation. Every state change writes the full snapshot
// back through the store.
type Cart struct {
	mu            sync.Mutex
	items         []CartItem
	totalPrice    float64
	tableNumber   string
	paymentMethod PaymentMethod

	store  Store
	logger Logger
}

// NewCart creates a cart hydrated from any prior snapshot in the store.
// A malformed snapshot is logged and treated as an empty cart; it never
// fails construction.
func NewCart(ctx context.Context, store Store, logger Logger) *Cart {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	c := &Cart{
		paymentMethod: PaymentCash,
		store:         store,
		logger:        logger,
	}

	var snap cartSnapshot
	found, err := getJSON(ctx, store, KeyCart, &snap)
	if err != nil {
		logger.Warn("Discarding unreadable cart snapshot", map[string]interface{}{
			"key":   KeyCart,
			"error": err.Error(),
		})
		return c
	}
	if found {
		c.items = snap.CartItems
		c.tableNumber = snap.TableNumber
		if snap.PaymentMethod != "" {
			c.paymentMethod = snap.PaymentMethod
		}
		// The total is derived state: always recompute, never trust
		// a persisted copy.
		for _, item := range c.items {
			c.totalPrice += item.Price * float64(item.Quantity)
		}
	}
	return c
}

// Add puts one unit of item into the cart. If a line with the same id
// already exists its quantity is incremented by one; otherwise a new
// line with quantity 1 is inserted. Either way the total grows by
// exactly one unit price.
func (c *Cart) Add(ctx context.Context, item CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		item.Quantity = 1
		c.items = append(c.items, item)
	}
	c.totalPrice += item.Price

	c.persist(ctx)
}

// Remove deletes the line with the given id. Removing an absent id is a
// no-op.
func (c *Cart) Remove(ctx context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.totalPrice -= c.items[i].Price * float64(c.items[i].Quantity)
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.persist(ctx)
			return
		}
	}
}

// UpdateQuantity replaces a line's quantity. Quantity zero removes the
// line. An unknown id leaves the cart unchanged.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity == 0 {
		c.Remove(ctx, id)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == id {
			c.totalPrice += float64(quantity-c.items[i].Quantity) * c.items[i].Price
			c.items[i].Quantity = quantity
			c.persist(ctx)
			return
		}
	}
}

// Clear empties the cart. The chosen table and payment method are kept:
// they describe the visit, not the current selection.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.totalPrice = 0
	c.persist(ctx)
}

// SetTableNumber records which table the order is for.
func (c *Cart) SetTableNumber(ctx context.Context, table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tableNumber = table
	c.persist(ctx)
}

// SetPaymentMethod records how the customer will pay.
func (c *Cart) SetPaymentMethod(ctx context.Context, method PaymentMethod) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paymentMethod = method
	c.persist(ctx)
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// TotalPrice returns the derived total of all lines.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPrice
}

// TotalItems returns the sum of line quantities.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// ItemQuantity returns the quantity of the line with the given id, or
// zero when absent.
func (c *Cart) ItemQuantity(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.items {
		if item.ID == id {
			return item.Quantity
		}
	}
	return 0
}

// TableNumber returns the chosen table.
func (c *Cart) TableNumber() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tableNumber
}

// PaymentMethod returns the chosen payment method.
func (c *Cart) PaymentMethod() PaymentMethod {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paymentMethod
}

// persist writes the full snapshot. Storage failures are logged, not
// surfaced: the in-memory state is already committed and the next
// mutation retries the write anyway. Callers hold c.mu.
func (c *Cart) persist(ctx context.Context) {
	snap := cartSnapshot{
		CartItems:     c.items,
		TableNumber:   c.tableNumber,
		PaymentMethod: c.paymentMethod,
	}
	if err := setJSON(ctx, c.store, KeyCart, snap); err != nil {
		c.logger.Error("Failed to persist cart", map[string]interface{}{
			"key":   KeyCart,
			"error": err.Error(),
		})
	}
}
