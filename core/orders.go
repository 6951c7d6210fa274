package core

import (
	"strconv"
	"sync"
	"time"

	"context"
)

// OrderStatus is the lifecycle state of a placed order. Pending is the
// only status this layer assigns; the rest arrive from the backend via
// explicit status updates.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPreparing OrderStatus = "Preparing"
	OrderReady     OrderStatus = "Ready"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

// OrderItem is an immutable snapshot of one cart line at the moment the
// order was placed.
type OrderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is a placed order. Everything except Status is immutable after
// placement.
type Order struct {
	ID            string        `json:"id"`
	Items         []OrderItem   `json:"items"`
	Status        OrderStatus   `json:"status"`
	PlacedAt      time.Time     `json:"placedAt"`
	EstimatedTime int           `json:"estimatedTime"`
	CustomerName  string        `json:"customerName,omitempty"`
	TableNumber   string        `json:"tableNumber,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Total         float64       `json:"total,omitempty"`
}

// Orders owns the list of placed orders, most recent first, plus a
// non-owning pointer to the current order. The list is persisted on
// every mutation; the current-order pointer is session state only and
// is re-derived after a reload (see LatestOrderCache).
type Orders struct {
	mu      sync.Mutex
	orders  []Order
	current *Order

	store  Store
	logger Logger
	clock  Clock

	estimatedMinutes int
	lastID           int64
}

// NewOrders creates the container hydrated from the persisted order
// list. A malformed list is logged and treated as empty.
func NewOrders(ctx context.Context, store Store, logger Logger, clock Clock) *Orders {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if clock == nil {
		clock = SystemClock
	}
	o := &Orders{
		store:            store,
		logger:           logger,
		clock:            clock,
		estimatedMinutes: 20,
	}

	var saved []Order
	found, err := getJSON(ctx, store, KeyOrders, &saved)
	if err != nil {
		logger.Warn("Discarding unreadable order history", map[string]interface{}{
			"key":   KeyOrders,
			"error": err.Error(),
		})
		return o
	}
	if found {
		o.orders = saved
	}
	return o
}

// SetEstimatedMinutes overrides the preparation estimate stamped on new
// orders.
func (o *Orders) SetEstimatedMinutes(minutes int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if minutes > 0 {
		o.estimatedMinutes = minutes
	}
}

// Add stamps orderData with a generated id, Pending status, the
// placement time, and the preparation estimate, prepends it to the
// list, makes it current, and returns the stamped order.
func (o *Orders) Add(ctx context.Context, orderData Order) Order {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.clock()
	orderData.ID = o.nextID(now)
	orderData.Status = OrderPending
	orderData.PlacedAt = now
	orderData.EstimatedTime = o.estimatedMinutes

	o.orders = append([]Order{orderData}, o.orders...)
	current := orderData
	o.current = &current

	o.persist(ctx)
	return orderData
}

// UpdateStatus replaces the status of the order with the given id, and
// mirrors the change onto the current order when it is the same one.
// Unknown ids are ignored.
func (o *Orders) UpdateStatus(ctx context.Context, id string, status OrderStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()

	changed := false
	for i := range o.orders {
		if o.orders[i].ID == id {
			o.orders[i].Status = status
			changed = true
			break
		}
	}
	if !changed {
		return
	}
	if o.current != nil && o.current.ID == id {
		o.current.Status = status
	}
	o.persist(ctx)
}

// ByID returns the order with the given id.
func (o *Orders) ByID(id string) (Order, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, ord := range o.orders {
		if ord.ID == id {
			return ord, true
		}
	}
	return Order{}, false
}

// ByStatus returns all orders currently in the given status, most
// recent first.
func (o *Orders) ByStatus(status OrderStatus) []Order {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []Order
	for _, ord := range o.orders {
		if ord.Status == status {
			out = append(out, ord)
		}
	}
	return out
}

// All returns a copy of the order list, most recent first.
func (o *Orders) All() []Order {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Order, len(o.orders))
	copy(out, o.orders)
	return out
}

// Current returns the current order, when one exists this session.
func (o *Orders) Current() (Order, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil {
		return Order{}, false
	}
	return *o.current, true
}

// Clear empties the order list and drops the current order.
func (o *Orders) Clear(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.orders = nil
	o.current = nil
	o.persist(ctx)
}

// nextID produces a millisecond-timestamp id, bumping when two orders
// land in the same millisecond so ids stay unique within the session.
// Callers hold o.mu.
func (o *Orders) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= o.lastID {
		ms = o.lastID + 1
	}
	o.lastID = ms
	return strconv.FormatInt(ms, 10)
}

// persist writes the full order list. Callers hold o.mu.
func (o *Orders) persist(ctx context.Context) {
	list := o.orders
	if list == nil {
		list = []Order{}
	}
	if err := setJSON(ctx, o.store, KeyOrders, list); err != nil {
		o.logger.Error("Failed to persist orders", map[string]interface{}{
			"key":   KeyOrders,
			"error": err.Error(),
		})
	}
}
