package core

import (
	"context"
	"strings"
)

// AdminOrderItem is one line of the order payload the admin backend
// expects.
type AdminOrderItem struct {
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

// AdminOrder is the staff-facing order submission payload.
type AdminOrder struct {
	TableNumber  string           `json:"table_number"`
	CustomerName string           `json:"customer_name"`
	OrderType    string           `json:"order_type"`
	Items        []AdminOrderItem `json:"items"`
	Tax          float64          `json:"tax"`
	TotalAmount  float64          `json:"total_amount"`
}

// OrderSubmitter pushes an order to the admin backend so the kitchen
// sees it.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order AdminOrder) error
}

// SyncFailureFunc observes a failed best-effort sync: the order that
// was committed locally and the error the admin backend returned.
type SyncFailureFunc func(order Order, err error)

// Checkout turns the cart into a placed order. The local commit is the
// source of truth: the order always lands in the Orders container and
// the cart always clears, while the admin-backend submission is best
// effort. A sync failure is reported through the SyncFailure callback
// rather than rolled back, so the customer still reaches their
// confirmation and staff can reconcile later.
type Checkout struct {
	cart      *Cart
	orders    *Orders
	latest    *LatestOrderCache
	session   *Session
	submitter OrderSubmitter
	logger    Logger

	taxRate     float64
	serviceFee  float64
	syncFailure SyncFailureFunc
}

// CheckoutOptions configures a Checkout.
type CheckoutOptions struct {
	Cart      *Cart
	Orders    *Orders
	Latest    *LatestOrderCache
	Session   *Session
	Submitter OrderSubmitter
	Logger    Logger // Optional

	TaxRate     float64 // Defaults to 0.05
	ServiceFee  float64 // Defaults to 12
	SyncFailure SyncFailureFunc // Optional
}

// NewCheckout wires the checkout service.
func NewCheckout(opts CheckoutOptions) *Checkout {
	if opts.Logger == nil {
		opts.Logger = &NoOpLogger{}
	}
	if opts.TaxRate == 0 {
		opts.TaxRate = 0.05
	}
	if opts.ServiceFee == 0 {
		opts.ServiceFee = 12
	}
	return &Checkout{
		cart:        opts.Cart,
		orders:      opts.Orders,
		latest:      opts.Latest,
		session:     opts.Session,
		submitter:   opts.Submitter,
		logger:      opts.Logger,
		taxRate:     opts.TaxRate,
		serviceFee:  opts.ServiceFee,
		syncFailure: opts.SyncFailure,
	}
}

// Subtotal sums the line totals of the given items.
func Subtotal(items []OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Tax returns the tax due on the items at the configured rate.
func (c *Checkout) Tax(items []OrderItem) float64 {
	return Subtotal(items) * c.taxRate
}

// Total returns subtotal plus tax plus the fixed service fee.
func (c *Checkout) Total(items []OrderItem) float64 {
	subtotal := Subtotal(items)
	return subtotal + subtotal*c.taxRate + c.serviceFee
}

// PlaceOrder commits the current cart as an order. It snapshots the
// cart, stamps and stores the order locally (including the latestOrder
// cold-load slot), clears the cart, and then best-effort submits to the
// admin backend. The returned order is the locally committed one; it is
// returned even when the sync fails.
func (c *Checkout) PlaceOrder(ctx context.Context) (Order, error) {
	cartItems := c.cart.Items()
	if len(cartItems) == 0 {
		return Order{}, ErrEmptyCart
	}

	items := make([]OrderItem, len(cartItems))
	for i, ci := range cartItems {
		items[i] = OrderItem{
			ID:       ci.ID,
			Name:     ci.Name,
			Quantity: ci.Quantity,
			Price:    ci.Price,
		}
	}

	order := Order{
		Items:         items,
		CustomerName:  c.session.CustomerName(),
		TableNumber:   c.cart.TableNumber(),
		PaymentMethod: c.cart.PaymentMethod(),
		Total:         c.Total(items),
	}

	placed := c.orders.Add(ctx, order)
	c.latest.Put(ctx, placed)
	c.cart.Clear(ctx)

	payload := c.adminPayload(placed)
	if err := c.submitter.SubmitOrder(ctx, payload); err != nil {
		c.logger.Warn("Order sync to admin backend failed", map[string]interface{}{
			"order_id": placed.ID,
			"error":    err.Error(),
		})
		if c.syncFailure != nil {
			c.syncFailure(placed, err)
		}
		return placed, nil
	}

	c.logger.Info("Order placed", map[string]interface{}{
		"order_id": placed.ID,
		"items":    len(placed.Items),
		"total":    placed.Total,
	})
	return placed, nil
}

// adminPayload reshapes a local order into the admin backend's format.
func (c *Checkout) adminPayload(order Order) AdminOrder {
	items := make([]AdminOrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = AdminOrderItem{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Total:    item.Price * float64(item.Quantity),
		}
	}
	return AdminOrder{
		TableNumber:  tableNumberValue(order.TableNumber),
		CustomerName: order.CustomerName,
		OrderType:    "Customer",
		Items:        items,
		Tax:          c.Tax(order.Items),
		TotalAmount:  c.Total(order.Items),
	}
}

// tableNumberValue strips the display prefix from a table label, e.g.
// "Table 4" becomes "4". The admin backend wants the bare number and
// falls back to table 1 for walk-ins that never chose one.
func tableNumberValue(table string) string {
	trimmed := strings.TrimSpace(table)
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "Table "))
	if trimmed == "" {
		return "1"
	}
	return trimmed
}
