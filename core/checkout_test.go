package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubmitter struct {
	err   error
	calls int
	last  AdminOrder
}

func (s *stubSubmitter) SubmitOrder(ctx context.Context, order AdminOrder) error {
	s.calls++
	s.last = order
	return s.err
}

type checkoutFixture struct {
	checkout  *Checkout
	cart      *Cart
	orders    *Orders
	latest    *LatestOrderCache
	submitter *stubSubmitter
	failures  []error
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()
	clock := fixedClock(time.Date(2026, 9, 1, 13, 0, 0, 0, time.UTC))

	session := NewSession(ctx, store, nil)
	session.SetUser(ctx, &Customer{ID: "c1", Name: "Asha"})

	fx := &checkoutFixture{
		cart:      NewCart(ctx, store, nil),
		orders:    NewOrders(ctx, store, nil, clock),
		latest:    NewLatestOrderCache(store, nil),
		submitter: &stubSubmitter{},
	}
	fx.checkout = NewCheckout(CheckoutOptions{
		Cart:      fx.cart,
		Orders:    fx.orders,
		Latest:    fx.latest,
		Session:   session,
		Submitter: fx.submitter,
		SyncFailure: func(order Order, err error) {
			fx.failures = append(fx.failures, err)
		},
	})
	return fx
}

func TestCheckoutTotals(t *testing.T) {
	fx := newCheckoutFixture(t)
	items := []OrderItem{
		{ID: "1", Name: "Pizza", Quantity: 2, Price: 200},
		{ID: "2", Name: "Pasta", Quantity: 1, Price: 100},
	}

	assert.Equal(t, 500.0, Subtotal(items))
	assert.Equal(t, 25.0, fx.checkout.Tax(items))
	assert.Equal(t, 537.0, fx.checkout.Total(items), "subtotal plus 5 percent tax plus service fee 12")
}

func TestCheckoutCustomRates(t *testing.T) {
	fx := newCheckoutFixture(t)
	custom := NewCheckout(CheckoutOptions{
		Cart:       fx.cart,
		Orders:     fx.orders,
		Latest:     fx.latest,
		Session:    NewSession(context.Background(), NewMemoryStore(), nil),
		Submitter:  fx.submitter,
		TaxRate:    0.10,
		ServiceFee: 5,
	})

	items := []OrderItem{{ID: "1", Quantity: 1, Price: 100}}
	assert.Equal(t, 10.0, custom.Tax(items))
	assert.Equal(t, 115.0, custom.Total(items))
}

func TestCheckoutPlaceOrderEmptyCart(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, err := fx.checkout.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, fx.submitter.calls)
}

func TestCheckoutPlaceOrder(t *testing.T) {
	ctx := context.Background()
	fx := newCheckoutFixture(t)

	fx.cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})
	fx.cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})
	fx.cart.SetTableNumber(ctx, "Table 4")
	fx.cart.SetPaymentMethod(ctx, PaymentCard)

	placed, err := fx.checkout.PlaceOrder(ctx)
	require.NoError(t, err)

	assert.Equal(t, OrderPending, placed.Status)
	assert.Equal(t, "Asha", placed.CustomerName)
	assert.Equal(t, PaymentCard, placed.PaymentMethod)
	assert.Equal(t, 432.0, placed.Total, "400 + 20 tax + 12 service fee")

	// The cart has been cleared but keeps the visit context.
	assert.Empty(t, fx.cart.Items())
	assert.Equal(t, "Table 4", fx.cart.TableNumber())

	// The order landed locally and in the cold-load slot.
	_, ok := fx.orders.ByID(placed.ID)
	assert.True(t, ok)
	cached, ok := fx.latest.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, placed.ID, cached.ID)

	// The admin payload uses the backend's shape.
	require.Equal(t, 1, fx.submitter.calls)
	payload := fx.submitter.last
	assert.Equal(t, "4", payload.TableNumber, "display prefix is stripped")
	assert.Equal(t, "Asha", payload.CustomerName)
	assert.Equal(t, "Customer", payload.OrderType)
	require.Len(t, payload.Items, 1)
	assert.Equal(t, AdminOrderItem{ItemID: "1", Name: "Pizza", Quantity: 2, Price: 200, Total: 400}, payload.Items[0])
	assert.Equal(t, 20.0, payload.Tax)
	assert.Equal(t, 432.0, payload.TotalAmount)

	assert.Empty(t, fx.failures)
}

func TestCheckoutPlaceOrderSyncFailure(t *testing.T) {
	ctx := context.Background()
	fx := newCheckoutFixture(t)
	fx.submitter.err = ErrConnectionFailed

	fx.cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})

	placed, err := fx.checkout.PlaceOrder(ctx)
	require.NoError(t, err, "a sync failure does not fail the checkout")
	assert.NotEmpty(t, placed.ID)

	// The local commit happened anyway.
	assert.Empty(t, fx.cart.Items())
	_, ok := fx.orders.ByID(placed.ID)
	assert.True(t, ok)

	// And the failure was observed.
	require.Len(t, fx.failures, 1)
	assert.ErrorIs(t, fx.failures[0], ErrConnectionFailed)
}

func TestCheckoutGuestFallbacks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	submitter := &stubSubmitter{}
	cart := NewCart(ctx, store, nil)
	checkout := NewCheckout(CheckoutOptions{
		Cart:      cart,
		Orders:    NewOrders(ctx, store, nil, nil),
		Latest:    NewLatestOrderCache(store, nil),
		Session:   NewSession(ctx, store, nil),
		Submitter: submitter,
	})

	cart.Add(ctx, CartItem{ID: "1", Name: "Chai", Price: 30})

	placed, err := checkout.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Guest", placed.CustomerName)
	assert.Equal(t, "1", submitter.last.TableNumber, "no table chosen falls back to table 1")
}

func TestTableNumberValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Table 4", "4"},
		{"7", "7"},
		{"  Table 12  ", "12"},
		{"", "1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tableNumberValue(tt.in), "input %q", tt.in)
	}
}
