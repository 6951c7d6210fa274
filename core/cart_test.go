package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCart(t *testing.T) (*Cart, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewCart(context.Background(), store, nil), store
}

func TestCartAdd(t *testing.T) {
	ctx := context.Background()
	cart, _ := testCart(t)

	cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})
	cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})

	items := cart.Items()
	require.Len(t, items, 1, "same id should merge into one line")
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 400.0, cart.TotalPrice())
	assert.Equal(t, 2, cart.TotalItems())
}

func TestCartAddDistinctItems(t *testing.T) {
	ctx := context.Background()
	cart, _ := testCart(t)

	cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})
	cart.Add(ctx, CartItem{ID: "2", Name: "Pasta", Price: 150})

	assert.Len(t, cart.Items(), 2)
	assert.Equal(t, 350.0, cart.TotalPrice())
	assert.Equal(t, 1, cart.ItemQuantity("2"))
}

func TestCartUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		quantity  int
		wantLines int
		wantQty   int
		wantTotal float64
	}{
		{
			name:      "raise quantity",
			id:        "1",
			quantity:  3,
			wantLines: 1,
			wantQty:   3,
			wantTotal: 600,
		},
		{
			name:      "lower quantity",
			id:        "1",
			quantity:  1,
			wantLines: 1,
			wantQty:   1,
			wantTotal: 200,
		},
		{
			name:      "zero removes the line",
			id:        "1",
			quantity:  0,
			wantLines: 0,
			wantQty:   0,
			wantTotal: 0,
		},
		{
			name:      "unknown id is a no-op",
			id:        "99",
			quantity:  5,
			wantLines: 1,
			wantQty:   0,
			wantTotal: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cart, _ := testCart(t)
			cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})
			cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})

			cart.UpdateQuantity(ctx, tt.id, tt.quantity)

			assert.Len(t, cart.Items(), tt.wantLines)
			assert.Equal(t, tt.wantQty, cart.ItemQuantity(tt.id))
			assert.Equal(t, tt.wantTotal, cart.TotalPrice())
		})
	}
}

func TestCartRemove(t *testing.T) {
	ctx := context.Background()
	cart, _ := testCart(t)

	cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})
	cart.Add(ctx, CartItem{ID: "2", Name: "Pasta", Price: 150})
	cart.Add(ctx, CartItem{ID: "2", Name: "Pasta", Price: 150})

	cart.Remove(ctx, "2")
	assert.Equal(t, 200.0, cart.TotalPrice(), "removal subtracts the full line value")
	assert.Equal(t, 0, cart.ItemQuantity("2"))

	// Removing an id that is not there leaves everything untouched.
	cart.Remove(ctx, "2")
	assert.Equal(t, 200.0, cart.TotalPrice())
	assert.Len(t, cart.Items(), 1)
}

func TestCartClearKeepsVisitContext(t *testing.T) {
	ctx := context.Background()
	cart, _ := testCart(t)

	cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})
	cart.SetTableNumber(ctx, "Table 4")
	cart.SetPaymentMethod(ctx, PaymentCard)

	cart.Clear(ctx)

	assert.Empty(t, cart.Items())
	assert.Equal(t, 0.0, cart.TotalPrice())
	assert.Equal(t, "Table 4", cart.TableNumber())
	assert.Equal(t, PaymentCard, cart.PaymentMethod())
}

func TestCartPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cart := NewCart(ctx, store, nil)
	cart.Add(ctx, CartItem{ID: "1", Name: "Pizza", Price: 200})
	cart.Add(ctx, CartItem{ID: "2", Name: "Pasta", Price: 150})
	cart.UpdateQuantity(ctx, "2", 4)
	cart.SetTableNumber(ctx, "Table 7")
	cart.SetPaymentMethod(ctx, PaymentUPI)

	// A new cart over the same store sees the same state, with the
	// total recomputed from the items.
	reloaded := NewCart(ctx, store, nil)
	assert.Equal(t, cart.Items(), reloaded.Items())
	assert.Equal(t, 800.0, reloaded.TotalPrice())
	assert.Equal(t, "Table 7", reloaded.TableNumber())
	assert.Equal(t, PaymentUPI, reloaded.PaymentMethod())
}

func TestCartMalformedSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyCart, "{not json"))

	cart := NewCart(ctx, store, nil)
	assert.Empty(t, cart.Items())
	assert.Equal(t, 0.0, cart.TotalPrice())
	assert.Equal(t, PaymentCash, cart.PaymentMethod(), "defaults survive a bad snapshot")
}

func TestCartDefaultPaymentMethod(t *testing.T) {
	cart, _ := testCart(t)
	assert.Equal(t, PaymentCash, cart.PaymentMethod())
	assert.Contains(t, PaymentMethods(), cart.PaymentMethod())
}
