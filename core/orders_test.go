package core

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestOrdersAdd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	orders := NewOrders(ctx, NewMemoryStore(), nil, fixedClock(now))

	placed := orders.Add(ctx, Order{
		Items:        []OrderItem{{ID: "1", Name: "Pizza", Quantity: 2, Price: 200}},
		CustomerName: "Asha",
		Total:        432,
	})

	assert.Equal(t, strconv.FormatInt(now.UnixMilli(), 10), placed.ID)
	assert.Equal(t, OrderPending, placed.Status)
	assert.Equal(t, now, placed.PlacedAt)
	assert.Equal(t, 20, placed.EstimatedTime)
	assert.Equal(t, "Asha", placed.CustomerName)

	current, ok := orders.Current()
	require.True(t, ok)
	assert.Equal(t, placed.ID, current.ID)
}

func TestOrdersIDsUniqueWithinMillisecond(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	orders := NewOrders(ctx, NewMemoryStore(), nil, fixedClock(now))

	first := orders.Add(ctx, Order{})
	second := orders.Add(ctx, Order{})
	third := orders.Add(ctx, Order{})

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, second.ID, third.ID)
}

func TestOrdersMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	clock := fixedClock(time.Now())
	orders := NewOrders(ctx, NewMemoryStore(), nil, clock)

	a := orders.Add(ctx, Order{CustomerName: "first"})
	b := orders.Add(ctx, Order{CustomerName: "second"})

	all := orders.All()
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID)
	assert.Equal(t, a.ID, all[1].ID)
}

func TestOrdersUpdateStatus(t *testing.T) {
	ctx := context.Background()
	orders := NewOrders(ctx, NewMemoryStore(), nil, nil)
	placed := orders.Add(ctx, Order{})

	orders.UpdateStatus(ctx, placed.ID, OrderReady)

	got, ok := orders.ByID(placed.ID)
	require.True(t, ok)
	assert.Equal(t, OrderReady, got.Status)

	// The current-order view reflects the change too.
	current, ok := orders.Current()
	require.True(t, ok)
	assert.Equal(t, OrderReady, current.Status)

	// Unknown ids change nothing.
	orders.UpdateStatus(ctx, "nope", OrderCancelled)
	got, _ = orders.ByID(placed.ID)
	assert.Equal(t, OrderReady, got.Status)
}

func TestOrdersByStatus(t *testing.T) {
	ctx := context.Background()
	orders := NewOrders(ctx, NewMemoryStore(), nil, nil)

	a := orders.Add(ctx, Order{})
	b := orders.Add(ctx, Order{})
	orders.UpdateStatus(ctx, a.ID, OrderCompleted)

	pending := orders.ByStatus(OrderPending)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)

	assert.Empty(t, orders.ByStatus(OrderCancelled))
}

func TestOrdersPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

	orders := NewOrders(ctx, store, nil, fixedClock(now))
	placed := orders.Add(ctx, Order{
		Items: []OrderItem{{ID: "1", Name: "Pizza", Quantity: 1, Price: 200}},
		Total: 222,
	})

	reloaded := NewOrders(ctx, store, nil, fixedClock(now))
	got, ok := reloaded.ByID(placed.ID)
	require.True(t, ok)
	assert.Equal(t, placed.Items, got.Items)
	assert.Equal(t, placed.Total, got.Total)
	assert.True(t, placed.PlacedAt.Equal(got.PlacedAt))

	// The current pointer is session state and does not survive.
	_, ok = reloaded.Current()
	assert.False(t, ok)
}

func TestOrdersClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewOrders(ctx, store, nil, nil)
	orders.Add(ctx, Order{})

	orders.Clear(ctx)
	assert.Empty(t, orders.All())
	_, ok := orders.Current()
	assert.False(t, ok)

	reloaded := NewOrders(ctx, store, nil, nil)
	assert.Empty(t, reloaded.All())
}

func TestOrdersMalformedHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, KeyOrders, "[{broken"))

	orders := NewOrders(ctx, store, nil, nil)
	assert.Empty(t, orders.All())
}

func TestOrdersEstimatedMinutesOverride(t *testing.T) {
	ctx := context.Background()
	orders := NewOrders(ctx, NewMemoryStore(), nil, nil)
	orders.SetEstimatedMinutes(35)

	placed := orders.Add(ctx, Order{})
	assert.Equal(t, 35, placed.EstimatedTime)

	orders.SetEstimatedMinutes(0)
	placed = orders.Add(ctx, Order{})
	assert.Equal(t, 35, placed.EstimatedTime, "non-positive overrides are ignored")
}
