package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront-backend/internal/models"
)

func product(id string, price float64) models.Product {
	return models.Product{
		ID:    id,
		Name:  "Product " + id,
		Price: price,
		Stock: 10,
	}
}

// aggregates recomputes totals from scratch for comparison against the
// incrementally maintained ones
func aggregates(state State) (int, float64) {
	items := 0
	price := 0.0
	for _, item := range state.Items {
		items += item.Quantity
		price += item.Price * float64(item.Quantity)
	}
	return items, price
}

func TestReduceAddItem(t *testing.T) {
	t.Run("new product appends with quantity one", func(t *testing.T) {
		state := Reduce(Empty(), AddItem{Product: product("p1", 9.99)})

		assert.Len(t, state.Items, 1)
		assert.Equal(t, 1, state.Items[0].Quantity)
		assert.Equal(t, 1, state.TotalItems)
		assert.InDelta(t, 9.99, state.TotalPrice, 0.001)
	})

	t.Run("existing product increments quantity", func(t *testing.T) {
		state := Reduce(Empty(), AddItem{Product: product("p1", 9.99)})
		state = Reduce(state, AddItem{Product: product("p1", 9.99)})

		assert.Len(t, state.Items, 1)
		assert.Equal(t, 2, state.Items[0].Quantity)
		assert.Equal(t, 2, state.TotalItems)
		assert.InDelta(t, 19.98, state.TotalPrice, 0.001)
	})

	t.Run("input state is not mutated", func(t *testing.T) {
		before := Reduce(Empty(), AddItem{Product: product("p1", 5)})
		after := Reduce(before, AddItem{Product: product("p1", 5)})

		assert.Equal(t, 1, before.Items[0].Quantity)
		assert.Equal(t, 2, after.Items[0].Quantity)
		assert.Equal(t, 1, before.TotalItems)
	})
}

func TestReduceRemoveItem(t *testing.T) {
	state := Reduce(Empty(), AddItem{Product: product("p1", 10)})
	state = Reduce(state, AddItem{Product: product("p2", 20)})
	state = Reduce(state, AddItem{Product: product("p2", 20)})

	t.Run("removes the whole line item", func(t *testing.T) {
		next := Reduce(state, RemoveItem{ProductID: "p2"})

		assert.Len(t, next.Items, 1)
		assert.Equal(t, "p1", next.Items[0].ID)
		assert.Equal(t, 1, next.TotalItems)
		assert.InDelta(t, 10, next.TotalPrice, 0.001)
	})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		next := Reduce(state, RemoveItem{ProductID: "missing"})

		assert.Equal(t, state, next)
	})
}

func TestReduceUpdateQuantity(t *testing.T) {
	state := Reduce(Empty(), AddItem{Product: product("p1", 10)})
	state = Reduce(state, AddItem{Product: product("p2", 20)})

	t.Run("replaces quantity and adjusts aggregates", func(t *testing.T) {
		next := Reduce(state, UpdateQuantity{ProductID: "p1", Quantity: 5})

		assert.Equal(t, 5, next.Items[0].Quantity)
		assert.Equal(t, 6, next.TotalItems)
		assert.InDelta(t, 70, next.TotalPrice, 0.001)
	})

	t.Run("zero quantity removes the item", func(t *testing.T) {
		next := Reduce(state, UpdateQuantity{ProductID: "p1", Quantity: 0})

		assert.Len(t, next.Items, 1)
		assert.Equal(t, "p2", next.Items[0].ID)
		assert.Equal(t, 1, next.TotalItems)
		assert.InDelta(t, 20, next.TotalPrice, 0.001)
	})

	t.Run("negative quantity removes the item", func(t *testing.T) {
		next := Reduce(state, UpdateQuantity{ProductID: "p2", Quantity: -3})

		assert.Len(t, next.Items, 1)
		assert.Equal(t, "p1", next.Items[0].ID)
	})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		next := Reduce(state, UpdateQuantity{ProductID: "missing", Quantity: 3})

		assert.Equal(t, state, next)
	})
}

func TestReduceClear(t *testing.T) {
	state := Reduce(Empty(), AddItem{Product: product("p1", 10)})
	state = Reduce(state, AddItem{Product: product("p2", 20)})

	next := Reduce(state, Clear{})

	assert.Empty(t, next.Items)
	assert.Zero(t, next.TotalItems)
	assert.Zero(t, next.TotalPrice)
}

func TestReduceLoad(t *testing.T) {
	t.Run("recomputes aggregates from the loaded collection", func(t *testing.T) {
		items := []Item{
			{Product: product("p1", 10), Quantity: 2},
			{Product: product("p2", 5.50), Quantity: 3},
		}

		state := Reduce(Empty(), Load{Items: items})

		assert.Len(t, state.Items, 2)
		assert.Equal(t, 5, state.TotalItems)
		assert.InDelta(t, 36.50, state.TotalPrice, 0.001)
	})

	t.Run("empty collection yields zero aggregates", func(t *testing.T) {
		state := Reduce(Empty(), AddItem{Product: product("p1", 10)})
		state = Reduce(state, Load{Items: []Item{}})

		assert.Empty(t, state.Items)
		assert.Zero(t, state.TotalItems)
		assert.Zero(t, state.TotalPrice)
	})

	t.Run("nil collection yields zero aggregates", func(t *testing.T) {
		state := Reduce(Empty(), Load{Items: nil})

		assert.Empty(t, state.Items)
		assert.Zero(t, state.TotalItems)
		assert.Zero(t, state.TotalPrice)
	})
}

// Aggregates must equal a from-scratch recomputation after any sequence of
// transitions.
func TestAggregateConsistency(t *testing.T) {
	actions := []Action{
		AddItem{Product: product("p1", 19.99)},
		AddItem{Product: product("p2", 5)},
		AddItem{Product: product("p1", 19.99)},
		UpdateQuantity{ProductID: "p2", Quantity: 7},
		AddItem{Product: product("p3", 120)},
		RemoveItem{ProductID: "p1"},
		UpdateQuantity{ProductID: "p3", Quantity: 0},
		AddItem{Product: product("p2", 5)},
	}

	state := Empty()
	for _, action := range actions {
		state = Reduce(state, action)

		wantItems, wantPrice := aggregates(state)
		assert.Equal(t, wantItems, state.TotalItems)
		assert.InDelta(t, wantPrice, state.TotalPrice, 0.001)
	}
}
