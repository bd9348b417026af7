// Package cart implements the client-side shopping cart as a reducer-driven
// state machine. Transitions are pure and total: invalid input degrades to a
// no-op instead of failing.
package cart

import (
	"storefront-backend/internal/models"
)

// Item is a product snapshot plus a quantity
type Item struct {
	models.Product
	Quantity int `json:"quantity"`
}

// State holds the cart's item collection and its derived aggregates.
// TotalItems and TotalPrice are maintained incrementally with every
// transition, never recomputed lazily.
type State struct {
	Items      []Item  `json:"items"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
}

// Empty returns the zero cart state
func Empty() State {
	return State{Items: []Item{}}
}

// Action is the tagged union of cart transitions
type Action interface {
	isAction()
}

// AddItem adds one unit of a product to the cart
type AddItem struct {
	Product models.Product
}

// RemoveItem deletes a product from the cart entirely
type RemoveItem struct {
	ProductID string
}

// UpdateQuantity replaces the stored quantity for a product.
// A quantity <= 0 behaves as RemoveItem.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

// Clear resets the cart to empty
type Clear struct{}

// Load replaces the entire collection and recomputes aggregates from
// scratch. Used once at startup to restore persisted state.
type Load struct {
	Items []Item
}

func (AddItem) isAction()        {}
func (RemoveItem) isAction()     {}
func (UpdateQuantity) isAction() {}
func (Clear) isAction()          {}
func (Load) isAction()           {}

// Reduce applies a single action to the current state and returns the next
// state. The input state is never mutated.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case AddItem:
		return reduceAdd(state, a.Product)

	case RemoveItem:
		return reduceRemove(state, a.ProductID)

	case UpdateQuantity:
		if a.Quantity <= 0 {
			return reduceRemove(state, a.ProductID)
		}
		return reduceUpdate(state, a.ProductID, a.Quantity)

	case Clear:
		return Empty()

	case Load:
		next := State{Items: make([]Item, len(a.Items))}
		copy(next.Items, a.Items)
		for _, item := range next.Items {
			next.TotalItems += item.Quantity
			next.TotalPrice += item.Price * float64(item.Quantity)
		}
		return next

	default:
		return state
	}
}

func reduceAdd(state State, product models.Product) State {
	items := make([]Item, len(state.Items))
	copy(items, state.Items)

	found := false
	for i := range items {
		if items[i].ID == product.ID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, Item{Product: product, Quantity: 1})
	}

	return State{
		Items:      items,
		TotalItems: state.TotalItems + 1,
		TotalPrice: state.TotalPrice + product.Price,
	}
}

func reduceRemove(state State, productID string) State {
	idx := -1
	for i := range state.Items {
		if state.Items[i].ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state
	}

	removed := state.Items[idx]
	items := make([]Item, 0, len(state.Items)-1)
	items = append(items, state.Items[:idx]...)
	items = append(items, state.Items[idx+1:]...)

	return State{
		Items:      items,
		TotalItems: state.TotalItems - removed.Quantity,
		TotalPrice: state.TotalPrice - removed.Price*float64(removed.Quantity),
	}
}

func reduceUpdate(state State, productID string, quantity int) State {
	idx := -1
	for i := range state.Items {
		if state.Items[i].ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state
	}

	old := state.Items[idx]
	quantityDiff := quantity - old.Quantity
	priceDiff := old.Price * float64(quantityDiff)

	items := make([]Item, len(state.Items))
	copy(items, state.Items)
	items[idx].Quantity = quantity

	return State{
		Items:      items,
		TotalItems: state.TotalItems + quantityDiff,
		TotalPrice: state.TotalPrice + priceDiff,
	}
}
