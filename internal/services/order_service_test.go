package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"
)

func TestCreateOrder(t *testing.T) {
	db := newTestDB(t)
	orderService := NewOrderService(db)

	userID := insertTestUser(t, db, "buyer@example.com")
	headphones := insertTestProduct(t, db, "Wireless Headphones", 199.99, 10)
	keyboard := insertTestProduct(t, db, "Mechanical Keyboard", 89.99, 2)

	orderInput := func() *models.OrderCreation {
		return &models.OrderCreation{
			Items: []models.OrderItemInput{
				{ProductID: headphones.ID, Name: headphones.Name, Price: headphones.Price, Quantity: 2, Image: headphones.Image},
				{ProductID: keyboard.ID, Name: keyboard.Name, Price: keyboard.Price, Quantity: 1, Image: keyboard.Image},
			},
			ShippingAddress: testShippingAddress(),
			TotalPrice:      489.97,
		}
	}

	t.Run("persists the order and decrements stock", func(t *testing.T) {
		order, err := orderService.CreateOrder(userID, orderInput())
		require.NoError(t, err)

		assert.NotEmpty(t, order.ID)
		assert.Equal(t, userID, order.UserID)
		assert.Equal(t, "stripe", order.PaymentMethod)
		assert.False(t, order.IsPaid)
		assert.Nil(t, order.PaidAt)
		assert.Len(t, order.Items, 2)
		assert.Equal(t, 3, order.GetTotalItems())

		assert.Equal(t, 8, productStock(t, db, headphones.ID))
		assert.Equal(t, 1, productStock(t, db, keyboard.ID))
	})

	t.Run("freezes item snapshots", func(t *testing.T) {
		order, err := orderService.CreateOrder(userID, orderInput())
		require.NoError(t, err)

		stored, err := orderService.GetOrderByID(order.ID)
		require.NoError(t, err)

		require.Len(t, stored.Items, 2)
		assert.Equal(t, headphones.ID, stored.Items[0].ProductID)
		assert.Equal(t, "Wireless Headphones", stored.Items[0].Name)
		assert.InDelta(t, 199.99, stored.Items[0].Price, 0.001)
	})

	t.Run("insufficient stock leaves every product untouched", func(t *testing.T) {
		beforeHeadphones := productStock(t, db, headphones.ID)
		beforeKeyboard := productStock(t, db, keyboard.ID)

		input := orderInput()
		input.Items[1].Quantity = 100

		_, err := orderService.CreateOrder(userID, input)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		assert.Equal(t, beforeHeadphones, productStock(t, db, headphones.ID))
		assert.Equal(t, beforeKeyboard, productStock(t, db, keyboard.ID))
	})

	t.Run("unknown product fails the whole order", func(t *testing.T) {
		before := productStock(t, db, headphones.ID)

		input := orderInput()
		input.Items[1].ProductID = "missing-id"

		_, err := orderService.CreateOrder(userID, input)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, before, productStock(t, db, headphones.ID))
	})

	t.Run("rejects a missing user", func(t *testing.T) {
		_, err := orderService.CreateOrder("", orderInput())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("rejects an empty item list", func(t *testing.T) {
		input := orderInput()
		input.Items = nil

		_, err := orderService.CreateOrder(userID, input)

		var verrs utils.ValidationErrors
		require.True(t, errors.As(err, &verrs))
	})

	t.Run("rejects non-positive quantities without touching stock", func(t *testing.T) {
		beforeHeadphones := productStock(t, db, headphones.ID)
		beforeKeyboard := productStock(t, db, keyboard.ID)

		input := orderInput()
		input.Items[1].Quantity = -5

		_, err := orderService.CreateOrder(userID, input)

		var verrs utils.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, beforeHeadphones, productStock(t, db, headphones.ID))
		assert.Equal(t, beforeKeyboard, productStock(t, db, keyboard.ID))

		input.Items[1].Quantity = 0
		_, err = orderService.CreateOrder(userID, input)
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, beforeKeyboard, productStock(t, db, keyboard.ID))
	})

	t.Run("rejects an incomplete shipping address", func(t *testing.T) {
		input := orderInput()
		input.ShippingAddress.City = ""

		_, err := orderService.CreateOrder(userID, input)

		var verrs utils.ValidationErrors
		require.True(t, errors.As(err, &verrs))
	})
}

func TestGetOrdersByUser(t *testing.T) {
	db := newTestDB(t)
	orderService := NewOrderService(db)

	userID := insertTestUser(t, db, "buyer@example.com")
	otherID := insertTestUser(t, db, "other@example.com")
	product := insertTestProduct(t, db, "Desk Lamp", 24.99, 100)

	place := func(owner string, quantity int) *models.Order {
		order, err := orderService.CreateOrder(owner, &models.OrderCreation{
			Items: []models.OrderItemInput{
				{ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: quantity, Image: product.Image},
			},
			ShippingAddress: testShippingAddress(),
			TotalPrice:      product.Price * float64(quantity),
		})
		require.NoError(t, err)
		return order
	}

	place(userID, 1)
	place(userID, 2)
	place(otherID, 3)

	orders, err := orderService.GetOrdersByUser(userID)
	require.NoError(t, err)

	require.Len(t, orders, 2)
	for _, order := range orders {
		assert.Equal(t, userID, order.UserID)
		assert.NotEmpty(t, order.Items)
	}

	empty, err := orderService.GetOrdersByUser("no-orders-user")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindUnpaidOrderAndMarkPaid(t *testing.T) {
	db := newTestDB(t)
	orderService := NewOrderService(db)

	userID := insertTestUser(t, db, "buyer@example.com")
	product := insertTestProduct(t, db, "Desk Lamp", 24.99, 100)

	order, err := orderService.CreateOrder(userID, &models.OrderCreation{
		Items: []models.OrderItemInput{
			{ProductID: product.ID, Name: product.Name, Price: product.Price, Quantity: 2, Image: product.Image},
		},
		ShippingAddress: testShippingAddress(),
		TotalPrice:      49.98,
	})
	require.NoError(t, err)

	t.Run("matches on user and total", func(t *testing.T) {
		found, err := orderService.FindUnpaidOrder(userID, 49.98)
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
	})

	t.Run("no match on a different total", func(t *testing.T) {
		_, err := orderService.FindUnpaidOrder(userID, 10.00)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no match on a different user", func(t *testing.T) {
		_, err := orderService.FindUnpaidOrder("someone-else", 49.98)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("mark paid records the payment result", func(t *testing.T) {
		result := &models.PaymentResult{
			ID:           "pi_123",
			Status:       "succeeded",
			EmailAddress: "buyer@example.com",
		}
		require.NoError(t, orderService.MarkPaid(order.ID, result))

		stored, err := orderService.GetOrderByID(order.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsPaid)
		require.NotNil(t, stored.PaidAt)
		require.NotNil(t, stored.PaymentResult)
		assert.Equal(t, "pi_123", stored.PaymentResult.ID)
		assert.Equal(t, "succeeded", stored.PaymentResult.Status)
	})

	t.Run("paid orders stop matching", func(t *testing.T) {
		_, err := orderService.FindUnpaidOrder(userID, 49.98)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("marking an already paid order is rejected", func(t *testing.T) {
		err := orderService.MarkPaid(order.ID, &models.PaymentResult{ID: "pi_456", Status: "succeeded"})
		assert.ErrorIs(t, err, ErrNotFound)

		stored, err := orderService.GetOrderByID(order.ID)
		require.NoError(t, err)
		assert.Equal(t, "pi_123", stored.PaymentResult.ID)
	})
}
