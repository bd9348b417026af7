package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/models"
	"storefront-backend/internal/services"
	"storefront-backend/internal/utils"
)

// OrderHandlers contains all order-related handlers
type OrderHandlers struct {
	orderService *services.OrderService
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(db *sql.DB) *OrderHandlers {
	return &OrderHandlers{
		orderService: services.NewOrderService(db),
	}
}

// CreateOrder places an order for the authenticated user
func (h *OrderHandlers) CreateOrder(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.OrderCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	order, err := h.orderService.CreateOrder(userID, &req)
	if err != nil {
		var verrs utils.ValidationErrors
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		case errors.As(err, &verrs):
			c.JSON(http.StatusBadRequest, gin.H{"error": verrs.Error()})
		case errors.Is(err, services.ErrNotFound),
			errors.Is(err, services.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrders returns the authenticated user's order history, newest first
func (h *OrderHandlers) GetOrders(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := h.orderService.GetOrdersByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder returns one of the authenticated user's orders by ID
func (h *OrderHandlers) GetOrder(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.orderService.GetOrderByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	// Owners and admins only
	if order.UserID != userID && c.GetString("userRole") != string(models.UserRoleAdmin) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
