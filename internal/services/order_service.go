package services

import (
	"database/sql"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"
)

// OrderService handles order creation and payment reconciliation
type OrderService struct {
	db *sql.DB
}

// NewOrderService creates a new order service
func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

// CreateOrder validates stock for every line item, persists the order with
// a frozen snapshot of each item, then decrements product stock.
//
// Validation runs over the whole item list before any write. The stock
// decrement that follows is best-effort per item and is not wrapped in the
// same transaction as the validation pass, so a concurrent checkout can
// still oversell between the two passes.
func (s *OrderService) CreateOrder(userID string, creation *models.OrderCreation) (*models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := utils.ValidateStruct(creation); err != nil {
		return nil, err
	}
	if len(creation.Items) == 0 {
		return nil, utils.ValidationErrors{{Field: "Items", Message: "is required"}}
	}

	// Validation pass: every item checked before anything is written
	for _, item := range creation.Items {
		var stock int
		err := s.db.QueryRow("SELECT stock FROM products WHERE id = ?", item.ProductID).Scan(&stock)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("product %s not found: %w", item.Name, ErrNotFound)
			}
			return nil, fmt.Errorf("failed to check stock: %w", err)
		}
		if stock < item.Quantity {
			return nil, fmt.Errorf("insufficient stock for %s: %w", item.Name, ErrInsufficientStock)
		}
	}

	// Totals are stored at cent precision so provider amounts, which arrive
	// in minor units, compare exactly during reconciliation
	totalPrice := math.Round(creation.TotalPrice*100) / 100

	now := time.Now()
	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		ShippingAddress: creation.ShippingAddress,
		PaymentMethod:   "stripe",
		TotalPrice:      totalPrice,
		IsPaid:          false,
		IsDelivered:     false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The order and its item snapshots persist together, like a single
	// document write
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (
			id, user_id, full_name, address, city, postal_code, country,
			payment_method, total_price, is_paid, is_delivered, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(orderQuery,
		order.ID, order.UserID, order.ShippingAddress.FullName,
		order.ShippingAddress.Address, order.ShippingAddress.City,
		order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.PaymentMethod, order.TotalPrice, order.IsPaid, order.IsDelivered,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, price, quantity, image)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for _, item := range creation.Items {
		orderItem := models.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Image:     item.Image,
		}
		_, err = tx.Exec(itemQuery,
			orderItem.ID, orderItem.OrderID, orderItem.ProductID,
			orderItem.Name, orderItem.Price, orderItem.Quantity, orderItem.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		order.Items = append(order.Items, orderItem)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	// Stock decrement: best-effort per item, no compensating rollback
	for _, item := range creation.Items {
		_, err := s.db.Exec(
			"UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ?",
			item.Quantity, now, item.ProductID,
		)
		if err != nil {
			log.Printf("Warning: failed to decrement stock for product %s: %v", item.ProductID, err)
		}
	}

	return order, nil
}

// GetOrdersByUser retrieves a user's orders, newest first
func (s *OrderService) GetOrdersByUser(userID string) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, full_name, address, city, postal_code, country,
			   payment_method, payment_id, payment_status, payment_email,
			   total_price, is_paid, paid_at, is_delivered, delivered_at,
			   created_at, updated_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for _, order := range orders {
		items, err := s.getOrderItems(order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

// GetOrderByID retrieves one order with its items
func (s *OrderService) GetOrderByID(orderID string) (*models.Order, error) {
	query := `
		SELECT id, user_id, full_name, address, city, postal_code, country,
			   payment_method, payment_id, payment_status, payment_email,
			   total_price, is_paid, paid_at, is_delivered, delivered_at,
			   created_at, updated_at
		FROM orders
		WHERE id = ?
	`
	row := s.db.QueryRow(query, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order not found: %w", ErrNotFound)
		}
		return nil, err
	}

	items, err := s.getOrderItems(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// FindUnpaidOrder finds the most recently created unpaid order matching the
// given user and total. Used by webhook reconciliation; the unpaid filter is
// what makes webhook redelivery a safe no-op.
func (s *OrderService) FindUnpaidOrder(userID string, totalPrice float64) (*models.Order, error) {
	query := `
		SELECT id, user_id, full_name, address, city, postal_code, country,
			   payment_method, payment_id, payment_status, payment_email,
			   total_price, is_paid, paid_at, is_delivered, delivered_at,
			   created_at, updated_at
		FROM orders
		WHERE user_id = ? AND total_price = ? AND is_paid = 0
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := s.db.QueryRow(query, userID, totalPrice)
	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no unpaid order matches: %w", ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

// MarkPaid transitions an order from unpaid to paid and records the
// provider's payment result. The unpaid guard in the WHERE clause keeps the
// transition one-way.
func (s *OrderService) MarkPaid(orderID string, result *models.PaymentResult) error {
	now := time.Now()
	query := `
		UPDATE orders
		SET is_paid = 1, paid_at = ?, payment_id = ?, payment_status = ?,
			payment_email = ?, updated_at = ?
		WHERE id = ? AND is_paid = 0
	`
	res, err := s.db.Exec(query, now, result.ID, result.Status, result.EmailAddress, now, orderID)
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("order %s is not unpaid: %w", orderID, ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}
	var paymentID, paymentStatus, paymentEmail sql.NullString
	var paidAt, deliveredAt sql.NullTime

	err := row.Scan(
		&order.ID, &order.UserID, &order.ShippingAddress.FullName,
		&order.ShippingAddress.Address, &order.ShippingAddress.City,
		&order.ShippingAddress.PostalCode, &order.ShippingAddress.Country,
		&order.PaymentMethod, &paymentID, &paymentStatus, &paymentEmail,
		&order.TotalPrice, &order.IsPaid, &paidAt, &order.IsDelivered,
		&deliveredAt, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentID.Valid {
		order.PaymentResult = &models.PaymentResult{
			ID:           paymentID.String,
			Status:       paymentStatus.String,
			EmailAddress: paymentEmail.String,
		}
	}
	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}
	if deliveredAt.Valid {
		order.DeliveredAt = &deliveredAt.Time
	}

	return order, nil
}

func (s *OrderService) getOrderItems(orderID string) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, price, quantity, image
		FROM order_items
		WHERE order_id = ?
	`
	rows, err := s.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID,
			&item.Name, &item.Price, &item.Quantity, &item.Image,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
