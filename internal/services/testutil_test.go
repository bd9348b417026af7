package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"storefront-backend/database"
	"storefront-backend/internal/models"
)

// newTestDB opens an in-memory database with the full schema. A single
// connection keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { db.Close() })
	return db
}

func insertTestUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()

	id := uuid.New().String()
	now := time.Now()
	_, err := db.Exec(
		`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, "Test User", email, "not-a-real-hash", "user", now, now,
	)
	require.NoError(t, err)
	return id
}

func insertTestProduct(t *testing.T, db *sql.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	now := time.Now()
	product := &models.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: "Test description for " + name,
		Price:       price,
		Image:       "/images/test.jpg",
		Category:    models.ProductCategoryElectronics,
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := db.Exec(
		`INSERT INTO products (id, name, description, price, image, category, stock, featured, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Description, product.Price,
		product.Image, product.Category, product.Stock, product.Featured,
		product.CreatedAt, product.UpdatedAt,
	)
	require.NoError(t, err)
	return product
}

func productStock(t *testing.T, db *sql.DB, productID string) int {
	t.Helper()

	var stock int
	err := db.QueryRow("SELECT stock FROM products WHERE id = ?", productID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func testShippingAddress() models.ShippingAddress {
	return models.ShippingAddress{
		FullName:   "Jordan Smith",
		Address:    "1 Main Street",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "USA",
	}
}
