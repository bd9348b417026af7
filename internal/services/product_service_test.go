package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"
)

func TestGetProducts(t *testing.T) {
	db := newTestDB(t)
	productService := NewProductService(db)

	insertTestProduct(t, db, "Wireless Headphones", 199.99, 10)
	insertTestProduct(t, db, "Mechanical Keyboard", 89.99, 5)
	laptop := insertTestProduct(t, db, "Laptop Stand", 39.99, 0)

	_, err := db.Exec("UPDATE products SET featured = 1 WHERE id = ?", laptop.ID)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE products SET category = 'home' WHERE id = ?", laptop.ID)
	require.NoError(t, err)

	t.Run("returns all products with pagination", func(t *testing.T) {
		products, pagination, err := productService.GetProducts(&models.ProductQuery{})
		require.NoError(t, err)

		assert.Len(t, products, 3)
		assert.Equal(t, 3, pagination.Total)
		assert.Equal(t, 1, pagination.Pages)
		assert.Equal(t, 1, pagination.Page)
	})

	t.Run("paginates", func(t *testing.T) {
		products, pagination, err := productService.GetProducts(&models.ProductQuery{Page: 2, Limit: 2})
		require.NoError(t, err)

		assert.Len(t, products, 1)
		assert.Equal(t, 3, pagination.Total)
		assert.Equal(t, 2, pagination.Pages)
		assert.Equal(t, 2, pagination.Page)
	})

	t.Run("filters by category", func(t *testing.T) {
		products, pagination, err := productService.GetProducts(&models.ProductQuery{Category: "home"})
		require.NoError(t, err)

		require.Len(t, products, 1)
		assert.Equal(t, "Laptop Stand", products[0].Name)
		assert.Equal(t, 1, pagination.Total)
	})

	t.Run("category all means no filter", func(t *testing.T) {
		products, _, err := productService.GetProducts(&models.ProductQuery{Category: "all"})
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("searches name case-insensitively", func(t *testing.T) {
		products, _, err := productService.GetProducts(&models.ProductQuery{Search: "KEYBOARD"})
		require.NoError(t, err)

		require.Len(t, products, 1)
		assert.Equal(t, "Mechanical Keyboard", products[0].Name)
	})

	t.Run("filters by featured", func(t *testing.T) {
		featured := true
		products, _, err := productService.GetProducts(&models.ProductQuery{Featured: &featured})
		require.NoError(t, err)

		require.Len(t, products, 1)
		assert.Equal(t, "Laptop Stand", products[0].Name)
	})

	t.Run("sorts by price ascending", func(t *testing.T) {
		products, _, err := productService.GetProducts(&models.ProductQuery{SortBy: "price", SortOrder: "asc"})
		require.NoError(t, err)

		require.Len(t, products, 3)
		assert.Equal(t, "Laptop Stand", products[0].Name)
		assert.Equal(t, "Wireless Headphones", products[2].Name)
	})

	t.Run("unknown sort column falls back to created_at", func(t *testing.T) {
		products, _, err := productService.GetProducts(&models.ProductQuery{SortBy: "price; DROP TABLE products"})
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})
}

func TestGetProductByID(t *testing.T) {
	db := newTestDB(t)
	productService := NewProductService(db)

	created := insertTestProduct(t, db, "Wireless Headphones", 199.99, 10)

	t.Run("found", func(t *testing.T) {
		product, err := productService.GetProductByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Wireless Headphones", product.Name)
		assert.InDelta(t, 199.99, product.Price, 0.001)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := productService.GetProductByID("missing-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateProduct(t *testing.T) {
	db := newTestDB(t)
	productService := NewProductService(db)

	t.Run("creates a valid product", func(t *testing.T) {
		product, err := productService.CreateProduct(&models.ProductCreation{
			Name:        "Yoga Mat",
			Description: "Non-slip yoga mat",
			Price:       29.99,
			Image:       "/images/yoga-mat.jpg",
			Category:    models.ProductCategorySports,
			Stock:       40,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, product.ID)

		stored, err := productService.GetProductByID(product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Yoga Mat", stored.Name)
		assert.Equal(t, 40, stored.Stock)
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		_, err := productService.CreateProduct(&models.ProductCreation{
			Name:        "Mystery Item",
			Description: "No category fits",
			Price:       9.99,
			Image:       "/images/mystery.jpg",
			Category:    "gadgets",
			Stock:       1,
		})

		var verrs utils.ValidationErrors
		require.True(t, errors.As(err, &verrs))
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := productService.CreateProduct(&models.ProductCreation{})

		var verrs utils.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.NotEmpty(t, verrs)
	})
}
