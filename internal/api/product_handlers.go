package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/models"
	"storefront-backend/internal/services"
	"storefront-backend/internal/utils"
)

// ProductHandlers contains all product catalog handlers
type ProductHandlers struct {
	productService *services.ProductService
}

// NewProductHandlers creates new product handlers
func NewProductHandlers(db *sql.DB) *ProductHandlers {
	return &ProductHandlers{
		productService: services.NewProductService(db),
	}
}

// GetProducts returns a filtered, paginated page of the catalog
func (h *ProductHandlers) GetProducts(c *gin.Context) {
	query := &models.ProductQuery{
		Page:      parseIntQuery(c, "page", 1),
		Limit:     parseIntQuery(c, "limit", 12),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	if featured := c.Query("featured"); featured != "" {
		value := featured == "true"
		query.Featured = &value
	}

	products, pagination, err := h.productService.GetProducts(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": pagination,
	})
}

// GetProduct returns one product by ID
func (h *ProductHandlers) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProductByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a product to the catalog. Admin only.
func (h *ProductHandlers) CreateProduct(c *gin.Context) {
	var req models.ProductCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}

	product, err := h.productService.CreateProduct(&req)
	if err != nil {
		var verrs utils.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verrs.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
