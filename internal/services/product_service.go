package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"
)

// ProductService handles product catalog business logic
type ProductService struct {
	db *sql.DB
}

// NewProductService creates a new product service
func NewProductService(db *sql.DB) *ProductService {
	return &ProductService{db: db}
}

// sortColumns whitelists the columns catalog queries may sort by
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"price":     "price",
	"stock":     "stock",
}

// GetProducts retrieves a filtered, sorted page of products
func (s *ProductService) GetProducts(q *models.ProductQuery) ([]*models.Product, *models.Pagination, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 12
	}

	where := "WHERE 1=1"
	var args []interface{}

	if q.Category != "" && q.Category != "all" {
		where += " AND category = ?"
		args = append(args, q.Category)
	}
	if q.Search != "" {
		where += " AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)"
		searchTerm := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, searchTerm, searchTerm)
	}
	if q.Featured != nil {
		where += " AND featured = ?"
		args = append(args, *q.Featured)
	}

	sortColumn, ok := sortColumns[q.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		direction = "ASC"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, nil, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, price, image, category, stock, featured, created_at, updated_at
		FROM products %s
		ORDER BY %s %s
		LIMIT ? OFFSET ?
	`, where, sortColumn, direction)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product := &models.Product{}
		err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Image, &product.Category, &product.Stock, &product.Featured,
			&product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating products: %w", err)
	}

	pages := (total + q.Limit - 1) / q.Limit
	pagination := &models.Pagination{
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
		Pages: pages,
	}

	return products, pagination, nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(productID string) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT id, name, description, price, image, category, stock, featured, created_at, updated_at
		FROM products WHERE id = ?
	`
	err := s.db.QueryRow(query, productID).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Image, &product.Category, &product.Stock, &product.Featured,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// CreateProduct creates a new catalog product
func (s *ProductService) CreateProduct(creation *models.ProductCreation) (*models.Product, error) {
	if err := utils.ValidateStruct(creation); err != nil {
		return nil, err
	}
	if !models.IsValidCategory(string(creation.Category)) {
		return nil, utils.ValidationErrors{{Field: "Category", Message: "must be one of the supported categories"}}
	}

	now := time.Now()
	product := &models.Product{
		ID:          uuid.New().String(),
		Name:        creation.Name,
		Description: creation.Description,
		Price:       creation.Price,
		Image:       creation.Image,
		Category:    creation.Category,
		Stock:       creation.Stock,
		Featured:    creation.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO products (id, name, description, price, image, category, stock, featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		product.ID, product.Name, product.Description, product.Price,
		product.Image, product.Category, product.Stock, product.Featured,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}
