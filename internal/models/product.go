package models

import "time"

// ProductCategory represents product categories
type ProductCategory string

const (
	ProductCategoryElectronics ProductCategory = "electronics"
	ProductCategoryClothing    ProductCategory = "clothing"
	ProductCategoryBooks       ProductCategory = "books"
	ProductCategoryHome        ProductCategory = "home"
	ProductCategorySports      ProductCategory = "sports"
	ProductCategoryBeauty      ProductCategory = "beauty"
	ProductCategoryToys        ProductCategory = "toys"
)

// ProductCategories lists all valid categories
var ProductCategories = []ProductCategory{
	ProductCategoryElectronics,
	ProductCategoryClothing,
	ProductCategoryBooks,
	ProductCategoryHome,
	ProductCategorySports,
	ProductCategoryBeauty,
	ProductCategoryToys,
}

// IsValidCategory checks whether the given category is part of the fixed set
func IsValidCategory(category string) bool {
	for _, c := range ProductCategories {
		if string(c) == category {
			return true
		}
	}
	return false
}

// Product represents a product in the catalog
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       float64         `json:"price" db:"price"`
	Image       string          `json:"image" db:"image"`
	Category    ProductCategory `json:"category" db:"category"`
	Stock       int             `json:"stock" db:"stock"`
	Featured    bool            `json:"featured" db:"featured"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProductCreation represents data for creating a new product
type ProductCreation struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description" validate:"required,max=2000"`
	Price       float64         `json:"price" validate:"gte=0"`
	Image       string          `json:"image" validate:"required"`
	Category    ProductCategory `json:"category" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Featured    bool            `json:"featured"`
}

// ProductQuery holds catalog listing parameters
type ProductQuery struct {
	Page      int
	Limit     int
	Category  string
	Search    string
	SortBy    string
	SortOrder string
	Featured  *bool
}

// Pagination describes a page of results
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// IsInStock checks if the product has sufficient stock
func (p *Product) IsInStock(quantity int) bool {
	return p.Stock >= quantity
}
