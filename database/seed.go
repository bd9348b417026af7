package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type seedProduct struct {
	Name        string
	Description string
	Price       float64
	Image       string
	Category    string
	Stock       int
	Featured    bool
}

var sampleProducts = []seedProduct{
	{
		Name:        "Wireless Bluetooth Headphones",
		Description: "Premium noise-canceling wireless headphones with 30-hour battery life and crystal-clear sound quality.",
		Price:       199.99,
		Image:       "https://images.pexels.com/photos/3394650/pexels-photo-3394650.jpeg",
		Category:    "electronics",
		Stock:       50,
		Featured:    true,
	},
	{
		Name:        "Smart Fitness Watch",
		Description: "Track your health and fitness goals with this advanced smartwatch featuring heart rate monitoring, GPS, and sleep tracking.",
		Price:       299.99,
		Image:       "https://images.pexels.com/photos/437037/pexels-photo-437037.jpeg",
		Category:    "electronics",
		Stock:       30,
		Featured:    true,
	},
	{
		Name:        "Organic Cotton T-Shirt",
		Description: "Comfortable and sustainable organic cotton t-shirt available in multiple colors and sizes.",
		Price:       24.99,
		Image:       "https://images.pexels.com/photos/1020585/pexels-photo-1020585.jpeg",
		Category:    "clothing",
		Stock:       100,
	},
	{
		Name:        "Professional Camera",
		Description: "High-resolution digital camera perfect for photography enthusiasts and professionals.",
		Price:       899.99,
		Image:       "https://images.pexels.com/photos/51383/photo-camera-subject-photographer-51383.jpeg",
		Category:    "electronics",
		Stock:       15,
		Featured:    true,
	},
	{
		Name:        "Best-Selling Novel",
		Description: "An engaging and thought-provoking novel that has captivated readers worldwide.",
		Price:       14.99,
		Image:       "https://images.pexels.com/photos/1261180/pexels-photo-1261180.jpeg",
		Category:    "books",
		Stock:       200,
	},
	{
		Name:        "Yoga Mat Premium",
		Description: "Non-slip yoga mat made from eco-friendly materials, perfect for all types of yoga practice.",
		Price:       49.99,
		Image:       "https://images.pexels.com/photos/3822906/pexels-photo-3822906.jpeg",
		Category:    "sports",
		Stock:       75,
	},
	{
		Name:        "Smart Home Speaker",
		Description: "Voice-controlled smart speaker with premium sound quality and built-in virtual assistant.",
		Price:       129.99,
		Image:       "https://images.pexels.com/photos/4790263/pexels-photo-4790263.jpeg",
		Category:    "electronics",
		Stock:       40,
		Featured:    true,
	},
	{
		Name:        "Skincare Gift Set",
		Description: "Luxurious skincare set with cleanser, toner, serum, and moisturizer for all skin types.",
		Price:       79.99,
		Image:       "https://images.pexels.com/photos/2533266/pexels-photo-2533266.jpeg",
		Category:    "beauty",
		Stock:       60,
	},
}

// Seed inserts the sample product catalog if the products table is empty
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := `
		INSERT INTO products (id, name, description, price, image, category, stock, featured, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	for _, p := range sampleProducts {
		_, err := db.Exec(query,
			uuid.New().String(), p.Name, p.Description, p.Price,
			p.Image, p.Category, p.Stock, p.Featured, now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", p.Name, err)
		}
	}

	log.Printf("Seeded %d sample products", len(sampleProducts))
	return nil
}
