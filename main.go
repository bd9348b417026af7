package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"storefront-backend/config"
	"storefront-backend/database"
	"storefront-backend/internal/api"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// Run database migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Seed sample catalog data in development
	if cfg.SeedProducts {
		if err := database.Seed(db); err != nil {
			log.Fatal("Failed to seed products:", err)
		}
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (cfg.AllowAllOrigins || originAllowed(origin, cfg.AllowedOrigins)) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Security middleware (request size cap + per-IP rate limiting)
	router.Use(middleware.SecurityMiddleware(&middleware.SecurityConfig{
		MaxRequestSize:    1 * 1024 * 1024,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   time.Duration(cfg.RateLimitWindow) * time.Second,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	// Initialize services shared across handlers
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiration)
	orderService := services.NewOrderService(db)
	orderEvents := services.NewOrderEventsService()
	paymentService := services.NewPaymentService(cfg, orderService, orderEvents)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandlers := api.NewAuthHandlers(db, cfg.AdminEmail, cfg.JWTSecret, cfg.JWTExpiration)
	productHandlers := api.NewProductHandlers(db)
	orderHandlers := api.NewOrderHandlers(db)
	paymentHandlers := api.NewPaymentHandlers(paymentService)

	apiGroup := router.Group("/api")
	{
		// Public auth routes
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/signup", authHandlers.Signup)
			auth.POST("/login", authHandlers.Login)
			auth.GET("/me", authMiddleware.AuthRequired(), authHandlers.GetProfile)
		}

		// Product catalog: browsing is public, creation is admin-only
		products := apiGroup.Group("/products")
		{
			products.GET("", productHandlers.GetProducts)
			products.GET("/:id", productHandlers.GetProduct)
			products.POST("", authMiddleware.AuthRequired(),
				authMiddleware.RequireRole("admin"), productHandlers.CreateProduct)
		}

		// Order routes
		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.AuthRequired())
		{
			orders.POST("", orderHandlers.CreateOrder)
			orders.GET("", orderHandlers.GetOrders)
			orders.GET("/:id", orderHandlers.GetOrder)
		}

		// Payment routes; the webhook is called by the provider, not the
		// client, so it is authenticated by signature instead of JWT
		payments := apiGroup.Group("/payments")
		{
			payments.POST("/create-payment-intent", authMiddleware.AuthRequired(), paymentHandlers.CreatePaymentIntent)
			payments.POST("/webhook", paymentHandlers.HandleWebhook)
		}

		// WebSocket order event stream
		apiGroup.GET("/ws/orders", authMiddleware.AuthRequired(), orderEvents.HandleWebSocket)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront API server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server shutdown complete")
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
