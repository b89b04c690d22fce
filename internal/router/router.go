// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/cache"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/handlers"
	"github.com/javajoker/storefront-backend/internal/middleware"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	registry := cache.NewRegistry(cfg.Cache)
	storageService, _ := services.NewStorageService(cfg)
	imageService := services.NewImageService(cfg)
	notificationService := services.NewNotificationService(db, cfg)
	paymentService := services.NewPaymentService(cfg)

	authService := services.NewAuthService(db, cfg)
	catalogService := services.NewCatalogService(db, registry, storageService)
	variationService := services.NewVariationService(db, registry)
	taxonomyService := services.NewTaxonomyService(db, registry, storageService)
	attributeService := services.NewAttributeService(db, registry)
	cartService := services.NewCartService(db, cfg.Checkout.CartTTL)
	orderService := services.NewOrderService(db, cfg, registry, paymentService, notificationService)
	adminService := services.NewAdminService(db, cfg)
	storeService := services.NewStoreService(db, registry)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, variationService, taxonomyService, attributeService)
	productHandler := handlers.NewProductHandler(catalogService, variationService)
	taxonomyHandler := handlers.NewTaxonomyHandler(taxonomyService)
	attributeHandler := handlers.NewAttributeHandler(attributeService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(orderService)
	orderHandler := handlers.NewOrderHandler(orderService)
	uploadHandler := handlers.NewUploadHandler(imageService, storageService, cfg)
	storeHandler := handlers.NewStoreHandler(storeService)
	adminHandler := handlers.NewAdminHandler(adminService, notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Storefront catalog routes (public, cached)
		catalog := v1.Group("/catalog")
		{
			catalog.GET("/products", catalogHandler.GetProducts)
			catalog.GET("/products/:slug", catalogHandler.GetProduct)
			catalog.GET("/products/:slug/related", catalogHandler.GetRelatedProducts)
			catalog.GET("/products/:slug/availability", catalogHandler.GetAvailability)
			catalog.GET("/products/featured", catalogHandler.GetFeaturedProducts)
			catalog.GET("/products/new-arrivals", catalogHandler.GetNewArrivals)
			catalog.GET("/attributes", catalogHandler.GetAttributes)

			// Brand/category/collection listings share one handler
			catalog.GET("/:kind", catalogHandler.GetTaxonomy)
			catalog.GET("/:kind/:slug", catalogHandler.GetTaxonomyEntry)
		}

		// Guest cart routes
		cart := v1.Group("/cart")
		{
			cart.POST("", cartHandler.CreateCart)
			cart.GET("/:token", cartHandler.GetCart)
			cart.DELETE("/:token", cartHandler.ClearCart)
			cart.POST("/:token/items", cartHandler.AddItem)
			cart.PUT("/:token/items/:itemId", cartHandler.UpdateItem)
			cart.DELETE("/:token/items/:itemId", cartHandler.RemoveItem)
		}

		// Checkout routes
		checkout := v1.Group("/checkout")
		checkout.Use(middleware.CheckoutRateLimit())
		{
			checkout.POST("", checkoutHandler.PlaceOrder)
			checkout.POST("/confirm", checkoutHandler.ConfirmPayment)
		}

		// Guest order tracking
		v1.GET("/orders/:number", checkoutHandler.TrackOrder)

		// Store locations and shipping countries (public)
		v1.GET("/stores", storeHandler.GetStores)
		v1.GET("/countries", storeHandler.GetCountries)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		admin.Use(middleware.AuditLogMiddleware(db))
		{
			// Dashboard
			dashboard := admin.Group("/dashboard")
			{
				dashboard.GET("/stats", adminHandler.GetDashboardStats)
			}

			// Product management
			adminProducts := admin.Group("/products")
			{
				adminProducts.GET("", productHandler.GetProducts)
				adminProducts.POST("", productHandler.CreateProduct)
				adminProducts.GET("/:id", productHandler.GetProduct)
				adminProducts.PUT("/:id", productHandler.UpdateProduct)
				adminProducts.DELETE("/:id", middleware.AdminOnly(), productHandler.DeleteProduct)
				adminProducts.PUT("/:id/stock", productHandler.UpdateStock)
				adminProducts.POST("/:id/variations", productHandler.CreateVariation)
				adminProducts.PUT("/:id/variations/:variationId", productHandler.UpdateVariation)
				adminProducts.DELETE("/:id/variations/:variationId", middleware.AdminOnly(), productHandler.DeleteVariation)
			}

			// Attribute dictionary management
			adminAttributes := admin.Group("/attributes")
			{
				adminAttributes.GET("", attributeHandler.GetAttributes)
				adminAttributes.POST("", attributeHandler.CreateAttribute)
				adminAttributes.GET("/:id", attributeHandler.GetAttribute)
				adminAttributes.PUT("/:id", attributeHandler.UpdateAttribute)
				adminAttributes.DELETE("/:id", middleware.AdminOnly(), attributeHandler.DeleteAttribute)
				adminAttributes.POST("/:id/values", attributeHandler.AddValue)
				adminAttributes.PUT("/:id/values/:valueId", attributeHandler.UpdateValue)
				adminAttributes.DELETE("/:id/values/:valueId", middleware.AdminOnly(), attributeHandler.DeleteValue)
			}

			// Order management
			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", orderHandler.GetOrders)
				adminOrders.GET("/:id", orderHandler.GetOrder)
				adminOrders.PUT("/:id/status", orderHandler.UpdateOrderStatus)
			}

			// Store location management
			adminStores := admin.Group("/stores")
			{
				adminStores.GET("", storeHandler.GetLocations)
				adminStores.POST("", storeHandler.CreateLocation)
				adminStores.GET("/:id", storeHandler.GetLocation)
				adminStores.PUT("/:id", storeHandler.UpdateLocation)
				adminStores.DELETE("/:id", middleware.AdminOnly(), storeHandler.DeleteLocation)
			}

			// Shipping country management
			adminCountries := admin.Group("/countries")
			{
				adminCountries.GET("", storeHandler.ListCountries)
				adminCountries.PUT("/:code", middleware.AdminOnly(), storeHandler.SetCountryEnabled)
			}

			// Image uploads
			adminUploads := admin.Group("/uploads")
			{
				adminUploads.POST("/images", middleware.UploadRateLimit(), uploadHandler.UploadImages)
			}

			// Settings management
			adminSettings := admin.Group("/settings")
			{
				adminSettings.GET("", adminHandler.GetSettings)
				adminSettings.PUT("", middleware.AdminOnly(), adminHandler.UpdateSettings)
			}

			// Audit logs
			admin.GET("/audit-logs", middleware.AdminOnly(), adminHandler.GetAuditLogs)

			// Notifications
			adminNotifications := admin.Group("/notifications")
			{
				adminNotifications.GET("", adminHandler.GetNotifications)
				adminNotifications.PUT("/:id/read", adminHandler.MarkNotificationRead)
			}

			// Brand/category/collection management shares one handler
			admin.GET("/:kind", taxonomyHandler.List)
			admin.POST("/:kind", taxonomyHandler.Create)
			admin.PUT("/:kind/:id", taxonomyHandler.Update)
			admin.DELETE("/:kind/:id", middleware.AdminOnly(), taxonomyHandler.Delete)
		}
	}

	// Static file serving when media lives on local disk
	if cfg.AWS.AccessKeyID == "" {
		r.Static("/uploads", cfg.Media.LocalDir)
	}

	return r
}
