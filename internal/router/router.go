// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/innovatech/storefront-backend/internal/config"
	"github.com/innovatech/storefront-backend/internal/database"
	"github.com/innovatech/storefront-backend/internal/handlers"
	"github.com/innovatech/storefront-backend/internal/middleware"
	"github.com/innovatech/storefront-backend/internal/services"
	"github.com/innovatech/storefront-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	pdfService := services.NewPDFService()
	notificationService := services.NewNotificationService(cfg, pdfService)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage service")
	}

	retryConfig := database.RetryConfig{
		MaxAttempts: cfg.Checkout.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Checkout.BackoffMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Checkout.MaxBackoffMs) * time.Millisecond,
	}

	authService := services.NewAuthService(db, cfg.JWT)
	productService := services.NewProductService(db)
	promotionService := services.NewPromotionService(db)
	cartService := services.NewCartService(db)
	couponService := services.NewCouponService(db)
	favoriteService := services.NewFavoriteService(db)
	checkoutService := services.NewCheckoutService(db, couponService, notificationService, cfg.Checkout.TaxRate, retryConfig)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cartService, couponService, favoriteService, notificationService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	cartHandler := handlers.NewCartHandler(cartService, couponService, checkoutService)
	purchaseHandler := handlers.NewPurchaseHandler(checkoutService, authService, pdfService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService, cartService, couponService)
	couponHandler := handlers.NewCouponHandler(couponService)
	promotionHandler := handlers.NewPromotionHandler(promotionService)
	contactHandler := handlers.NewContactHandler(notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
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
		auth.Use(middleware.AnonymousIdentity())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/profile", middleware.AuthRequired(), authHandler.GetProfile)
			auth.PUT("/profile", middleware.AuthRequired(), authHandler.UpdateProfile)
		}

		// Catalog routes
		products := v1.Group("/products")
		products.Use(middleware.OptionalAuth())
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
		}
		v1.GET("/categories", productHandler.GetCategories)
		v1.GET("/coupons/validate/:code", couponHandler.ValidateCoupon)

		// Cart routes serve both registered and anonymous identities.
		cart := v1.Group("/cart")
		cart.Use(middleware.OptionalAuth())
		cart.Use(middleware.AnonymousIdentity())
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/add", cartHandler.AddItem)
			cart.POST("/update-quantity", cartHandler.UpdateQuantity)
			cart.POST("/remove-item", cartHandler.RemoveItem)
			cart.POST("/apply-coupon", cartHandler.ApplyCoupon)
			cart.DELETE("/coupon", cartHandler.ClearCoupon)
			cart.POST("/pay", middleware.AuthRequired(), middleware.CheckoutRateLimit(), cartHandler.Pay)
		}

		// Favorites
		favorites := v1.Group("/favorites")
		favorites.Use(middleware.OptionalAuth())
		favorites.Use(middleware.AnonymousIdentity())
		{
			favorites.GET("", favoriteHandler.GetFavorites)
			favorites.POST("/toggle", favoriteHandler.ToggleFavorite)
			favorites.POST("/merge", middleware.AuthRequired(), favoriteHandler.Merge)
		}

		// Purchase history
		purchases := v1.Group("/purchases")
		purchases.Use(middleware.AuthRequired())
		{
			purchases.GET("", purchaseHandler.GetMyPurchases)
			purchases.GET("/:id", purchaseHandler.GetPurchase)
			purchases.GET("/:id/invoice", purchaseHandler.DownloadInvoice)
		}

		// Contact form
		v1.POST("/contact", middleware.ContactRateLimit(), contactHandler.SubmitContact)

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		admin.Use(middleware.AdminRequired())
		{
			admin.POST("/products", productHandler.CreateProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)
			admin.DELETE("/products/:id", productHandler.DeleteProduct)
			admin.POST("/products/image", productHandler.UploadImage)

			admin.POST("/categories", productHandler.CreateCategory)

			admin.GET("/coupons", couponHandler.GetCoupons)
			admin.POST("/coupons", couponHandler.CreateCoupon)
			admin.PUT("/coupons/:code", couponHandler.UpdateCoupon)
			admin.DELETE("/coupons/:code", couponHandler.DeleteCoupon)

			admin.GET("/purchases", purchaseHandler.GetAllPurchases)

			admin.GET("/promotions", promotionHandler.GetPromotions)
			admin.POST("/promotions", promotionHandler.CreatePromotion)
			admin.PUT("/promotions/:id", promotionHandler.UpdatePromotion)
			admin.DELETE("/promotions/:id", promotionHandler.DeletePromotion)
		}
	}

	return r
}
