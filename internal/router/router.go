// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pixelmural/mural-backend/internal/config"
	"github.com/pixelmural/mural-backend/internal/feed"
	"github.com/pixelmural/mural-backend/internal/handlers"
	"github.com/pixelmural/mural-backend/internal/middleware"
	"github.com/pixelmural/mural-backend/internal/services"
	"github.com/pixelmural/mural-backend/internal/utils"
)

// Initialize assembles the HTTP surface around an already-bootstrapped
// canvas service and its broadcaster.
func Initialize(
	db *gorm.DB,
	cfg *config.Config,
	canvasService *services.CanvasService,
	broadcaster *feed.Broadcaster,
) *gin.Engine {
	authService := services.NewAuthService(db, cfg)
	paymentService := services.NewPaymentService(cfg)
	receiptService := services.NewReceiptService(db)

	authHandler := handlers.NewAuthHandler(authService)
	canvasHandler := handlers.NewCanvasHandler(canvasService, broadcaster)
	cellHandler := handlers.NewCellHandler(canvasService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, receiptService)
	adminHandler := handlers.NewAdminHandler(canvasService, receiptService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/profile", middleware.AuthRequired(), authHandler.GetProfile)
		}

		canvas := v1.Group("/canvas")
		canvas.Use(middleware.OptionalAuth())
		{
			canvas.GET("", canvasHandler.GetCanvas)
			canvas.GET("/stats", canvasHandler.GetStats)
			canvas.GET("/feed", canvasHandler.StreamFeed)
		}

		cells := v1.Group("/cells")
		{
			cells.GET("/:id", middleware.OptionalAuth(), cellHandler.GetCell)
			cells.GET("/:id/neighbors", middleware.OptionalAuth(), cellHandler.GetNeighbors)
			cells.POST("/:id/quote", middleware.AuthRequired(), cellHandler.QuoteCell)
			cells.POST("/:id/purchase", middleware.AuthRequired(), middleware.PurchaseRateLimit(), cellHandler.PurchaseCell)
			cells.PUT("/:id/artwork", middleware.AuthRequired(), cellHandler.UpdateArtwork)
		}

		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/intent", paymentHandler.CreatePaymentIntent)
		}

		v1.GET("/receipts", middleware.AuthRequired(), paymentHandler.ListReceipts)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
		}
	}

	return r
}
