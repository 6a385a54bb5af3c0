// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pixelmural/mural-backend/internal/config"
	"github.com/pixelmural/mural-backend/internal/database"
	"github.com/pixelmural/mural-backend/internal/feed"
	"github.com/pixelmural/mural-backend/internal/grid"
	"github.com/pixelmural/mural-backend/internal/i18n"
	"github.com/pixelmural/mural-backend/internal/router"
	"github.com/pixelmural/mural-backend/internal/services"
	"github.com/pixelmural/mural-backend/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	// Run database migrations unless disabled (managed schemas)
	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}

		if err := database.SeedInitialData(db); err != nil {
			log.Fatal("Failed to seed initial data:", err)
		}
	}

	// Initialize i18n
	if err := i18n.Initialize(); err != nil {
		log.Fatal("Failed to initialize i18n:", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Assemble the canvas
	board, err := grid.NewBoard(grid.Dimensions{
		Width:  cfg.Grid.Width,
		Height: cfg.Grid.Height,
	}, cfg.Grid.InitialPrice)
	if err != nil {
		log.Fatal("Failed to create canvas board:", err)
	}

	cellStore := store.NewGormStore(db)
	broadcaster := feed.NewBroadcaster()
	paymentService := services.NewPaymentService(cfg)
	receiptService := services.NewReceiptService(db)

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	canvasService := services.NewCanvasService(board, cellStore, broadcaster, paymentService, receiptService, storageService)

	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()

	if err := canvasService.Bootstrap(feedCtx); err != nil {
		log.Fatal("Failed to bootstrap canvas:", err)
	}
	go canvasService.Run(feedCtx)

	// Initialize router
	r := router.Initialize(db, cfg, canvasService, broadcaster)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopFeed()

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
