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

	"github.com/crestviewcap/positions/config"
	"github.com/crestviewcap/positions/internal/cache"
	"github.com/crestviewcap/positions/internal/database"
	"github.com/crestviewcap/positions/internal/handlers"
	"github.com/crestviewcap/positions/internal/middleware"
	"github.com/crestviewcap/positions/internal/repository"
	"github.com/crestviewcap/positions/internal/scheduler"
	"github.com/crestviewcap/positions/internal/services"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize cache
	memCache := cache.NewMemoryCache(5 * time.Minute)

	// Initialize repositories
	positionRepo := repository.NewPositionRepository(db.Pool)
	summaryRepo := repository.NewSummaryRepository(db.Pool)

	// Initialize services
	loader := services.NewLoader(positionRepo, cfg.BatchSize)
	aggregator := services.NewAggregator(positionRepo, summaryRepo)
	pipeline := services.NewPipeline(loader, aggregator, cfg.StatusDir)

	// Initialize handlers
	positionHandler := handlers.NewPositionHandler(positionRepo)
	summaryHandler := handlers.NewSummaryHandler(summaryRepo, memCache)
	ingestHandler := handlers.NewIngestHandler(pipeline, memCache, cfg.InboxDir)

	// Optional out-of-band inbox scanner
	var sched *scheduler.Scheduler
	if cfg.IngestCron != "" {
		sched, err = scheduler.New(cfg.IngestCron, cfg.InboxDir, pipeline)
		if err != nil {
			log.Fatalf("Failed to configure inbox scheduler: %v", err)
		}
		sched.Start()
	}

	// Setup Gin router
	router := gin.Default()

	// Apply global middleware
	router.Use(middleware.ValidateToken(cfg.APIToken))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Read routes
	router.GET("/positions", positionHandler.List)
	router.GET("/positions/dates", positionHandler.ListDates)
	router.GET("/summary", summaryHandler.List)

	// Pipeline routes
	router.POST("/ingest", ingestHandler.Upload)
	router.POST("/aggregate", ingestHandler.Aggregate)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	fmt.Println("Server exited")
}
