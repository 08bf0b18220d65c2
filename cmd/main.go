package main

import (
	"context"
	"log"
	"time"

	"catalog-sync-service/internal/allocator"
	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/database"
	"catalog-sync-service/internal/handlers"
	"catalog-sync-service/internal/middleware"
	"catalog-sync-service/internal/repository"
	"catalog-sync-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Connect to database and run migrations
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Reservation store: Redis when reachable, in-process otherwise. The
	// in-process fallback keeps single-instance deployments working but
	// does not share reservations across replicas.
	var store allocator.ReservationStore = allocator.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Failed to parse Redis URL: %v (using in-process reservations)", err)
		} else {
			redisClient := redis.NewClient(redisOpts)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("WARNING: Failed to connect to Redis: %v (using in-process reservations)", err)
			} else {
				store = allocator.NewRedisStore(redisClient)
				log.Println("Redis connected, using shared code reservations")
			}
			cancel()
		}
	}

	// Initialize repositories
	attrRepo := repository.NewAttributeRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	// Initialize remote catalog client
	remoteClient := clients.NewHTTPClient(cfg.RemoteCatalogURL, cfg.RemoteCatalogToken, cfg.RemoteRateLimit)

	// Initialize services
	alloc := allocator.New(store, logger)
	alloc.SetTTL(cfg.ReservationTTL)
	uploadService := services.NewUploadService(orderRepo, uploadRepo, attrRepo, remoteClient, cfg.UploadGroupDelay, logger)
	statusTracker := services.NewStatusTracker(orderRepo, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	variantHandler := handlers.NewVariantHandler(attrRepo)
	codeHandler := handlers.NewCodeHandler(alloc, orderRepo)
	uploadHandler := handlers.NewUploadHandler(uploadService, statusTracker, orderRepo, uploadRepo)

	router := setupRouter(cfg, healthHandler, variantHandler, codeHandler, uploadHandler)

	logger.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}).Info("Catalog Sync Service starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	variantHandler *handlers.VariantHandler,
	codeHandler *handlers.CodeHandler,
	uploadHandler *handlers.UploadHandler,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.TenantMiddleware())

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API routes - require tenant ID
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireTenantID())
	{
		v1.GET("/attributes", variantHandler.ListAttributes)

		variantRoutes := v1.Group("/variants")
		{
			variantRoutes.POST("/combinations", variantHandler.Combinations)
			variantRoutes.POST("/parse", variantHandler.Parse)
		}

		codes := v1.Group("/codes")
		{
			codes.POST("/propose", codeHandler.Propose)
			codes.POST("/reserve", codeHandler.Reserve)
			codes.POST("/release", codeHandler.Release)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("/:id/items", uploadHandler.ListItems)
			orders.POST("/:id/upload", uploadHandler.Upload)
			orders.GET("/:id/sync-status", uploadHandler.SyncStatus)
			orders.GET("/:id/upload-jobs", uploadHandler.ListJobs)
		}

		uploadJobs := v1.Group("/upload-jobs")
		{
			uploadJobs.GET("/:id/logs", uploadHandler.JobLogs)
		}
	}

	return router
}
