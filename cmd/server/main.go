package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jwliao/babymall-backend/config"
	"github.com/jwliao/babymall-backend/internal/app/controller"
	"github.com/jwliao/babymall-backend/internal/app/repository"
	"github.com/jwliao/babymall-backend/internal/app/service"
	"github.com/jwliao/babymall-backend/internal/cache"
	"github.com/jwliao/babymall-backend/internal/db"
	"github.com/jwliao/babymall-backend/internal/middleware"
	"github.com/jwliao/babymall-backend/internal/router"
	"github.com/jwliao/babymall-backend/internal/scheduler"
	"github.com/jwliao/babymall-backend/internal/storage"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"github.com/jwliao/babymall-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting BABYMALL Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	attributeRepo := repository.NewAttributeRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	// Category service options: third-level guard policy and the optional
	// Redis listing cache
	categoryOpts := []service.CategoryServiceOption{
		service.WithThirdLevelGuard(cfg.Catalog.GuardThirdLevel),
	}
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without category cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
			categoryOpts = append(categoryOpts, service.WithCategoryCache(cache.NewCategoryCache(redis.GetClient())))
		}
	}

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	categoryService := service.NewCategoryService(categoryRepo, attributeRepo, productRepo, db.GetDB(), categoryOpts...)
	attributeService := service.NewAttributeService(attributeRepo, categoryRepo)
	productService := service.NewProductService(productRepo, categoryRepo, attributeRepo)
	exportService := service.NewExportService(productRepo)

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	categoryController := controller.NewCategoryController(categoryService)
	attributeController := controller.NewAttributeController(attributeService)
	productController := controller.NewProductController(productService, exportService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the nightly category sync
	if cfg.Catalog.SyncSchedule != "" {
		syncScheduler := scheduler.NewCategorySyncScheduler(categoryService, cfg.Catalog.SyncSchedule)
		if err := syncScheduler.Start(); err != nil {
			logger.Warn("Category sync scheduler not started", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer syncScheduler.Stop()
		}
	}

	// Setup router
	r := router.NewRouter(
		authController,
		categoryController,
		attributeController,
		productController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
