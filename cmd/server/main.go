package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aidtrust/internal/adapters/http/middleware"
	"aidtrust/internal/adapters/http/routes"
	"aidtrust/internal/config"
	"aidtrust/internal/core/services"
	"aidtrust/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"

	_ "aidtrust/docs" // Swagger docs
)

// @title aidtrust API
// @version 1.0
// @description Charitable-aid application workflow API: submission, review lifecycle, audit history and fund ledger.

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}
	logger.Setup(cfg.AppMode, cfg.LogLevel)

	// Open the store (connects and migrates SQL drivers)
	store, err := config.OpenStore(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to open store")
	}
	defer config.CloseDatabase()

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.NewSeeder(store, cfg.Seed).Run(seedCtx); err != nil {
		logger.Log.WithError(err).Warn("Seeding failed")
	}
	cancel()

	// Audit reconciler on AUDIT_RECONCILE_SCHEDULE
	reconciler := services.NewAuditReconciler(store, cfg.Audit.ReconcileSchedule)
	if err := reconciler.Start(); err != nil {
		logger.Log.WithError(err).Fatal("Invalid AUDIT_RECONCILE_SCHEDULE")
	}
	defer reconciler.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "aidtrust API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		BodyLimit:    1 << 20,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, store, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	logger.Log.WithFields(map[string]interface{}{
		"port":   cfg.Port,
		"mode":   cfg.AppMode,
		"driver": cfg.Database.Driver,
	}).Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.WithError(err).Fatal("Failed to start server")
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.WithError(err).Error("Error during shutdown")
	}
	logger.Log.Info("Server stopped gracefully")
}
