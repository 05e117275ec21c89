// Package main is the entry point for the API server.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"mealpay/internal/config"
	"mealpay/internal/handlers"
	"mealpay/internal/logging"
	"mealpay/internal/middleware"
	"mealpay/internal/repositories"
	"mealpay/internal/repositories/cache"
	"mealpay/internal/routes"
	"mealpay/internal/services/fees"
	"mealpay/internal/services/order"
	"mealpay/internal/services/payment"
)

const version = "1.0.0"

func main() {
	config.LoadEnv()
	cfg := config.LoadServer()

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize databases (PostgreSQL + Redis)
	db, err := repositories.InitDB(repositories.DBConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get database instance", zap.Error(err))
	}

	rdb := cache.NewRedisClient(cache.RedisConfigFromEnv())
	var (
		idem      order.IdempotencyStore
		idemStore *cache.IdempotencyStore
	)
	if err := cache.HealthCheck(ctx, rdb); err != nil {
		logger.Warn("redis unavailable, idempotency falls back to the database", zap.Error(err))
	} else {
		idemStore = cache.NewIdempotencyStore(rdb)
		idem = idemStore
	}

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := sqlDB.Stats()
				logger.Debug("db pool stats",
					zap.Int("open", stats.OpenConnections),
					zap.Int("idle", stats.Idle),
					zap.Int("in_use", stats.InUse),
					zap.Int64("wait_count", stats.WaitCount),
					zap.Duration("wait_duration", stats.WaitDuration),
				)
				if idemStore != nil {
					logger.Debug("idempotency stats", zap.Any("lookups", idemStore.Stats()))
				}
			}
		}
	}()

	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database connection", zap.Error(err))
		}
		if err := rdb.Close(); err != nil {
			logger.Warn("failed to close redis connection", zap.Error(err))
		}
	}()

	// Services
	payments := payment.NewStripeService(cfg.StripeKey, logger)
	orders := order.NewService(
		fees.NewCalculator(),
		payments,
		repositories.NewOrderRepository(db),
		idem,
		order.Config{Currency: cfg.Currency, IdempotencyTTL: cfg.IdempotencyTTL},
		logger,
	)

	quoteLimiter := middleware.NewLimiterStore(cfg.QuoteRPS, cfg.QuoteBurst, 15*time.Minute)
	go quoteLimiter.RunCleanup(ctx, 5*time.Minute)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + handlers.IdempotencyHeader,
		AllowMethods:     "GET,POST,HEAD,OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		Health: handlers.NewHealthHandler(func(ctx context.Context) error {
			return cache.HealthCheck(ctx, rdb)
		}, version),
		Fees:         handlers.NewFeeHandler(orders),
		Orders:       handlers.NewOrderHandler(orders),
		Auth:         middleware.NewAuthMiddleware(cfg.JWTSecret, logger),
		QuoteLimiter: quoteLimiter,
		OrderRateMax: cfg.OrderRateMax,
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("version", version))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
