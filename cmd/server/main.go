package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	invapp "github.com/backoffice/backend/internal/application/inventory"
	whapp "github.com/backoffice/backend/internal/application/warehouse"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/cache"
	"github.com/backoffice/backend/internal/infrastructure/config"
	"github.com/backoffice/backend/internal/infrastructure/logger"
	"github.com/backoffice/backend/internal/infrastructure/persistence"
	"github.com/backoffice/backend/internal/interfaces/http/handler"
	"github.com/backoffice/backend/internal/interfaces/http/middleware"
	"github.com/backoffice/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting backoffice backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	stockLevelRepo := persistence.NewGormStockLevelRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	warehouseService := whapp.NewWarehouseService(warehouseRepo, stockLevelRepo)
	inventoryService := invapp.NewInventoryService(txScope, stockLevelRepo, movementRepo, warehouseRepo)

	// Duplicate-movement detection store: redis when available, otherwise
	// an in-process store that only covers a single instance
	if cfg.Idempotency.Enabled {
		idempotencyCfg := shared.IdempotencyConfig{Enabled: true, TTL: cfg.Idempotency.TTL}
		if cfg.Redis.Enabled {
			store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				log.Fatal("Failed to connect to redis", zap.Error(err))
			}
			defer func() {
				_ = store.Close()
			}()
			inventoryService.SetIdempotencyStore(store, idempotencyCfg)
			log.Info("Redis idempotency store enabled", zap.String("addr", cfg.Redis.Addr()))
		} else {
			store := cache.NewInMemoryIdempotencyStore()
			defer func() {
				_ = store.Close()
			}()
			inventoryService.SetIdempotencyStore(store, idempotencyCfg)
			log.Info("In-memory idempotency store enabled")
		}
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.GET("/health", healthHandler(db))

	// Tenant scoping applies to all domain routes
	engine.Use(middleware.Tenant())

	// Handlers and routes
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)

	warehouseRoutes := router.NewDomainGroup("warehouse", "/warehouses")
	warehouseRoutes.POST("", warehouseHandler.Create)
	warehouseRoutes.GET("", warehouseHandler.List)
	warehouseRoutes.GET("/primary", warehouseHandler.GetPrimary)
	warehouseRoutes.GET("/code/:code", warehouseHandler.GetByCode)
	warehouseRoutes.GET("/:id", warehouseHandler.GetByID)
	warehouseRoutes.PUT("/:id", warehouseHandler.Update)
	warehouseRoutes.DELETE("/:id", warehouseHandler.Delete)
	warehouseRoutes.POST("/:id/activate", warehouseHandler.Activate)
	warehouseRoutes.POST("/:id/deactivate", warehouseHandler.Deactivate)
	warehouseRoutes.POST("/:id/primary", warehouseHandler.SetPrimary)

	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.POST("/movements", inventoryHandler.ApplyMovement)
	inventoryRoutes.GET("/movements", inventoryHandler.ListMovements)
	inventoryRoutes.GET("/movements/:id", inventoryHandler.GetMovement)
	inventoryRoutes.GET("/stock-levels", inventoryHandler.ListStockLevels)
	inventoryRoutes.GET("/stock-levels/low", inventoryHandler.ListLowStock)
	inventoryRoutes.GET("/stock-levels/out-of-stock", inventoryHandler.ListOutOfStock)
	inventoryRoutes.GET("/stock-levels/product/:productID/warehouse/:warehouseID", inventoryHandler.GetStockLevel)
	inventoryRoutes.PUT("/stock-levels/thresholds", inventoryHandler.SetThresholds)
	inventoryRoutes.GET("/products/:productID/stock-levels", inventoryHandler.GetStockLevelsByProduct)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(warehouseRoutes).
		Register(inventoryRoutes)
	r.Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database connectivity
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
