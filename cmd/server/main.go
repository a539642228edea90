package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"equi-cloud.backend/internal/config"
	"equi-cloud.backend/internal/infrastructure/repositories"
	"equi-cloud.backend/internal/interfaces/http/handlers"
	"equi-cloud.backend/internal/interfaces/http/middleware"
	"equi-cloud.backend/internal/usecases"
	"equi-cloud.backend/pkg/compress"
	"equi-cloud.backend/pkg/logger"
	"equi-cloud.backend/pkg/metrics"
	"equi-cloud.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	runServer  = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis. It is the only store; refusing to start beats serving
	// errors on every request.
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	codec := compress.NewCodec(cfg.Compression.Enabled, cfg.Compression.Level)

	// Initialize repositories
	settingsRepo := repositories.NewSettingsRepository(redis.GetClient(), codec)
	dataStoreRepo := repositories.NewDataStoreRepository(redis.GetClient(), codec)

	// Initialize usecases
	settingsUsecase := usecases.NewSettingsUsecase(settingsRepo, cfg.Limits.MaxBackupSizeBytes)
	dataStoreUsecase := usecases.NewDataStoreUsecase(dataStoreRepo, usecases.DataStoreLimits{
		MaxKeySizeBytes:          cfg.Limits.MaxKeySizeBytes,
		MaxDatastoreKeySizeBytes: cfg.Limits.MaxDatastoreKeySizeBytes,
		MaxTotalSizeBytes:        cfg.Limits.MaxBackupSizeBytes,
		DatastoreEnabled:         cfg.Limits.DatastoreEnabled,
	})
	oauthUsecase := usecases.NewOAuthUsecase(cfg.Discord, cfg.Server.FQDN)

	// Initialize handlers
	settingsHandler := handlers.NewSettingsHandler(settingsUsecase)
	dataStoreHandler := handlers.NewDataStoreHandler(dataStoreUsecase)
	oauthHandler := handlers.NewOAuthHandler(oauthUsecase)
	accountHandler := handlers.NewAccountHandler(settingsUsecase, dataStoreUsecase, serviceName)

	authMiddleware := middleware.AuthMiddleware(cfg.Discord.Allowed)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.Server.CORSOrigins)
	registerHealthRoute(r)
	registerRootRoute(r, cfg.Server.RootRedirectURL)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	registerAPIRoutes(r, routeDeps{
		settingsHandler:  settingsHandler,
		dataStoreHandler: dataStoreHandler,
		oauthHandler:     oauthHandler,
		accountHandler:   accountHandler,
		authMiddleware:   authMiddleware,
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
	}()

	log.Printf("equicloud backend starting on port %s", cfg.Server.Port)
	log.Printf("Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
