package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/api"
	"residentbook-backend-go/internal/config"
	"residentbook-backend-go/internal/core"
	"residentbook-backend-go/internal/db"
	"residentbook-backend-go/internal/identity"
	"residentbook-backend-go/internal/logging"
	"residentbook-backend-go/internal/middleware"
	"residentbook-backend-go/internal/notification"
	"residentbook-backend-go/pkg/cache"
	"residentbook-backend-go/pkg/messagequeue"
)

func main() {
	if os.Getenv("GIN_MODE") != gin.ReleaseMode {
		// Local development reads .env; a missing file is fine.
		_ = godotenv.Load()
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	zapLogger, err := logging.New(appConfig.IsRelease(), appConfig.LogLevel)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(appConfig, zapLogger); err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}

func run(appConfig *config.Config, zapLogger *zap.Logger) error {
	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()

	// --- Firebase Admin SDK (Firestore, Auth) ---
	clients, err := db.InitFirebase(initCtx, appConfig, zapLogger)
	if err != nil {
		return fmt.Errorf("initialize Firebase: %w", err)
	}
	defer clients.Close()

	idp, err := identity.NewFirebase(initCtx, clients.Auth, appConfig.FirebaseWebAPIKey, zapLogger)
	if err != nil {
		return fmt.Errorf("initialize identity provider: %w", err)
	}

	// --- Cache ---
	var appCache cache.Cache = cache.NoopCache{}
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
			Prefix:   "residentbook:",
		})
		if err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		defer redisCache.Close()
		appCache = redisCache
		zapLogger.Info("Redis cache enabled", zap.String("addr", appConfig.RedisAddr))
	} else {
		zapLogger.Info("REDIS_ADDR not set, caching disabled")
	}

	// --- Notifications ---
	var notifier core.BookingNotifier = notification.NewLogNotifier(zapLogger)
	if appConfig.AMQPURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.AMQPURL}, zapLogger)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		defer mq.Close()
		notifier = notification.NewQueueNotifier(mq, appConfig.AMQPQueue, zapLogger)
		zapLogger.Info("Booking events are published to RabbitMQ", zap.String("queue", appConfig.AMQPQueue))
	}

	// --- Repositories ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	auditRepo := db.NewFirestoreAuditRepository(clients.Firestore)
	serviceRepo := db.NewFirestoreServiceRepository(clients.Firestore)
	slotRepo := db.NewFirestoreSlotRepository(clients.Firestore)
	bookingRepo := db.NewFirestoreBookingRepository(clients.Firestore)

	// --- Services ---
	auditService := core.NewAuditService(auditRepo)
	names := core.NewServiceNames(serviceRepo, appCache, appConfig.CacheTTL, zapLogger)
	bookingService := core.NewBookingService(bookingRepo, serviceRepo, names, notifier, auditService, zapLogger, core.BookingSettings{
		PageSize:            appConfig.PageSize,
		ReleaseSlotOnCancel: appConfig.ReleaseSlotOnCancel,
	})
	services := api.Services{
		Users:    core.NewUserService(userRepo, idp, appCache, appConfig.CacheTTL, auditService, zapLogger),
		Catalog:  core.NewCatalogService(serviceRepo, names, auditService, zapLogger),
		Slots:    core.NewSlotService(slotRepo, serviceRepo, auditService, zapLogger, appConfig.PageSize),
		Bookings: bookingService,
	}
	zapLogger.Info("Core services initialized",
		zap.Int("pageSize", appConfig.PageSize), zap.Bool("releaseSlotOnCancel", appConfig.ReleaseSlotOnCancel))

	// --- HTTP ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	authMW := middleware.NewAuthMiddleware(idp, services.Users, zapLogger)
	authLimiter := middleware.NewRateLimiter(appConfig.AuthRatePerMinute, 5, zapLogger)
	api.SetupRoutes(router, zapLogger, authMW, authLimiter, services)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", appConfig.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server: %w", err)
	case sig := <-quit:
		zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
