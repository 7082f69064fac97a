package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"museum-backend/config"
	"museum-backend/handlers"
	"museum-backend/logger"
	"museum-backend/messaging"
	"museum-backend/middleware"
	"museum-backend/repository"
	"museum-backend/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func connectToDatabase(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := repository.NewPool(ctx, cfg.DatabaseDSN())
	if err != nil {
		return nil, err
	}

	if err := repository.RunMigrations(ctx, pool, zlog); err != nil {
		pool.Close()
		return nil, err
	}

	zlog.Info("connected to database")
	return pool, nil
}

func connectToNATS(cfg *config.Config, zlog *zap.Logger) (messaging.Publisher, error) {
	if cfg.NATS.URL == "" {
		zlog.Info("NATS_URL not set, check-in notifications disabled")
		return messaging.NoopPublisher{}, nil
	}
	return messaging.NewNATSPublisher(cfg.NATS.URL, zlog)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := connectToDatabase(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("unable to connect to database", zap.Error(err))
	}
	defer pool.Close()

	publisher, err := connectToNATS(cfg, zlog)
	if err != nil {
		zlog.Fatal("unable to connect to NATS", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories and services
	visitorRepo := repository.NewVisitorRepository(pool, zlog)
	registrationRepo := repository.NewRegistrationRepository(pool, zlog)
	eventRepo := repository.NewEventRepository(pool, zlog)

	checkinService := service.NewCheckinService(visitorRepo, registrationRepo, eventRepo, publisher, zlog)
	eventService := service.NewEventService(eventRepo, registrationRepo, zlog)
	visitorService := service.NewVisitorService(visitorRepo, zlog)

	// Handlers
	checkinHandler := handlers.NewCheckinHandler(checkinService, zlog)
	eventHandler := handlers.NewEventHandler(eventService, zlog)
	visitorHandler := handlers.NewVisitorHandler(checkinService, visitorService, zlog)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go limiter.Cleanup(ctx, 10*time.Minute, time.Hour)

	if cfg.Log.JSON {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(zlog))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	handlers.RegisterRoutes(router, checkinHandler, eventHandler, visitorHandler, limiter.Middleware())

	router.GET("/health", func(c *gin.Context) {
		status, dbStatus := http.StatusOK, "ok"
		if err := pool.Ping(c); err != nil {
			status, dbStatus = http.StatusServiceUnavailable, "unavailable"
		}
		c.JSON(status, gin.H{
			"status":    http.StatusText(status),
			"database":  dbStatus,
			"timestamp": time.Now().Unix(),
		})
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server stopped")
}
