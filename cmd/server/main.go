package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"metacognition/internal/cache"
	"metacognition/internal/config"
	"metacognition/internal/logger"
	"metacognition/internal/repository"
	"metacognition/internal/service"
	"metacognition/internal/transport/rest"
	"metacognition/internal/transport/ws"
	"metacognition/internal/validate"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Environment, cfg.LogLevel)
	log.Info("started")

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	if err := pingMongo(ctx, mongoClient, log); err != nil {
		log.WithError(err).Fatal("failed to ping MongoDB")
	}
	log.WithField("database", cfg.MongoDatabase).Info("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.WithError(err).Fatal("failed to ping Redis")
	}
	log.Info("connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)
	defer wsHub.Close()

	// Initialize repositories
	sessionRepo := repository.NewSessionRepo(db)
	responseRepo := repository.NewResponseRepository(db)
	userRepo := repository.NewUserRepo(db)

	// Initialize caches
	sessionCache := cache.NewSessionCache(rdb)
	tokenCache := cache.NewTokenCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, tokenCache, cfg.JWTSecret, cfg.TokenTTL, log)
	evaluator := service.NewKeyPointEvaluator()
	sessionSvc := service.NewSessionService(sessionRepo, sessionCache, log)
	responseSvc := service.NewResponseService(responseRepo, sessionRepo, sessionCache, evaluator, log)
	analyticsSvc := service.NewAnalyticsService(sessionRepo, responseRepo, cfg.DashboardSessionLimit, cfg.ResponseFetchConcurrency, log)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)
	responseSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		Config:           cfg,
		Logger:           log,
		Validator:        validate.NewValidator(),
		AuthService:      authSvc,
		SessionService:   sessionSvc,
		ResponseService:  responseSvc,
		AnalyticsService: analyticsSvc,
		WSHub:            wsHub,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           rest.NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen and serve")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exited")
}

// pingMongo retries the initial ping with exponential backoff for up to 30s
func pingMongo(ctx context.Context, client *mongo.Client, log *logger.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			return fmt.Errorf("ping attempt %d: %w", attempt, err)
		}
		return nil
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		log.WithError(err).WithField("retry_in", next.String()).Warn("MongoDB not ready")
	})
}
