package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"event-registry/config"
	"event-registry/internal/auth"
	"event-registry/internal/cache"
	"event-registry/internal/clock"
	"event-registry/internal/database"
	"event-registry/internal/handler"
	"event-registry/internal/membership"
	"event-registry/internal/model"
	"event-registry/internal/queue"
	"event-registry/internal/repository"
	"event-registry/internal/service"
	"event-registry/internal/worker"
	"event-registry/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.WithComponent("main")
	defer logger.L.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	owner, err := model.ParseAddress(cfg.Registry.Owner)
	if err != nil {
		log.Fatal("REGISTRY_OWNER must be an account address", zap.Error(err))
	}
	collection, err := model.ParseAddress(cfg.Registry.MembershipCollection)
	if err != nil {
		log.Fatal("REGISTRY_MEMBERSHIP_COLLECTION must be an account address", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Registry.StorageBackend == "redis" || cfg.Registry.QueueBackend == "redis" {
		rdb, err = database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	store, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		log.Fatal("Failed to open storage backend", zap.String("backend", cfg.Registry.StorageBackend), zap.Error(err))
	}
	defer closeStore()

	notifications, err := openQueue(cfg, rdb)
	if err != nil {
		log.Fatal("Failed to open notification queue", zap.String("backend", cfg.Registry.QueueBackend), zap.Error(err))
	}

	checker, err := newMembershipChecker(cfg.Membership)
	if err != nil {
		log.Fatal("Invalid membership configuration", zap.Error(err))
	}

	registry := service.NewRegistryService(
		owner,
		collection,
		service.NewEventService(store, owner),
		service.NewRegistrationService(store, store),
		checker,
		clock.NewSystemClock(),
		notifications,
	)

	notificationWorker := worker.NewNotificationWorker(worker.LogSink{}, notifications)
	if err := notificationWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start notification worker", zap.Error(err))
	}

	var verifier auth.TokenVerifier
	if cfg.Server.JWTSecret != "" {
		verifier = auth.NewJWTAuthenticator(cfg.Server.JWTSecret)
	} else {
		log.Warn("JWT_SECRET not set, trusting the X-Caller-Address header")
	}

	router := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSAllowedOrigins
	corsConfig.AddAllowHeaders("Authorization", handler.CallerAddressHeader)
	router.Use(cors.New(corsConfig))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	handler.NewRegistryHandler(registry, verifier).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Info("Server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("owner", owner.String()),
			zap.String("storage", cfg.Registry.StorageBackend),
			zap.String("queue", cfg.Registry.QueueBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}

	select {
	case <-notificationWorker.Done():
	case <-shutdownCtx.Done():
		log.Warn("Notification worker did not stop in time")
	}
}

func openStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (repository.Store, func(), error) {
	switch cfg.Registry.StorageBackend {
	case "memory":
		return repository.NewMemoryStore(), func() {}, nil
	case "redis":
		return cache.NewRegistryStore(rdb), func() {}, nil
	case "postgres":
		pool, err := database.InitDatabase(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Registry.StorageBackend)
	}
}

func openQueue(cfg *config.Config, rdb *redis.Client) (queue.NotificationQueue, error) {
	switch cfg.Registry.QueueBackend {
	case "memory":
		return queue.NewNotificationQueue(cfg.Registry.QueueBufferSize), nil
	case "redis":
		hostname, _ := os.Hostname()
		return queue.NewRedisStreamNotificationQueue(rdb, hostname, nil)
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Registry.QueueBackend)
	}
}

// newMembershipChecker prefers the JSON-RPC node; without one it answers from MEMBERSHIP_HOLDERS.
func newMembershipChecker(cfg config.MembershipConfig) (membership.Checker, error) {
	if cfg.RPCURL != "" {
		return membership.NewRPCChecker(context.Background(), cfg.RPCURL, cfg.Timeout, &http.Client{Timeout: cfg.Timeout})
	}

	holders := make([]model.Address, 0, len(cfg.Holders))
	for _, h := range cfg.Holders {
		addr, err := model.ParseAddress(h)
		if err != nil {
			return nil, fmt.Errorf("membership holder %q: %w", h, err)
		}
		holders = append(holders, addr)
	}
	logger.WithComponent("main").Warn("MEMBERSHIP_RPC_URL not set, using static holder list", zap.Int("holders", len(holders)))
	return membership.NewStaticChecker(holders...), nil
}
