package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-service/config"
	"marketplace-service/internal/api"
	"marketplace-service/internal/broker"
	"marketplace-service/internal/pricing"
	"marketplace-service/internal/redisclient"
	"marketplace-service/internal/service"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"
	"marketplace-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "marketplace-service"

var (
	_ service.Repository = (*store.Store)(nil)
	_ service.Repository = (*store.MemoryStore)(nil)
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, serviceName); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting marketplace service", zap.Bool("demo_mode", cfg.App.DemoMode))

	if cfg.Observ.TracingEnabled {
		tp, err := util.InitTracer(serviceName, cfg.Server.Env, cfg.Observ.JaegerEndpoint, cfg.Observ.TraceSampleRatio)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Warn("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	var repo service.Repository
	if cfg.App.DemoMode {
		repo = store.NewDemoStore()
		logger.Info("Using seeded in-memory store")
	} else {
		db, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Database connected")

		if cfg.Database.AutoMigrate {
			if err := db.Migrate(context.Background()); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
			logger.Info("Migrations applied")
		}
		repo = db
	}

	checks := []api.ReadinessCheck{{Name: "store", Ping: repo.Ping}}

	var (
		catalogCache service.CatalogCache
		coordinator  service.BatchCoordinator
		redisClient  *redisclient.Client
	)
	if cfg.Redis.Enabled && !cfg.App.DemoMode {
		client, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		logger.Info("Redis connected")

		redisClient = client
		catalogCache = client
		coordinator = client
		checks = append(checks, api.ReadinessCheck{Name: "redis", Ping: client.Ping})
	}

	var publisher service.EventPublisher
	if cfg.Kafka.Enabled && !cfg.App.DemoMode {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicEvents))

		publisher = broker.NewEventPublisher(producer)
	}

	var lookup service.AddressLookup
	if cfg.Delivery.AddressLookupURL != "" {
		lookup = service.NewAddressClient(cfg.Delivery.AddressLookupURL, cfg.Delivery.AddressLookupToken, cfg.Delivery.LookupTimeout)
	}

	policy := pricing.Policy{
		MaxDiscountPercent: cfg.Pricing.MaxDiscountPercent,
		MaxMarkupPercent:   cfg.Pricing.MaxMarkupPercent,
		MinFinalPrice:      cfg.Pricing.MinFinalPrice,
	}

	deliveryService := service.NewDeliveryService(repo, repo, lookup, publisher, cfg.Delivery.FailOpen)
	recipeService := service.NewRecipeService(repo, catalogCache, cfg.Cache.CatalogTTL)
	pricingService := service.NewPricingService(repo, policy, coordinator, publisher, cfg.Cache.IdempotencyTTL, cfg.Cache.BatchLockTTL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var catalogWorker *worker.CatalogWorker
	if cfg.Kafka.Enabled && redisClient != nil {
		catalogConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCatalog, cfg.Kafka.ConsumerGroup)
		catalogWorker = worker.NewCatalogWorker(catalogConsumer, redisClient)
		go func() {
			if err := catalogWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Catalog worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(deliveryService, recipeService, pricingService, checks...)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if catalogWorker != nil {
		if err := catalogWorker.Stop(); err != nil {
			logger.Warn("Error stopping catalog worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
