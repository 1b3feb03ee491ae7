package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/bodefavour/skyflo-store-sub000/internal/cart"
	"github.com/bodefavour/skyflo-store-sub000/internal/catalog"
	"github.com/bodefavour/skyflo-store-sub000/internal/checkout"
	"github.com/bodefavour/skyflo-store-sub000/internal/config"
	"github.com/bodefavour/skyflo-store-sub000/internal/currency"
	"github.com/bodefavour/skyflo-store-sub000/internal/httpapi"
	"github.com/bodefavour/skyflo-store-sub000/internal/rates"
	"github.com/bodefavour/skyflo-store-sub000/internal/storage"
	"github.com/bodefavour/skyflo-store-sub000/internal/wishlist"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	// Session storage. An unreachable Redis degrades to in-memory-only
	// operation instead of refusing to start.
	var store storage.Store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, falling back to in-memory storage", "addr", cfg.RedisAddr, "error", err)
		store = storage.NewMemoryStore()
	} else {
		defer redisClient.Close()
		store = storage.NewRedisStore(redisClient)
		logger.Info("connected to redis", "addr", cfg.RedisAddr)
	}

	// Catalog backend.
	var repo catalog.Repository
	switch cfg.CatalogBackend {
	case "postgres":
		var err error
		repo, err = catalog.NewPostgresRepository(&catalog.PostgresCredentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPassword,
			DBName:            cfg.PostgresDBName,
			MigrationsDirPath: cfg.MigrationsPath,
		})
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		logger.Info("catalog backed by postgres", "host", cfg.PostgresHost)
	default:
		db, err := catalog.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			logger.Error("failed to connect to mongodb", "error", err)
			os.Exit(1)
		}
		repo = catalog.NewMongoRepository(db)
		logger.Info("catalog backed by mongodb", "uri", cfg.MongoURI)
	}
	defer repo.Close(ctx)

	// Core services.
	rateClient := rates.NewClient(cfg.RateSourceURL)
	currencySvc := currency.NewService(store, rateClient, logger)
	carts := cart.NewStore(store, logger)
	wishlists := wishlist.NewStore(store, logger)

	var publisher checkout.OrderPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := checkout.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = kp
		logger.Info("order-placed events enabled", "brokers", cfg.KafkaBrokers)
	}
	checkoutSvc := checkout.NewService(carts, repo, currencySvc, publisher, logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Catalog:        repo,
		Carts:          carts,
		Wishlists:      wishlists,
		Currency:       currencySvc,
		Checkout:       checkoutSvc,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("storefront listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Warm the rate cache without blocking startup.
	go func() {
		if err := currencySvc.Refresh(context.Background()); err != nil {
			logger.Warn("initial rate refresh failed, using cached or static rates", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}
