package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/lpdevlop/book-store-frontend/internal/bookapi"
	"github.com/lpdevlop/book-store-frontend/internal/checkout"
	"github.com/lpdevlop/book-store-frontend/internal/config"
	"github.com/lpdevlop/book-store-frontend/internal/events"
	h "github.com/lpdevlop/book-store-frontend/internal/http"
	"github.com/lpdevlop/book-store-frontend/internal/logger"
	"github.com/lpdevlop/book-store-frontend/internal/shopper"
	"github.com/lpdevlop/book-store-frontend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(lg)

	// forward trace context to the bookshop API
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	store, closeStore, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to open client storage: %v", err)
	}
	defer closeStore()
	lg.Info("client storage ready", slog.String("backend", cfg.StorageBackend))

	client := bookapi.NewClient(bookapi.Config{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.RequestTimeout,
		MaxFailures: cfg.BreakerMaxFailures,
		OpenTimeout: cfg.BreakerOpenTimeout,
	}, lg)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = kp
		lg.Info("publishing order events", slog.String("topic", cfg.KafkaTopic), slog.Any("brokers", cfg.KafkaBrokers))
	}

	registry := shopper.NewRegistry(store, client, checkout.Deps{
		Orders:  client,
		Events:  publisher,
		Logger:  lg,
		Timeout: cfg.OrderTimeout,
	}, shopper.Config{IdleTTL: cfg.VisitorIdleTTL}, lg)
	defer registry.Close()

	router := h.NewRouter(h.RouterConfig{
		API:                client,
		Shoppers:           registry,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		VisitorCookie:      cfg.VisitorCookie,
		SecureCookie:       cfg.SecureCookie,
		AccessLog:          true,
	})

	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     otelhttp.NewHandler(router, "storefront"),
		ReadTimeout: 10 * time.Second,
		// payment requests wait for the order call
		WriteTimeout: cfg.OrderTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("storefront starting", slog.String("addr", srv.Addr), slog.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server forced to shutdown", slog.Any("error", err))
	}

	lg.Info("server exited")
}

// openStorage returns the configured client storage and a func releasing it.
func openStorage(cfg *config.Config) (storage.ClientStorage, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		s, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return s, func() { s.Close() }, nil

	case config.StoragePostgres:
		s, err := storage.OpenPostgres(&storage.Credentials{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return s, func() { s.Close() }, nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return storage.NewRedisStorage(rdb), func() { rdb.Close() }, nil

	case config.StorageMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewMongoStorage(db), func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			db.Client().Disconnect(ctx)
		}, nil

	default:
		return storage.NewMemoryStorage(), func() {}, nil
	}
}
