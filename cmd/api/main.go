package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/safar/go-trip-orders/internal/auth"
	"github.com/safar/go-trip-orders/internal/config"
	"github.com/safar/go-trip-orders/internal/database"
	"github.com/safar/go-trip-orders/internal/events"
	"github.com/safar/go-trip-orders/internal/handler"
	"github.com/safar/go-trip-orders/internal/lock"
	"github.com/safar/go-trip-orders/internal/logging"
	"github.com/safar/go-trip-orders/internal/middleware"
	"github.com/safar/go-trip-orders/internal/orders"
	"github.com/safar/go-trip-orders/internal/router"
	"github.com/safar/go-trip-orders/internal/store"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to database")

	repo := store.NewPostgres(db)
	opts := []orders.Option{orders.WithLogger(logger.Named("orders"))}

	if cfg.Lock.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("connect to redis", zap.Error(err))
		}
		opts = append(opts, orders.WithLocker(lock.NewRedisLocker(rdb, cfg.Lock.TTL, cfg.Lock.Wait)))
		logger.Info("using redis inventory locks", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.AMQP.Enabled {
		pub := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		defer pub.Close()
		opts = append(opts, orders.WithPublisher(pub))
		logger.Info("publishing order events", zap.String("queue", cfg.AMQP.Queue))
	}

	accounts := auth.NewDirectory(repo, cfg.Auth.BcryptCost)
	svc := orders.New(repo, accounts, opts...)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Use(middleware.RequestLogger(logger.Named("http")))

	router.RegisterRoutes(e, router.Handlers{
		Accounts: handler.NewAccountHandler(accounts, cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, logger),
		Catalog:  handler.NewCatalogHandler(svc, logger),
		Orders:   handler.NewOrderHandler(svc, logger),
		DB:       db,
	}, cfg.Auth.JWTSecret)

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
