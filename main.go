package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/cache"
	"github.com/RaviiSharma/Amazon-Clone/controllers"
	"github.com/RaviiSharma/Amazon-Clone/middleware"
	"github.com/RaviiSharma/Amazon-Clone/repository"
	"github.com/RaviiSharma/Amazon-Clone/routes"
	"github.com/RaviiSharma/Amazon-Clone/service"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := utils.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := utils.LoadConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Error("mongo disconnect failed", "error", err)
		}
	}()

	db := client.Database(cfg.MongoDBName)
	if err := repository.CreateIndexes(ctx, db); err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db)
	carts := repository.NewCartRepository(db)
	orders := repository.NewOrderRepository(db)

	var cartCache cache.CartCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, cart cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			cartCache = cache.NewRedisCache(rdb)
			logger.Info("cart cache enabled", "addr", cfg.RedisAddr)
		}
	}

	mailer, err := utils.NewMailer(cfg, logger)
	if err != nil {
		return err
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	cartService := service.NewCartService(carts, products, cartCache, logger)
	orderService := service.NewOrderService(orders, cartService, users, mailer, logger)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.Logger(logger), middleware.Recoverer(logger))
	routes.RegisterRoutes(router, routes.Controllers{
		Users:    controllers.NewUserController(users, cartService, tokens, mailer, cfg.UploadDir, logger, cfg.RequestTimeout),
		Products: controllers.NewProductController(products, cfg.UploadDir, logger, cfg.RequestTimeout),
		Carts:    controllers.NewCartController(cartService, logger, cfg.RequestTimeout),
		Orders:   controllers.NewOrderController(orderService, logger, cfg.RequestTimeout),
	}, tokens)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, "amazon-clone"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
