package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/metrics"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/internal/scheduler"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/orderapi"
	"github.com/ikkim/storefront-backend/pkg/redis"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting storefront backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := run(cfg); err != nil {
		logger.Fatal("Server stopped with error", err)
	}
	logger.Info("Server stopped successfully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Checkout snapshots live in Redis unless it is disabled
	var sessions session.Store
	if cfg.Redis.Disabled {
		logger.Warn("Redis disabled, checkout snapshots are kept in process memory", nil)
		sessions = session.NewMemoryStore()
	} else {
		if err := redis.Init(&cfg.Redis); err != nil {
			return err
		}
		defer redis.Close()
		sessions = session.NewRedisStore(redis.GetClient())
	}

	orderClient, err := orderapi.NewClient(orderapi.Config{
		BaseURL: cfg.Checkout.OrderAPIBaseURL,
		APIKey:  cfg.Checkout.OrderAPIKey,
		StoreID: cfg.Checkout.StoreID,
		Timeout: cfg.Checkout.Timeout,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	hub := websocket.NewHub()

	var carts *cart.Registry
	carts = cart.NewRegistry(
		cart.WithMaxLineQuantity(cfg.Cart.MaxLineQuantity),
		cart.WithObserver(hub.Publish),
		cart.WithObserver(func(string, model.CartState) {
			m.SetActiveCarts(carts.Len())
		}),
	)

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db.GetDB())

	// Initialize services
	productService := service.NewProductService(catalogRepo)
	cartService := service.NewCartService(catalogRepo, carts, m)
	checkoutService := service.NewCheckoutService(carts, orderClient, sessions, m, service.CheckoutConfig{
		DefaultCurrencyCode: cfg.Checkout.DefaultCurrencyCode,
		Timeout:             cfg.Checkout.Timeout,
		SnapshotTTL:         cfg.Checkout.SnapshotTTL,
	})

	// Initialize controllers
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService, hub, websocket.NewUpgrader(cfg.CORS.AllowedOrigins))
	checkoutController := controller.NewCheckoutController(checkoutService)
	sessionController := controller.NewSessionController(cfg.Session.Secret, cfg.Session.TokenExpiry)

	sessionMiddleware := middleware.NewSessionMiddleware(cfg.Session.Secret)

	r := router.NewRouter(
		productController,
		cartController,
		checkoutController,
		sessionController,
		sessionMiddleware,
		m,
		map[string]router.HealthCheck{
			"database": db.Ping,
			"redis":    redis.Ping,
		},
		cfg,
	)

	sweeper := scheduler.NewCartSweeper(carts, cfg.Cart.SweepSchedule, cfg.Cart.IdleTTL, m)
	if err := sweeper.Start(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": server.Addr,
			"pid":     os.Getpid(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		sweeper.Stop(shutdownCtx)
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
