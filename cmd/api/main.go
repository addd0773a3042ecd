package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/dcastano/vinoteca-backend/api/routes"
	"github.com/dcastano/vinoteca-backend/internal/cart"
	checkoutsvc "github.com/dcastano/vinoteca-backend/internal/checkout"
	"github.com/dcastano/vinoteca-backend/internal/customers"
	"github.com/dcastano/vinoteca-backend/internal/inventory"
	"github.com/dcastano/vinoteca-backend/internal/orders"
	"github.com/dcastano/vinoteca-backend/internal/products"
	"github.com/dcastano/vinoteca-backend/pkg/config"
	"github.com/dcastano/vinoteca-backend/pkg/db"
	"github.com/dcastano/vinoteca-backend/pkg/instance"
	"github.com/dcastano/vinoteca-backend/pkg/logger"
	"github.com/dcastano/vinoteca-backend/pkg/metrics"
	"github.com/dcastano/vinoteca-backend/pkg/migrate"
	"github.com/dcastano/vinoteca-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	conn := dbClient.DB()
	productRepo := products.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)

	productService, err := products.NewService(productRepo)
	exitOnError(logg, "create products service", err)
	cartService, err := cart.NewService(dbClient, cartRepo, productRepo)
	exitOnError(logg, "create cart service", err)
	checkoutService, err := checkoutsvc.NewService(dbClient, cartRepo, productRepo, customerRepo, orderRepo, checkoutMetrics, logg)
	exitOnError(logg, "create checkout service", err)
	orderService, err := orders.NewService(dbClient, orderRepo, checkoutMetrics, logg)
	exitOnError(logg, "create orders service", err)
	inventoryService, err := inventory.NewService(dbClient, inventoryRepo, checkoutMetrics)
	exitOnError(logg, "create inventory service", err)

	handler := routes.NewRouter(routes.Deps{
		Config:           cfg,
		Logger:           logg,
		DB:               dbClient,
		Redis:            redisClient,
		Registry:         registry,
		ProductService:   productService,
		CartService:      cartService,
		CheckoutService:  checkoutService,
		OrderService:     orderService,
		InventoryService: inventoryService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	}

	closeErr := multierr.Combine(
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "shutdown complete")
}

func exitOnError(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
