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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/teslo-shop/storefront/api/controllers"
	"github.com/teslo-shop/storefront/api/routes"
	"github.com/teslo-shop/storefront/internal/admin"
	"github.com/teslo-shop/storefront/internal/cart"
	"github.com/teslo-shop/storefront/internal/checkout"
	"github.com/teslo-shop/storefront/internal/orders"
	"github.com/teslo-shop/storefront/internal/payments"
	"github.com/teslo-shop/storefront/pkg/backend"
	"github.com/teslo-shop/storefront/pkg/config"
	"github.com/teslo-shop/storefront/pkg/db"
	"github.com/teslo-shop/storefront/pkg/instance"
	"github.com/teslo-shop/storefront/pkg/logger"
	"github.com/teslo-shop/storefront/pkg/metrics"
	"github.com/teslo-shop/storefront/pkg/migrate"
	"github.com/teslo-shop/storefront/pkg/pubsub"
	"github.com/teslo-shop/storefront/pkg/redis"
	"github.com/teslo-shop/storefront/pkg/square"
	"github.com/teslo-shop/storefront/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	// money leaves the API as JSON numbers, the shape the storefront has always rendered
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	readiness := map[string]controllers.Pinger{}
	storageDeps := storage.Deps{}

	var dbClient *db.Client
	if cfg.Storage.Normalized() == config.StorageDriverSQL {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
		storageDeps.DB = dbClient
		readiness["db"] = dbClient
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		storageDeps.Redis = redisClient
		readiness["redis"] = redisClient
	}

	provider, err := storage.NewProvider(cfg, storageDeps)
	if err != nil {
		logg.Error(ctx, "failed to create storage provider", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewStorefront(registry)

	backendClient, err := backend.NewClient(cfg.Backend, backend.WithObserver(m))
	if err != nil {
		logg.Error(ctx, "failed to create backend client", err)
		os.Exit(1)
	}

	taxRate, err := cfg.Storefront.TaxRateDecimal()
	if err != nil {
		logg.Error(ctx, "invalid tax rate", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.NewAggregator(taxRate, cfg.Storefront.MaxLineQuantity), logg, m)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(cartService, cfg.Storefront.DefaultCountry, logg)
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(backendClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}
	adminService, err := admin.NewService(backendClient, m, logg)
	if err != nil {
		logg.Error(ctx, "failed to create admin service", err)
		os.Exit(1)
	}

	paymentParams := payments.ServiceParams{
		Payer:   backendClient,
		Guard:   payments.NewLocalGuard(),
		Metrics: m,
		Logger:  logg,
	}
	if redisClient != nil {
		paymentParams.Guard = payments.NewRedisGuard(redisClient, cfg.Payments.InFlightTTL)
	}
	if cfg.Square.VerificationEnabled() {
		squareClient, err := square.NewClient(ctx, cfg.Square, logg)
		if err != nil {
			logg.Error(ctx, "failed to create square client", err)
			os.Exit(1)
		}
		paymentParams.Verifier = squareClient
	}
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to create pubsub client", err)
			os.Exit(1)
		}
		defer func() {
			if err := psClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		events, err := pubsub.NewEventPublisher(psClient.OrdersPublisher())
		if err != nil {
			logg.Error(ctx, "failed to create order event publisher", err)
			os.Exit(1)
		}
		paymentParams.Events = events
		readiness["pubsub"] = psClient
	}
	paymentService, err := payments.NewService(paymentParams)
	if err != nil {
		logg.Error(ctx, "failed to create payments service", err)
		os.Exit(1)
	}

	deps := routes.Deps{
		Config:    cfg,
		Logger:    logg,
		Storage:   provider,
		Carts:     cartService,
		Checkout:  checkoutService,
		Orders:    ordersService,
		Payments:  paymentService,
		Admin:     adminService,
		Readiness: readiness,
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	if redisClient != nil {
		deps.Idempotency = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"storage_driver": cfg.Storage.Normalized(),
		"instance_id":    instance.GetID(),
	})
	logg.Info(runCtx, "starting storefront api")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "graceful shutdown failed", err)
		}
	}

	logg.Info(runCtx, "storefront api shutting down gracefully")
}
