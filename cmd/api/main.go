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

	"github.com/minhlong-dev/industro-backend/api/routes"
	internalauth "github.com/minhlong-dev/industro-backend/internal/auth"
	"github.com/minhlong-dev/industro-backend/internal/cart"
	"github.com/minhlong-dev/industro-backend/internal/catalog"
	"github.com/minhlong-dev/industro-backend/internal/checkout"
	"github.com/minhlong-dev/industro-backend/internal/orders"
	"github.com/minhlong-dev/industro-backend/internal/users"
	pkgauth "github.com/minhlong-dev/industro-backend/pkg/auth"
	"github.com/minhlong-dev/industro-backend/pkg/auth/session"
	"github.com/minhlong-dev/industro-backend/pkg/config"
	"github.com/minhlong-dev/industro-backend/pkg/db"
	"github.com/minhlong-dev/industro-backend/pkg/logger"
	"github.com/minhlong-dev/industro-backend/pkg/metrics"
	"github.com/minhlong-dev/industro-backend/pkg/migrate"
	"github.com/minhlong-dev/industro-backend/pkg/promo"
	"github.com/minhlong-dev/industro-backend/pkg/redis"
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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	tokenIssuer, err := pkgauth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create token issuer", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, time.Duration(cfg.JWT.RefreshTokenTTLMinutes)*time.Minute)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo, err := users.NewRepo(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create users repo", err)
		os.Exit(1)
	}
	cartRepo, err := cart.NewRepo(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create cart repo", err)
		os.Exit(1)
	}
	catalogRepo, err := catalog.NewRepo(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog repo", err)
		os.Exit(1)
	}
	orderRepo, err := orders.NewRepo(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create orders repo", err)
		os.Exit(1)
	}

	authService, err := internalauth.NewService(userRepo, tokenIssuer, sessionManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cartRepo, catalogRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(
		cartRepo,
		catalogRepo,
		orderRepo,
		promo.DefaultTable(),
		dbClient,
		cfg.Checkout,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(orderRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTP(registry)

	handler := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DBPinger:       dbClient,
		RedisPinger:    redisClient,
		Tokens:         tokenIssuer,
		Sessions:       sessionManager,
		AuthService:    authService,
		CartService:    cartService,
		CheckoutSvc:    checkoutService,
		CatalogService: catalogService,
		OrdersService:  ordersService,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	notifyCtx, stopNotify := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopNotify()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-notifyCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
