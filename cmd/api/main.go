package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/rentflow-backend/api/controllers"
	"github.com/angelmondragon/rentflow-backend/api/routes"
	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/internal/audit"
	"github.com/angelmondragon/rentflow-backend/internal/availability"
	"github.com/angelmondragon/rentflow-backend/internal/bookings"
	"github.com/angelmondragon/rentflow-backend/internal/equipment"
	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/units"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/migrate"
	"github.com/angelmondragon/rentflow-backend/pkg/redis"
	"github.com/angelmondragon/rentflow-backend/pkg/tracing"
)

const serviceName = "rentflow-api"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, serviceName, cfg.App.Env)
	if err != nil {
		logg.Error(ctx, "failed to set up tracing", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		redisClient *redis.Client
		alertCache  alerts.Cache
		cachePinger controllers.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		alertCache = redisClient
		cachePinger = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, stock alerts are computed on every request")
	}

	registry := metrics.NewRegistry()
	stockMetrics := metrics.NewStockMetrics(registry)

	auditService := audit.NewService(audit.NewRepository(dbClient.DB()), logg)
	equipmentRepo := equipment.NewRepository(dbClient.DB())
	bookingsRepo := bookings.NewRepository(dbClient.DB())

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), equipmentRepo, dbClient, auditService, stockMetrics, logg)
	requireService(ctx, logg, "ledger", err)

	equipmentService, err := equipment.NewService(equipmentRepo, dbClient, ledgerService, auditService, logg)
	requireService(ctx, logg, "equipment", err)

	availabilityService, err := availability.NewService(equipmentRepo, bookingsRepo, dbClient, auditService, stockMetrics, logg)
	requireService(ctx, logg, "availability", err)

	unitService, err := units.NewService(units.NewRepository(dbClient.DB()), equipmentRepo, bookingsRepo, dbClient, auditService, stockMetrics, logg)
	requireService(ctx, logg, "units", err)

	alertService, err := alerts.NewService(equipmentRepo, alertCache, cfg.Alerts.CacheTTL, stockMetrics, logg)
	requireService(ctx, logg, "alerts", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			cachePinger,
			metrics.Handler(registry),
			equipmentService,
			ledgerService,
			availabilityService,
			unitService,
			alertService,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(srvCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(srvCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(srvCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	err = multierr.Combine(
		server.Shutdown(shutdownCtx),
		shutdownTracing(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if err != nil {
		logg.Error(srvCtx, "graceful shutdown incomplete", err)
		exitCode = 1
	} else {
		logg.Info(srvCtx, "api server stopped")
	}
	os.Exit(exitCode)
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "service", name), "failed to build service", err)
	os.Exit(1)
}
