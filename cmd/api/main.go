package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tennotools/platwatch-backend/api/controllers"
	"github.com/tennotools/platwatch-backend/api/routes"
	"github.com/tennotools/platwatch-backend/internal/alerts"
	"github.com/tennotools/platwatch-backend/internal/catalog"
	"github.com/tennotools/platwatch-backend/internal/marketsync"
	"github.com/tennotools/platwatch-backend/internal/tracking"
	"github.com/tennotools/platwatch-backend/pkg/config"
	"github.com/tennotools/platwatch-backend/pkg/db"
	"github.com/tennotools/platwatch-backend/pkg/logger"
	"github.com/tennotools/platwatch-backend/pkg/metrics"
	"github.com/tennotools/platwatch-backend/pkg/migrate"
	"github.com/tennotools/platwatch-backend/pkg/redis"
	"github.com/tennotools/platwatch-backend/pkg/wfmarket"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	// Redis only backs the feed snapshot cache, so it stays optional.
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	trackingRepo := tracking.NewRepository(dbClient.DB())
	alertsRepo := alerts.NewRepository(dbClient.DB())

	trackingService, err := tracking.NewService(trackingRepo, catalogRepo, alertsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking service", err)
		os.Exit(1)
	}

	alertsService, err := alerts.NewService(alertsRepo, trackingRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create alerts service", err)
		os.Exit(1)
	}

	feedClient := wfmarket.NewClient(
		wfmarket.WithBaseURL(cfg.Feed.BaseURL),
		wfmarket.WithTimeout(cfg.Feed.Timeout),
		wfmarket.WithLanguage(cfg.Feed.LanguageCode),
		wfmarket.WithPlatform(cfg.Feed.PlatformLabel),
	)

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	syncOpts := []marketsync.Option{marketsync.WithMetrics(syncMetrics)}
	if redisClient != nil {
		syncOpts = append(syncOpts, marketsync.WithSnapshotCache(redisClient, cfg.Feed.CacheTTL))
	}
	syncService, err := marketsync.NewService(feedClient, catalogService, logg, syncOpts...)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync service", err)
		os.Exit(1)
	}

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

	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:  cfg,
			Logger:  logg,
			DB:      dbClient,
			Redis:   redisPinger,
			Catalog: catalogService,
			Orders:  trackingService,
			Alerts:  alertsService,
			Sync:    syncService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
