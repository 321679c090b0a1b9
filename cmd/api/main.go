package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ewaste-exchange/internal/config"
	"ewaste-exchange/internal/database"
	"ewaste-exchange/internal/events"
	"ewaste-exchange/internal/geo"
	"ewaste-exchange/internal/handlers"
	"ewaste-exchange/internal/heatmap"
	"ewaste-exchange/internal/lock"
	"ewaste-exchange/internal/logger"
	"ewaste-exchange/internal/metrics"
	"ewaste-exchange/internal/pickup"
	"ewaste-exchange/internal/ratelimit"
	"ewaste-exchange/internal/scheduler"
	"ewaste-exchange/internal/scrap"
	"ewaste-exchange/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	configPath := getEnv("CONFIG_PATH", "config/config.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", configPath, err)
	}

	zlog, err := logger.New(appConfig.Logging)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(appConfig, zlog); err != nil {
		zlog.Fatal("server exited with error", zap.Error(err))
	}
}

func run(appConfig *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := database.Open(appConfig.Database, zlog)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", appConfig.Database.Type, err)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	zlog.Info("database ready", zap.String("type", appConfig.Database.Type))

	var metricsManager *metrics.Manager
	if appConfig.Metrics.Enabled {
		metricsManager = metrics.NewManager()
	}

	// Optional integrations are skipped when their address is empty
	var locker lock.Locker
	if appConfig.Redis.Addr != "" {
		redisClient, err := lock.NewRedisClient(ctx, appConfig.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, "ewaste:lock:", zlog)
		zlog.Info("using redis scheduling lock", zap.String("addr", appConfig.Redis.Addr))
	}

	var publisher events.Publisher
	if appConfig.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(appConfig.NATS.URL, "ewaste-exchange", zlog)
		if err != nil {
			return err
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	var (
		searcher  handlers.Searcher
		reindexer handlers.Reindexer
		listeners []scrap.FlagListener
	)
	if host := appConfig.Search.Meilisearch.Host; host != "" {
		searchClient := search.NewSearchClient(host, appConfig.Search.Meilisearch.APIKey, appConfig.Search.Meilisearch.Index)
		if err := searchClient.InitIndex(); err != nil {
			zlog.Warn("failed to initialize search index, search disabled", zap.String("host", host), zap.Error(err))
		} else {
			indexer := search.NewIndexer(searchClient, gormDB, zlog)
			searcher = searchClient
			reindexer = indexer
			listeners = append(listeners, indexer)
		}
	}

	classifier := scrap.NewClassifier(gormDB, scrap.ClassifierConfig{
		AgeThreshold: appConfig.Scrap.AgeThreshold(),
	}, zlog, listeners...)
	aggregator := scrap.NewAggregator(gormDB)

	var observer scheduler.RunObserver
	if metricsManager != nil {
		observer = metricsManager
	}
	appScheduler, err := scheduler.NewScheduler(gormDB, classifier, appConfig.Scrap, zlog, observer)
	if err != nil {
		return err
	}
	if err := appScheduler.Start(); err != nil {
		return err
	}
	defer appScheduler.Stop()

	loc, err := appConfig.Scrap.Location()
	if err != nil {
		return err
	}
	var recorder pickup.Recorder
	if metricsManager != nil {
		recorder = metricsManager
	}
	pickupService := pickup.NewService(aggregator, gormDB, locker, publisher, recorder, pickup.Config{
		DefaultFacilityName:    appConfig.Pickup.DefaultFacilityName,
		DefaultFacilityAddress: appConfig.Pickup.DefaultFacilityAddress,
		RejectPastDates:        appConfig.Pickup.RejectPastDates,
		Location:               loc,
		LockTTL:                appConfig.Pickup.LockTTL(),
	}, zlog)

	rateLimiter := ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	zlog.Info("rate limiter initialized",
		zap.Int("per_minute", appConfig.RateLimit.RequestsPerMinute),
		zap.Int("per_hour", appConfig.RateLimit.RequestsPerHour),
		zap.Bool("enabled", appConfig.RateLimit.Enabled),
	)

	if appConfig.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterDeps{
		Config:      appConfig,
		Log:         zlog,
		Metrics:     metricsManager,
		RateLimiter: rateLimiter,
		Health:      handlers.NewHealthHandler(gormDB),
		Scrap:       handlers.NewScrapHandler(aggregator, heatmap.NewReducer(geo.Haversine), searcher, zlog),
		Pickups:     handlers.NewPickupHandler(pickupService, zlog),
		Recycling:   handlers.NewRecyclingHandler(gormDB),
		Admin:       handlers.NewAdminHandler(gormDB, appScheduler, rateLimiter, reindexer, zlog),
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
