package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teewatch/teewatch/internal/adapters/cache"
	"github.com/teewatch/teewatch/internal/adapters/database"
	"github.com/teewatch/teewatch/internal/application/services"
	"github.com/teewatch/teewatch/internal/domain/providers"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/postgres"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/redis"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/teeoff"
	"github.com/teewatch/teewatch/internal/infrastructure/notifications"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
	"github.com/teewatch/teewatch/pkg/config"
)

// The watcher is a standalone worker: it reminds users about watched
// tee times and fires stored alert rules against fresh provider
// searches. It shares the API server's storage but runs independently.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-watcher", cfg.Server.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var metrics *observability.Metrics
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName+"-watcher", cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()

			metrics, err = observability.InitMetrics()
			if err != nil {
				logger.Warn().Err(err).Msg("failed to initialize metrics")
			}
		}
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, geocity lookups uncached")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	courseAdapter := database.NewCourseAdapter(pgClient)
	alertAdapter := database.NewAlertAdapter(pgClient)
	watchAdapter := database.NewWatchAdapter(pgClient)

	teeoffClient := teeoff.NewClient(cfg.TeeOff.BaseURL, cfg.TeeOff.Timeout)
	searchService := services.NewSearchService(teeoffClient, cacheProvider, cfg.Poll.SearchRadius, metrics)
	notifier := notifications.NewRelaySender(cfg.Notifications.RelayURL, cfg.Notifications.Token)

	checker := services.NewWatchChecker(
		watchAdapter,
		alertAdapter,
		courseAdapter,
		searchService,
		notifier,
		cfg.Poll.CheckerTick,
		metrics,
	)

	go func() {
		logger.Info().Dur("tick", cfg.Poll.CheckerTick).Msg("watch checker starting")
		checker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("watch checker shutting down")
	cancel()
	logger.Info().Msg("watch checker stopped")
}
