package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teewatch/teewatch/internal/adapters/cache"
	"github.com/teewatch/teewatch/internal/adapters/database"
	"github.com/teewatch/teewatch/internal/adapters/providers/auth"
	"github.com/teewatch/teewatch/internal/api/handlers"
	"github.com/teewatch/teewatch/internal/api/middleware"
	"github.com/teewatch/teewatch/internal/api/routes"
	"github.com/teewatch/teewatch/internal/application/services"
	"github.com/teewatch/teewatch/internal/domain/providers"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/postgres"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/redis"
	"github.com/teewatch/teewatch/internal/infrastructure/clients/teeoff"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
	"github.com/teewatch/teewatch/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// OpenTelemetry is optional; the app runs fine without an endpoint.
	var metrics *observability.Metrics
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
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
			logger.Info().Msg("OpenTelemetry initialized")

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
	logger.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; without it the app runs uncached.
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, running without cache")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		logger.Info().Msg("Redis client initialized")
	}

	// Adapters
	courseAdapter := database.NewCourseAdapter(pgClient)
	alertAdapter := database.NewAlertAdapter(pgClient)
	watchAdapter := database.NewWatchAdapter(pgClient)

	teeoffClient := teeoff.NewClient(cfg.TeeOff.BaseURL, cfg.TeeOff.Timeout)
	authProvider := auth.NewGoTrueAdapter(cfg.Auth.BaseURL, cfg.Auth.APIKey)

	// Services
	searchService := services.NewSearchService(teeoffClient, cacheProvider, cfg.Poll.SearchRadius, metrics)
	watchService := services.NewWatchService(watchAdapter, cfg.TeeOff.BaseURL)
	alertService := services.NewAlertService(alertAdapter, courseAdapter)

	// Handlers
	teeoffHandler := handlers.NewTeeOffHandler(teeoffClient)
	searchHandler := handlers.NewSearchHandler(searchService, cfg.Poll.Interval, metrics)
	courseHandler := handlers.NewCourseHandler(courseAdapter)
	alertHandler := handlers.NewAlertHandler(alertService)
	watchHandler := handlers.NewWatchHandler(watchService)
	authHandler := handlers.NewAuthHandler(authProvider)

	authMiddleware := middleware.NewAuthMiddleware(authProvider, cacheProvider, cfg.Auth.SessionTTL)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		logger.Info().Msg("cache middleware initialized")
	}

	router := routes.NewRouter(
		teeoffHandler,
		searchHandler,
		courseHandler,
		alertHandler,
		watchHandler,
		authHandler,
		authMiddleware,
		cacheMiddleware,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: /api/search/stream holds SSE connections open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
