package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/dealsearch/internal/adapters/cache"
	"github.com/zatekoja/dealsearch/internal/adapters/database"
	"github.com/zatekoja/dealsearch/internal/api/handlers"
	"github.com/zatekoja/dealsearch/internal/api/routes"
	appservices "github.com/zatekoja/dealsearch/internal/application/services"
	"github.com/zatekoja/dealsearch/internal/domain/providers"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/dealsearch/internal/infrastructure/clients/redis"
	"github.com/zatekoja/dealsearch/internal/infrastructure/observability"
	"github.com/zatekoja/dealsearch/internal/query/services"
	"github.com/zatekoja/dealsearch/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Str("host", cfg.Database.Host).Msg("PostgreSQL client initialized")

	searchCache := newSearchCache(ctx, cfg)
	if closer, ok := searchCache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	couponAdapter := database.NewCouponAdapter(pgClient)
	businessAdapter := database.NewBusinessAdapter(pgClient)
	functionsAdapter := database.NewSearchFunctionsAdapter(pgClient)

	analyticsService := appservices.NewSearchAnalyticsService(
		database.NewSearchAnalyticsAdapter(pgClient),
		metrics,
		cfg.Search.AnalyticsTimeout,
	)

	searchService := services.NewSearchService(services.Dependencies{
		Coupons:     couponAdapter,
		Businesses:  businessAdapter,
		Collections: database.NewCollectionAdapter(pgClient),
		Functions:   functionsAdapter,
		Cache:       searchCache,
		Suggestions: appservices.NewSuggestionService(functionsAdapter, couponAdapter, businessAdapter, cfg.Search.SuggestionLimit),
		Analytics:   analyticsService,
		Metrics:     metrics,
	}, services.Options{
		CacheTTL:     cfg.Search.CacheTTL,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		NearbyLimit:  cfg.Search.NearbyLimit,
	})

	router := routes.NewRouter(
		handlers.NewSearchHandler(searchService),
		handlers.NewTrendingHandler(appservices.NewTrendingService(functionsAdapter)),
		cfg.Server.AllowedOrigins,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("cache", cfg.Search.CacheBackend).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// pending analytics writes finish before the database closes
	analyticsService.Wait()

	log.Info().Msg("server stopped")
}

// newSearchCache picks the configured backend, falling back to memory when Redis is unreachable
func newSearchCache(ctx context.Context, cfg *config.Config) providers.SearchCache {
	if cfg.Search.CacheBackend != config.CacheBackendRedis {
		return cache.NewMemoryAdapter()
	}

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, using in-memory search cache")
		return cache.NewMemoryAdapter()
	}
	log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis search cache initialized")
	return cache.NewRedisAdapter(redisClient)
}
