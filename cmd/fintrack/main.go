package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)
	if err := cfg.ValidateAuth(); err != nil {
		logger.Error("Authentication configuration invalid", log.FieldError, err)
		os.Exit(1)
	}
	loc, _ := cfg.Location() // checked by Validate

	repo := cli.InitRepository(context.Background(), logger, cfg)

	// The API keeps serving without a broker; ledger events are then skipped.
	var publisher services.EventPublisher
	amqpClient, err := cli.InitAMQP(logger, cfg)
	if err != nil {
		logger.Warn("AMQP unavailable, ledger events will not be published", log.FieldError, err)
	} else if amqpClient != nil {
		publisher = amqpClient
	}

	seriesCache := cache.NewLRUCache[core.MonthlySeries](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(seriesCache)
	cacheManager.StartCleanup(time.Minute)

	stats := services.NewStatsService(repo.Repository, repo.Repository, services.StatsOptions{
		Location: loc,
		Cache:    seriesCache,
	})

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}, apphttp.Deps{
		Transactions: services.NewTransactionService(repo.Repository, publisher, stats),
		Stats:        stats,
		Users:        services.NewUserService(repo.Repository, publisher),
		Tokens:       auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Repository:   repo.Repository,
		CacheStats:   seriesCache.Stats,
	}, logger.WithComponent(log.ComponentHTTP))
	if err != nil {
		logger.Error("Failed to create HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if repo.Cleanup != nil {
			if err := repo.Cleanup(); err != nil {
				logger.Warn("Repository close error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", loc.String(),
		"amqp", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
