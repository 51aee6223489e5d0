// Package main is the entry point for the BookHive server.
// BookHive is a personal book library backend with per-profile favorites
// and a proxied external catalog search.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prn-tf/bookhive/internal/auth"
	"github.com/prn-tf/bookhive/internal/cache/memory"
	rediscache "github.com/prn-tf/bookhive/internal/cache/redis"
	"github.com/prn-tf/bookhive/internal/catalog/googlebooks"
	"github.com/prn-tf/bookhive/internal/config"
	"github.com/prn-tf/bookhive/internal/handler"
	"github.com/prn-tf/bookhive/internal/metrics"
	"github.com/prn-tf/bookhive/internal/repository"
	"github.com/prn-tf/bookhive/internal/repository/postgres"
	"github.com/prn-tf/bookhive/internal/repository/sqlite"
	"github.com/prn-tf/bookhive/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting BookHive server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Database
	repos, health, closeDB, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	// Cache
	var cache repository.Cache
	if cfg.Redis.Enabled {
		redisCache, err := rediscache.NewCache(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		cache = redisCache
		logger.Info().Str("addr", cfg.Redis.Addr()).Msg("using redis cache")
	} else {
		memCache := memory.NewCache()
		defer memCache.Stop()
		cache = memCache
		logger.Info().Msg("using in-memory cache")
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	// Services
	tokens := auth.NewTokenManager(cfg.Auth)
	catalogClient := googlebooks.NewClient(cfg.Catalog, logger)

	userService := service.NewUserService(repos.Users, tokens, logger)
	profileService := service.NewProfileService(repos.Profiles, logger)
	catalogService := service.NewCatalogService(
		repos.CuratedBooks,
		repos.ExternalBooks,
		catalogClient,
		cache,
		cfg.Catalog.SearchCacheTTL,
		logger,
	)
	favoriteService := service.NewFavoriteService(repos, catalogService, logger)

	// HTTP
	devMode := cfg.Server.DevMode
	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(userService, devMode, logger),
		ProfileHandler:  handler.NewProfileHandler(profileService, devMode, logger),
		BookHandler:     handler.NewBookHandler(catalogService, devMode, logger),
		FavoriteHandler: handler.NewFavoriteHandler(favoriteService, devMode, logger),
		Tokens:          tokens,
		Health:          health,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsPath:     cfg.Metrics.Path,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

// setupDatabase connects to the configured backend, applies migrations
// and returns the wired repositories.
func setupDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repository.Repositories, repository.DatabaseHealth, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return postgres.NewRepositories(db), db, func() { db.Close() }, nil

	default:
		sqliteCfg := sqlite.DefaultConfig(cfg.Database.Path)
		if cfg.Database.JournalMode != "" {
			sqliteCfg.JournalMode = cfg.Database.JournalMode
		}
		if cfg.Database.BusyTimeout > 0 {
			sqliteCfg.BusyTimeout = cfg.Database.BusyTimeout
		}
		if cfg.Database.CacheSize != 0 {
			sqliteCfg.CacheSize = cfg.Database.CacheSize
		}
		if cfg.Database.SynchronousMode != "" {
			sqliteCfg.SynchronousMode = cfg.Database.SynchronousMode
		}

		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return sqlite.NewRepositories(db), db, func() { db.Close() }, nil
	}
}

// setupLogger configures the global zerolog logger from config.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return log.Logger
}
