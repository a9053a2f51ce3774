package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/UW-GAC/pie-sub001/internal/app"
	"github.com/UW-GAC/pie-sub001/internal/database"
	"github.com/UW-GAC/pie-sub001/internal/httpserver"
	"github.com/UW-GAC/pie-sub001/internal/platform/config"
	"github.com/UW-GAC/pie-sub001/internal/platform/logging"
	"github.com/UW-GAC/pie-sub001/internal/redis"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	repos := app.Repositories{
		Studies:      database.NewStudyRepo(pool),
		Datasets:     database.NewDatasetRepo(pool),
		Traits:       database.NewTraitRepo(pool),
		Tags:         database.NewTagRepo(pool),
		TaggedTraits: database.NewTaggedTraitRepo(pool),
		Recipes:      database.NewRecipeRepo(pool),
		Users:        database.NewUserRepo(pool),
		HomeContents: database.NewHomeContentRepo(pool),
	}

	searchCache := redis.NewSearchCache(redisClient.Underlying(), cfg.SearchCacheTTL)

	appSvc := app.NewService(repos, searchCache, clock, app.Options{
		SigningKey:  cfg.SigningKey(),
		TokenTTL:    cfg.APITokenTTL,
		SearchLimit: cfg.SearchResultLimit,
	})

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: redisClient.Ping},
	}

	srv, err := httpserver.NewServer(cfg, appSvc, healthChecks)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
