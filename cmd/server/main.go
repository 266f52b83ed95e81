package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/indieplatform/internal/bootstrap"
	"anoa.com/indieplatform/internal/config"
	searchService "anoa.com/indieplatform/internal/modules/search/service"
	"anoa.com/indieplatform/internal/server"
	"anoa.com/indieplatform/pkg/database"
	"anoa.com/indieplatform/pkg/logger"
	"anoa.com/indieplatform/pkg/storage"
	"github.com/getsentry/sentry-go"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	logger.Setup(cfg.AppEnv, cfg.LogLevel)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			logrus.WithError(err).Warn("sentry init failed")
		}
		defer sentry.Flush(2 * time.Second)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		logrus.WithError(err).Fatal("failed to seed roles")
	}
	if err := bootstrap.SeedGenres(db); err != nil {
		logrus.WithError(err).Fatal("failed to seed genres")
	}
	if cfg.IsDevelopment() {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			logrus.WithError(err).Fatal("failed to seed admin user")
		}
	}

	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		logrus.WithError(err).Fatal("invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Warn("redis is unreachable, rate limits and live notifications are degraded")
	}
	cancel()

	fileStorage, err := newStorage(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize file storage")
	}

	meili := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))

	srv, err := server.NewServer(cfg, server.Dependencies{
		DB:            db,
		Redis:         redisClient,
		Storage:       fileStorage,
		SearchBackend: searchService.NewMeiliBackend(meili),
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logrus.WithError(err).Error("server exited with error")
		return
	}
	logrus.Info("server stopped")
}

func newStorage(cfg *config.Config) (storage.FileStorage, error) {
	if cfg.StorageDriver == "local" {
		return storage.NewLocalStorage(cfg.LocalStorageDir, "/media")
	}
	return storage.NewCloudinaryStorage(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
		cfg.CloudinaryUploadFolder,
	)
}
