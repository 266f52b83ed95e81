package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string
	LogLevel       string
	JWTSecret      string
	TokenTTL       time.Duration

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	StorageDriver   string
	LocalStorageDir string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string

	SentryDSN string

	RateLimitGlobal  time.Duration
	RateLimitComment time.Duration
	RateLimitReview  time.Duration
	DownloadRate     float64
	DownloadBurst    int
	ViewDedupWindow  time.Duration
	ReindexSchedule  string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		JWTSecret:      os.Getenv("JWT_SECRET"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		StorageDriver:   getEnv("STORAGE_DRIVER", "cloudinary"),
		LocalStorageDir: getEnv("LOCAL_STORAGE_DIR", "./media"),

		CloudinaryCloudName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "indie_platform"),

		SentryDSN:       os.Getenv("SENTRY_DSN"),
		ReindexSchedule: getEnv("SEARCH_REINDEX_SCHEDULE", "@daily"),
	}

	if cfg.JWTSecret == "" {
		if cfg.AppEnv == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret"
	}

	if cfg.StorageDriver != "cloudinary" && cfg.StorageDriver != "local" {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// Parsing durations
	var err error
	if cfg.TokenTTL, err = parseDuration(getEnv("TOKEN_TTL", "72h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.RateLimitGlobal, err = parseDuration(getEnv("RATE_LIMIT_GLOBAL", "5s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_GLOBAL: %w", err)
	}
	if cfg.RateLimitComment, err = parseDuration(getEnv("RATE_LIMIT_COMMENT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_COMMENT: %w", err)
	}
	if cfg.RateLimitReview, err = parseDuration(getEnv("RATE_LIMIT_REVIEW", "1m")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REVIEW: %w", err)
	}
	if cfg.ViewDedupWindow, err = parseDuration(getEnv("VIEW_DEDUP_WINDOW", "1h")); err != nil {
		return nil, fmt.Errorf("invalid VIEW_DEDUP_WINDOW: %w", err)
	}

	if cfg.DownloadRate, err = strconv.ParseFloat(getEnv("DOWNLOAD_RATE_PER_SEC", "2"), 64); err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_RATE_PER_SEC: %w", err)
	}
	if cfg.DownloadBurst, err = strconv.Atoi(getEnv("DOWNLOAD_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_BURST: %w", err)
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
