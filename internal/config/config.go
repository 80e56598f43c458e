// Package config loads process configuration once at startup.
//
// The Config struct is built from environment variables (a local .env file is
// honoured in development via godotenv) and then passed down by value.
// Business logic never reads the environment directly — the token service,
// media store and server all receive the fields they need at construction.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the server needs.
type Config struct {
	Port    int
	Env     string // "development" or "production"; controls cookie Secure flag and error detail
	DBPath  string
	TempDir string // where multipart uploads are spooled before hitting the media store

	// Token service: two distinct secrets and two distinct lifetimes.
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	// Media store (S3-compatible).
	S3Region    string
	S3Bucket    string
	S3Endpoint  string // custom endpoint for MinIO-style deployments; empty for AWS
	S3AccessKey string
	S3SecretKey string
	// S3PublicBaseURL is the prefix public object URLs are built from,
	// e.g. "https://cdn.example.com" or the bucket endpoint itself.
	S3PublicBaseURL string
}

// IsProduction reports whether the server runs with production hardening
// (Secure cookies, no stack traces in error responses).
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; a missing file is not an error.
//
// The two JWT secrets are the only hard requirements — everything else has a
// development default.
func Load() (Config, error) {
	// Ignore the error: .env is a development convenience, production
	// deployments set real environment variables.
	_ = godotenv.Load()

	cfg := Config{
		Port:    envInt("PORT", 8080),
		Env:     envString("APP_ENV", "development"),
		DBPath:  envString("DB_PATH", "data/videostack.db"),
		TempDir: envString("TEMP_DIR", os.TempDir()),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessTokenTTL:     envDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    envDuration("REFRESH_TOKEN_TTL", 10*24*time.Hour),

		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", "videostack-media"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
	}

	if cfg.AccessTokenSecret == "" {
		return Config{}, errors.New("config: ACCESS_TOKEN_SECRET must be set")
	}
	if cfg.RefreshTokenSecret == "" {
		return Config{}, errors.New("config: REFRESH_TOKEN_SECRET must be set")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		// Separate secrets are what make an access token unusable as a
		// refresh token and vice versa.
		return Config{}, errors.New("config: access and refresh token secrets must differ")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
