// Package main is the entry point for the video-stack account server.
//
// main stays minimal: load configuration, build the logger and the media
// store, hand everything to internal/server. All actual behavior lives in
// the internal packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arjun-saseendran/video-stack/internal/config"
	"github.com/arjun-saseendran/video-stack/internal/media"
	"github.com/arjun-saseendran/video-stack/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.IsProduction() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	// The database directory may not exist on first run.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	mediaStore, err := media.NewS3Store(context.Background(), media.S3Config{
		Region:        cfg.S3Region,
		Bucket:        cfg.S3Bucket,
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	}, logger)
	if err != nil {
		logger.Error("failed to create media store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, mediaStore, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
