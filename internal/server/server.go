// Package server is the composition root: it wires repositories, services
// and handlers together, defines the route table, and runs the HTTP server
// with graceful shutdown.
//
// Dependency chain assembled here:
//
//	sqlite.DB → repositories → UserService / ProfileService → handlers
//	config → TokenService, media.Store (built by the caller), cookies
//
// Handlers never touch the database; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/arjun-saseendran/video-stack/internal/auth"
	"github.com/arjun-saseendran/video-stack/internal/config"
	"github.com/arjun-saseendran/video-stack/internal/handler"
	"github.com/arjun-saseendran/video-stack/internal/media"
	"github.com/arjun-saseendran/video-stack/internal/middleware"
	sqliteRepo "github.com/arjun-saseendran/video-stack/internal/repository/sqlite"
	"github.com/arjun-saseendran/video-stack/internal/service"
)

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency graph. The media
// store is passed in because its construction (AWS config resolution) is an
// I/O step the entry point controls.
func New(cfg config.Config, mediaStore media.Store, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(mediaStore); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, services and the route table.
//
// Route structure:
//
//	GET    /healthz                          → liveness
//	POST   /api/v1/users/register            → registration (multipart)
//	POST   /api/v1/users/login               → login
//	POST   /api/v1/users/refresh-token       → token rotation
//	POST   /api/v1/users/logout              → logout            (auth)
//	POST   /api/v1/users/change-password     → password change   (auth)
//	GET    /api/v1/users/current-user        → own profile       (auth)
//	PATCH  /api/v1/users/update-account      → fullname/email    (auth)
//	PATCH  /api/v1/users/avatar              → avatar upload     (auth)
//	PATCH  /api/v1/users/cover-image         → cover upload      (auth)
//	GET    /api/v1/users/c/{username}        → channel profile   (auth)
//	GET    /api/v1/users/history             → watch history     (auth)
func (s *Server) setupRoutes(mediaStore media.Store) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(
		s.cfg.AccessTokenSecret,
		s.cfg.RefreshTokenSecret,
		s.cfg.AccessTokenTTL,
		s.cfg.RefreshTokenTTL,
	)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	userService := service.NewUserService(s.db.Users(), tokens, passwords, mediaStore, s.logger)
	profileService := service.NewProfileService(s.db.Users(), s.db.Subscriptions(), s.db.Videos(), s.logger)

	cookieCfg := handler.CookieConfig{
		Secure:        s.cfg.IsProduction(),
		AccessMaxAge:  s.cfg.AccessTokenTTL,
		RefreshMaxAge: s.cfg.RefreshTokenTTL,
	}
	// Stack traces in error bodies are a debugging aid, never a production
	// behavior.
	debug := !s.cfg.IsProduction()
	userHandler := handler.NewUserHandler(userService, cookieCfg, s.cfg.TempDir, s.logger, debug)
	profileHandler := handler.NewProfileHandler(profileService, s.logger, debug)

	s.router.Get("/healthz", handler.HandleHealthz)

	s.router.Route("/api/v1/users", func(r chi.Router) {
		// Unauthenticated: registration runs before any identity exists,
		// refresh authenticates via the refresh token itself.
		r.Post("/register", userHandler.HandleRegister)
		r.Post("/login", userHandler.HandleLogin)
		r.Post("/refresh-token", userHandler.HandleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Post("/logout", userHandler.HandleLogout)
			r.Post("/change-password", userHandler.HandleChangePassword)
			r.Get("/current-user", userHandler.HandleCurrentUser)
			r.Patch("/update-account", userHandler.HandleUpdateAccount)
			r.Patch("/avatar", userHandler.HandleUpdateAvatar)
			r.Patch("/cover-image", userHandler.HandleUpdateCoverImage)
			r.Get("/c/{username}", profileHandler.HandleChannelProfile)
			r.Get("/history", profileHandler.HandleWatchHistory)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("env", s.cfg.Env),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
