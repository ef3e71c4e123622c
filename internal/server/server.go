// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer, the composition root: it builds the
// dependency chain once and maps URLs to handlers.
//
//	config → sqlite.DB → repositories → session.Manager → services → handlers
//
// Keeping it out of main.go lets tests build a complete server around an
// in-memory database without opening a port.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/sakif/postboard/internal/auth"
	"github.com/sakif/postboard/internal/config"
	"github.com/sakif/postboard/internal/handler"
	"github.com/sakif/postboard/internal/middleware"
	"github.com/sakif/postboard/internal/repository"
	"github.com/sakif/postboard/internal/repository/memory"
	sqliteRepo "github.com/sakif/postboard/internal/repository/sqlite"
	"github.com/sakif/postboard/internal/service"
	"github.com/sakif/postboard/internal/session"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection; Close (or the end of Start)
// releases it so WAL contents are flushed and the file lock dropped.
type Server struct {
	router   *chi.Mux
	handler  http.Handler
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	sessions *session.Manager
}

// New opens the database and wires every layer.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with
// the modernc.org/sqlite driver.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) sessionRepository() (repository.SessionRepository, error) {
	switch s.config.Session.Store {
	case config.SessionStoreSQLite:
		return s.db.Sessions(), nil
	case config.SessionStoreMemory:
		return memory.NewSessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", s.config.Session.Store)
	}
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz           → liveness + database ping
// POST   /api/register      → create account, start session
// POST   /api/login         → start session
// POST   /api/logout        → end session
// GET    /api/me            → current user or null
// GET    /api/posts         → feed, newest first
// POST   /api/posts         → create post           (auth)
// DELETE /api/posts/{id}    → delete own post       (auth)
// GET    /*                 → static files from STATIC_DIR, if present
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Logger: logs each request with timing info
// 4. Recoverer: catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Dependencies ===
	sessionRepo, err := s.sessionRepository()
	if err != nil {
		return err
	}
	s.sessions = session.NewManager(sessionRepo, s.config.Session.TTL, s.logger)

	cookies, err := auth.NewCookieManager(
		s.config.Session.CookieName,
		s.config.Session.Secret,
		s.config.Session.CookieSecure,
	)
	if err != nil {
		return fmt.Errorf("creating cookie manager: %w", err)
	}

	passwords := auth.NewPasswordService(s.config.BcryptCost)

	authService, err := service.NewAuthService(s.db.Users(), s.sessions, passwords, s.logger)
	if err != nil {
		return fmt.Errorf("creating auth service: %w", err)
	}
	postService := service.NewPostService(s.db.Posts(), s.logger)

	authHandler := handler.NewAuthHandler(authService, cookies, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	requireAuth := auth.RequireAuth(cookies, s.sessions, s.logger)
	optionalAuth := auth.OptionalAuth(cookies, s.sessions, s.logger)

	// === Routes ===
	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.With(optionalAuth).Get("/me", authHandler.HandleMe)

		r.Get("/posts", postHandler.HandleList)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/posts", postHandler.HandleCreate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
		})
	})

	// === Static Files ===
	// GET /css/style.css → serves {StaticDir}/css/style.css
	if dir := s.config.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			s.router.Handle("/*", http.FileServer(http.Dir(dir)))
		} else {
			s.logger.Info("static directory not found, not serving files", slog.String("dir", dir))
		}
	}

	s.handler = s.router
	if origins := s.config.CORS.AllowedOrigins; len(origins) > 0 {
		s.handler = cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}).Handler(s.router)
	}

	return nil
}

// Handler returns the fully wired HTTP handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close releases the database connection.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the server until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves HTTP until ctx is cancelled.
//
// GRACEFUL SHUTDOWN:
// 1. Stop the session janitor
// 2. Stop accepting new HTTP connections
// 3. Wait for in-flight requests to finish (30s timeout)
// 4. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.sessions.RunJanitor(janitorCtx, s.config.Session.CleanupInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.Database.Path),
			slog.String("session_store", s.config.Session.Store),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
		stopJanitor()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
