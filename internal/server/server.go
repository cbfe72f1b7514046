// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It connects the store, the services,
// the handlers and the middleware, and it owns the process lifecycle.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New:
//	  sqlite.DB (implements every repository interface)
//	    → FeedService
//	    → UserService, FilmService, ReviewService (all emit into the feed)
//	    → DirectorService, CatalogService, RecommendationService
//	  services → handlers → chi routes
//
// This is the composition root: nothing else in the tree constructs a
// service or opens the database.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/filmorate/internal/config"
	"github.com/sakif/filmorate/internal/handler"
	"github.com/sakif/filmorate/internal/middleware"
	sqliteRepo "github.com/sakif/filmorate/internal/repository/sqlite"
	"github.com/sakif/filmorate/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Run closes it after the HTTP
// server has drained, so no in-flight request sees a closed store.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the store and builds the router.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with
// the modernc.org/sqlite driver.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Only needed when Run is never called.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /health    liveness plus a database ping
//	GET  /metrics   Prometheus exposition
//	/users, /films, /genres, /mpa, /directors, /reviews   the REST API (rate limited)
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: tags the request before anything logs
//  2. RealIP: rewrites RemoteAddr from proxy headers, which the rate limiter keys on
//  3. Logger and Metrics: observe the final status, including recovered panics
//  4. Recoverer: turns a panic into a 500
//  5. CORS
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// === API ===
	// s.db (sqlite.DB) implements every repository interface; each service
	// only sees the slice of it that it declares.
	feed := service.NewFeedService(s.db, s.db, s.logger)
	users := service.NewUserService(s.db, feed, s.logger)
	films := service.NewFilmService(s.db, feed, s.logger)
	reviews := service.NewReviewService(s.db, feed, s.logger)
	directors := service.NewDirectorService(s.db, s.logger)
	catalog := service.NewCatalogService(s.db)
	recs := service.NewRecommendationService(s.db, s.logger)

	s.router.Group(func(r chi.Router) {
		if s.config.RateLimit.Requests > 0 {
			r.Use(httprate.Limit(
				s.config.RateLimit.Requests,
				s.config.RateLimit.Window,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(rateLimited),
			))
		}

		handler.NewUserHandler(users, recs, feed, s.logger).Routes(r)
		handler.NewFilmHandler(films, s.logger).Routes(r)
		handler.NewCatalogHandler(catalog).Routes(r)
		handler.NewDirectorHandler(directors, s.logger).Routes(r)
		handler.NewReviewHandler(reviews, s.logger).Routes(r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// rateLimited answers in the API's error format instead of httprate's
// plain text body.
func rateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(handler.ErrorResponse{
		Error:   "rate_limited",
		Message: "Too many requests, retry later",
	})
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Wait up to server.shutdown_timeout for in-flight requests
//  3. Close the database (flushes WAL, releases the file lock)
func (s *Server) Run(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
