// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects stores, services, the
// GraphQL schema, handlers, middleware, and routes.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → openStore (memory | sqlite | mongo) → repository.Store
//	repository.Store → service.AuthService, service.PhotoService
//	services → graph.Resolver → graphql.Schema → relay.Handler (/graphql)
//	AuthService → auth.CurrentUser middleware, handler.AuthHandler
//
// This is the "composition root" pattern: all dependencies are wired in
// one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/photoshare-api/internal/auth"
	"github.com/sakif/photoshare-api/internal/config"
	"github.com/sakif/photoshare-api/internal/graph"
	"github.com/sakif/photoshare-api/internal/handler"
	"github.com/sakif/photoshare-api/internal/middleware"
	"github.com/sakif/photoshare-api/internal/repository"
	"github.com/sakif/photoshare-api/internal/repository/memory"
	"github.com/sakif/photoshare-api/internal/repository/mongodb"
	sqliteRepo "github.com/sakif/photoshare-api/internal/repository/sqlite"
	"github.com/sakif/photoshare-api/internal/seed"
	"github.com/sakif/photoshare-api/internal/service"
)

const (
	graphQLPath     = "/graphql"
	shutdownTimeout = 30 * time.Second
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store connection (closer). When the server shuts
// down it is closed after in-flight requests finish, so SQLite flushes its
// WAL and MongoDB disconnects cleanly.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
	closer io.Closer
}

// New opens the configured store, seeds it when asked to, and builds the
// router. ctx bounds the startup work (store connection and seeding).
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, closer, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.DBBackend, err)
	}

	if cfg.SeedSampleData {
		if _, err := seed.Load(ctx, store, logger); err != nil {
			closer.Close()
			return nil, fmt.Errorf("seeding sample data: %w", err)
		}
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
		closer: closer,
	}

	if err := s.setupRoutes(); err != nil {
		closer.Close() // Clean up the store if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore selects the backend named by DB_BACKEND.
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` to avoid confusion with
// the modernc sqlite driver package.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, io.Closer, error) {
	switch cfg.DBBackend {
	case config.BackendSQLite:
		// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return repository.Store{}, nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return repository.Store{}, nil, err
		}
		logger.Info("using sqlite store", slog.String("path", cfg.DBPath))
		return db.Store(), db, nil

	case config.BackendMongo:
		db, err := mongodb.New(ctx, cfg.DBHost, cfg.MongoDatabase)
		if err != nil {
			return repository.Store{}, nil, err
		}
		// The URI may embed credentials; only the database name is logged.
		logger.Info("using mongo store", slog.String("database", cfg.MongoDatabase))
		return db.Store(), db, nil

	default:
		db := memory.New()
		logger.Info("using in-memory store")
		return db.Store(), db, nil
	}
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /                      → Welcome text
// POST   /graphql               → GraphQL endpoint
// GET    /playground            → GraphiQL IDE
// GET    /auth/github/login     → Redirect to GitHub (only when configured)
// GET    /auth/github/callback  → Finish GitHub login, return {token, user}
// GET    /metrics               → Prometheus metrics
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
//  1. RequestID: assigns unique ID to each request (for tracing)
//  2. RealIP: extracts real client IP from proxy headers
//  3. Recoverer: catches panics and returns 500 instead of crashing
//  4. Logger: logs each request with timing info and the request ID
//  5. Metrics: counts requests per route pattern
//  6. CORS: answers preflights before any auth work happens
//  7. CurrentUser: resolves the Authorization header into a user
func (s *Server) setupRoutes() error {
	github := auth.NewGitHubProvider(auth.GitHubConfig{
		ClientID:     s.config.GitHub.ClientID,
		ClientSecret: s.config.GitHub.ClientSecret,
		CallbackURL:  s.config.GitHub.CallbackURL,
		TokenURL:     s.config.GitHub.TokenURL,
		APIURL:       s.config.GitHub.APIURL,
		Timeout:      s.config.GitHub.Timeout,
	})
	users := service.NewAuthService(
		s.store.Users,
		github,
		seed.NewRandomUsers(s.config.RandomUserURL, &http.Client{Timeout: s.config.GitHub.Timeout}),
		s.logger,
	)
	photos := service.NewPhotoService(s.store, s.config.ImageBaseURL, s.logger)
	schema := graph.NewSchema(graph.NewResolver(users, photos, s.logger))

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(auth.CurrentUser(users, s.logger))

	// === Page Routes ===
	playgroundHandler, err := handler.NewPlaygroundHandler(graphQLPath, s.logger)
	if err != nil {
		return fmt.Errorf("creating playground handler: %w", err)
	}
	s.router.Get("/", handler.HandleWelcome)
	s.router.Get("/playground", playgroundHandler.HandlePlayground)

	// === GraphQL ===
	s.router.Method(http.MethodPost, graphQLPath, &relay.Handler{Schema: schema})

	// === Metrics ===
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// === Browser OAuth Routes ===
	// They need an OAuth app and a state key. Without them the server still
	// starts; clients can log in through fakeUserAuth, or through githubAuth
	// once GitHub is configured.
	if !s.config.BrowserLoginEnabled() {
		s.logger.Warn("GITHUB_CLIENT_ID or STATE_SECRET not set, /auth/github routes are disabled")
		return nil
	}

	signer, err := auth.NewStateSigner(s.config.StateSecret)
	if err != nil {
		return fmt.Errorf("creating state signer: %w", err)
	}
	authHandler := handler.NewAuthHandler(
		github,
		signer,
		users,
		s.logger,
	)

	s.router.Route("/auth/github", func(r chi.Router) {
		r.Get("/login", authHandler.HandleGitHubLogin)
		r.Get("/callback", authHandler.HandleGitHubCallback)
	})

	return nil
}

// ServeHTTP makes the Server an http.Handler, which is what tests drive.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the store connection.
func (s *Server) Close() error {
	return s.closer.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store (flushes the SQLite WAL, disconnects from MongoDB)
//
// The `defer s.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.Close()

	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("graphql", fmt.Sprintf("http://localhost:%d%s", s.config.Port, graphQLPath)),
			slog.String("playground", fmt.Sprintf("http://localhost:%d/playground", s.config.Port)),
			slog.String("store", s.config.DBBackend),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
