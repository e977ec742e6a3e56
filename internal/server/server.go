// Package server wires the application together: handlers, middleware, and
// routes. It is the composition root — every dependency is constructed and
// connected in New/setupRoutes rather than scattered across the codebase.
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

	"github.com/sakif/accounts-api/internal/auth"
	"github.com/sakif/accounts-api/internal/handler"
	"github.com/sakif/accounts-api/internal/middleware"
	sqliteRepo "github.com/sakif/accounts-api/internal/repository/sqlite"
	"github.com/sakif/accounts-api/internal/service"
)

// Config is built once at startup from the environment and passed by
// reference into everything that needs a slice of it. No component reads
// os.Getenv directly — startup validation in main is the single gate for
// missing or malformed configuration.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string        // required; server refuses to start without it
	TokenTTL   time.Duration // session token lifetime (default 1h)
	BcryptCost int           // password hashing work factor

	// GitHub OAuth is optional: when ClientID is empty the social-login
	// routes are simply not registered.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown — skipping that can leave the sqlite WAL
// un-flushed.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the dependency chain:
//
//	sqlite.DB → AuthService/UserService → handlers → routes
//
// Each layer only receives what it needs: services get the repository
// interface, handlers get services, the router gets handlers.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
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

// setupRoutes configures middleware and the route table.
//
// ROUTES:
//
//	GET    /                        → liveness envelope
//	POST   /auth/register           → create account, issue token
//	POST   /auth/login              → authenticate, issue token
//	GET    /auth/me                 → authenticated user's record   [auth]
//	GET    /auth/allUsers           → every account                 [auth]
//	PATCH  /auth/patch/{id}         → toggle isGraduate             [auth]
//	PATCH  /auth/patchToggle/{id}   → alias of the above            [auth]
//	GET    /auth/github/login       → OAuth redirect        (when configured)
//	GET    /auth/github/callback    → OAuth completion      (when configured)
//	POST   /auth/logout             → clear session cookie  (when configured)
//
// MIDDLEWARE ORDER MATTERS — RequestID and RealIP first so the logger sees
// them, Recoverer so a panicking handler becomes a 500 instead of a crash.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	passwords, err := auth.NewPasswordService(s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password service: %w", err)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	requireAuth := auth.RequireAuth(tokens, authService, s.logger)

	s.router.Get("/", handler.HandleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		// Protected routes: everything that reads or mutates accounts
		// requires a verified token.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Get("/allUsers", userHandler.HandleList)
			r.Patch("/patch/{id}", userHandler.HandleToggleGraduate)
			r.Patch("/patchToggle/{id}", userHandler.HandleToggleGraduate)
		})

		if s.config.GitHubClientID != "" {
			github := auth.NewGitHubProvider(
				s.config.GitHubClientID,
				s.config.GitHubClientSecret,
				s.config.GitHubCallbackURL,
			)
			oauthHandler := handler.NewOAuthHandler(github, authService, s.config.TokenTTL, s.logger)
			r.Get("/github/login", oauthHandler.HandleGitHubLogin)
			r.Get("/github/callback", oauthHandler.HandleGitHubCallback)
			r.Post("/logout", oauthHandler.HandleLogout)
		}
	})

	return nil
}

// Start runs the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new connections
//  2. Drain in-flight requests (30s budget)
//  3. Close the database (flushes WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
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
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
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
