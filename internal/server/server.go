// Package server wires repositories, services, and handlers together and
// owns the HTTP lifecycle. main.go stays minimal: load config, build a
// Server, call Start.
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

	"github.com/akozyrev/memocards/internal/auth"
	"github.com/akozyrev/memocards/internal/handler"
	"github.com/akozyrev/memocards/internal/middleware"
	sqliteRepo "github.com/akozyrev/memocards/internal/repository/sqlite"
	"github.com/akozyrev/memocards/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	BaseURL   string
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph: database, token and password
// services, domain services, handlers, routes. Each layer only sees the
// interfaces it needs.
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

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()

	userService := service.NewUserService(s.db, passwords, s.logger)
	deckService := service.NewDeckService(s.db, s.logger)
	cardService := service.NewCardService(s.db, s.db, s.db, s.logger)
	studyService := service.NewStudyService(s.db, s.db, s.db, s.logger)
	shareService := service.NewShareService(s.db, s.db, s.db, deckService, s.db, s.config.BaseURL, s.logger)

	authHandler := handler.NewAuthHandler(userService, tokens, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	deckHandler := handler.NewDeckHandler(deckService, s.logger)
	cardHandler := handler.NewCardHandler(cardService, s.logger)
	studyHandler := handler.NewStudyHandler(studyService, s.logger)
	shareHandler := handler.NewShareHandler(shareService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Anyone holding a token may preview a shared deck; importing
		// requires a logged-in caller.
		r.Get("/share/{token}", shareHandler.HandleGetShared)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/users/me", userHandler.HandleGetMe)
			r.Put("/users/me", userHandler.HandleUpdateMe)
			r.Put("/users/me/password", userHandler.HandleUpdatePassword)
			r.Delete("/users/me", userHandler.HandleDeleteMe)

			r.Get("/decks", deckHandler.HandleList)
			r.Post("/decks", deckHandler.HandleCreate)
			r.Get("/decks/{deckId}", deckHandler.HandleGet)
			r.Put("/decks/{deckId}", deckHandler.HandleUpdate)
			r.Delete("/decks/{deckId}", deckHandler.HandleDelete)

			r.Get("/decks/{deckId}/cards", cardHandler.HandleList)
			r.Post("/decks/{deckId}/cards", cardHandler.HandleCreate)
			r.Put("/decks/{deckId}/cards/{cardId}", cardHandler.HandleUpdate)
			r.Delete("/decks/{deckId}/cards/{cardId}", cardHandler.HandleDelete)

			r.Get("/study/{deckId}/cards", studyHandler.HandleGetCards)
			r.Post("/study/{deckId}/answer", studyHandler.HandleAnswer)

			r.Post("/decks/{deckId}/share", shareHandler.HandleCreateToken)
			r.Delete("/decks/{deckId}/share/{token}", shareHandler.HandleRevokeToken)
			r.Post("/share/{token}/import", shareHandler.HandleImport)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
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

// Router exposes the configured mux for tests that drive the server with
// httptest.
func (s *Server) Router() http.Handler {
	return s.router
}
