// Copyright (c) 2026 MEhub. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MathiasBorgers/MEhub-sub000/internal/core/script"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/config"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/constants"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/middleware"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/account"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/admin"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/auth"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler. Returns 200 whenever the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. Returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, sign-in, and credential changes.
	Auth *auth.Handler

	// Account handles profile self-management and session security.
	Account *account.Handler

	// Admin handles user administration (roles, forced sign-out, removal).
	Admin *admin.Handler

	// Script handles the marketplace catalog.
	Script *script.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The chain order matters: static assets bypass everything, and
// authentication resolves identity before any middleware that tags or
// redirects based on it.
func NewServer(
	context context.Context,
	cfg *config.Config,
	log *slog.Logger,
	verifier middleware.TokenVerifier,
	issuer middleware.TokenIssuer,
	sessions *session.Service,
	assets http.Handler,
	h Handlers,
) *Server {
	r := chi.NewRouter()

	secure := cfg.IsProduction()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.StaticBypass(assets))
	r.Use(middleware.Authenticate(verifier, sessions, secure))
	r.Use(middleware.Trace())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.RouteGuard())
	r.Use(middleware.SessionRenewal(sessions, issuer, secure))
	r.Use(middleware.APICors())
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/account", h.Account.Routes())
		api.Mount("/admin", h.Admin.Routes())
		api.Mount("/scripts", h.Script.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
