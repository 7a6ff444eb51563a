// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/identor/identor/internal/auth"
	"github.com/identor/identor/internal/observability"
	"github.com/identor/identor/internal/user"
)

// Server is the JSON API listener.
type Server struct {
	addr    string
	users   *user.Service
	tokens  *auth.TokenService
	cookies auth.CookiePolicy
	logger  *slog.Logger
	metrics *observability.Metrics

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// Options carries the optional collaborators of a Server.
type Options struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics may be nil; requests are then served unmetered.
	Metrics *observability.Metrics
}

// NewServer creates an API server. addr is the listen address in
// "host:port" format (":8080" for all interfaces).
func NewServer(addr string, users *user.Service, tokens *auth.TokenService, cookies auth.CookiePolicy, opts Options) (*Server, error) {
	if users == nil {
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("user service is required")
	}
	if tokens == nil {
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("token service is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:    addr,
		users:   users,
		tokens:  tokens,
		cookies: cookies,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Handler builds the route tree. Split out from Start so tests can drive
// the full middleware chain through httptest without a real listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Post("/signup", s.handleSignup)
	r.Post("/signin", s.handleSignin)
	r.Post("/signout", s.handleSignout)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/{id}", s.handleGetUser)
			r.Patch("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})
	})

	return r
}

// Start begins serving the API.
// It returns an error channel that will receive any errors from the HTTP
// server after it starts. The channel is closed when the server stops
// gracefully. Callers should monitor this channel to detect failures.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		// Use local httpSrv to avoid race with subsequent Start() calls
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server, letting in-flight requests
// finish within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
