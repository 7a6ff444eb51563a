// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/identor/identor/internal/auth"
	"github.com/identor/identor/internal/observability"
)

type contextKey int

const identityKey contextKey = iota

// IdentityFrom returns the authenticated identity stored on the request
// context by RequireAuth. The boolean is false on unguarded routes.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// withIdentity returns a copy of ctx carrying the identity. Exposed to
// tests so handlers can be exercised without a full middleware chain.
func withIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// requireAuth rejects requests that do not carry a valid token cookie.
// The two failure modes get distinct messages: a missing cookie is a
// client that never signed in, everything else is a bad or stale token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := auth.ReadToken(r)
		if tokenString == "" {
			observability.RecordAuthFailure("missing_token")
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "No token provided"})
			return
		}

		identity, err := s.tokens.Verify(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				observability.RecordAuthFailure("expired_token")
			} else {
				observability.RecordAuthFailure("invalid_token")
			}
			s.logger.Debug("token rejected", "error", err, "path", r.URL.Path)
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
	})
}

// instrument records request metrics and an access log line per request.
// Metrics are labelled with the chi route pattern, not the raw path, so
// /users/{id} stays one series regardless of how many users exist.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		if s.metrics != nil {
			s.metrics.HTTPRequestsTotal.
				WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
				Inc()
			s.metrics.HTTPRequestDuration.
				WithLabelValues(route, r.Method).
				Observe(elapsed.Seconds())
		}

		s.logger.Info("request handled",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"remote", r.RemoteAddr,
		)
	})
}
