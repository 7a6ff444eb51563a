// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/identor/identor/internal/user"
	"github.com/identor/identor/pkg/errutil"
)

// userResponse is the external projection of a user record. PasswordHash
// has no place here by construction, not just by tag.
type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(timeFormat),
		UpdatedAt: u.UpdatedAt.Format(timeFormat),
	}
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response body", "error", err)
	}
}

// respondError maps a service error to its status code and a generic
// message. Internal detail stays in the logs; the body deliberately leaks
// nothing about which part of the operation failed.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, msg := classify(err)

	if status >= http.StatusInternalServerError {
		errutil.LogError(logger, "request failed", err, "method", r.Method, "path", r.URL.Path)
	} else {
		errutil.LogWarn(logger, "request rejected", err, "method", r.Method, "path", r.URL.Path, "status", status)
	}

	respondJSON(w, status, map[string]string{"error": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, user.ErrInvalidInput):
		return http.StatusBadRequest, "Validation failed"
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, user.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, user.ErrDuplicateEmail):
		return http.StatusConflict, "Email already exists"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
