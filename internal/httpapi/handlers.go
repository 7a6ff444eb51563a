// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/identor/identor/internal/auth"
	"github.com/identor/identor/internal/observability"
	"github.com/identor/identor/internal/user"
)

// maxBodyBytes caps request bodies. The largest legitimate request is a
// signup with maximum-length fields, far below this.
const maxBodyBytes = 1 << 20

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// decodeJSON decodes the request body into v. Unknown keys are ignored so
// clients sending extra fields keep working; only malformed JSON fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
		return
	}

	u, err := s.users.CreateAccount(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	if err := s.issueCookie(w, u); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	if s.metrics != nil {
		s.metrics.SignupsTotal.Inc()
	}
	s.logger.Info("user signed up", "user_id", u.ID.String(), "email", u.Email)
	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "User signed up successfully",
		"user":    toUserResponse(u),
	})
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !decodeJSON(w, r, &req) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
		return
	}
	if req.Email == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
		return
	}

	u, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.RecordAuthFailure("bad_credentials")
		respondError(w, r, s.logger, err)
		return
	}

	if err := s.issueCookie(w, u); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	s.logger.Info("user signed in", "user_id", u.ID.String(), "email", u.Email)
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User signed in successfully",
		"user":    toUserResponse(u),
	})
}

func (s *Server) handleSignout(w http.ResponseWriter, r *http.Request) {
	s.cookies.ClearToken(w)
	s.logger.Info("user signed out")
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "User signed out successfully",
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully retrieved users",
		"users":   out,
		"count":   len(out),
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	u, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
		return
	}

	actor, _ := IdentityFrom(r.Context())

	patch := user.Patch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := user.Role(*req.Role)
		patch.Role = &role
	}

	u, err := s.users.Update(r.Context(), id, patch, actor)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	s.logger.Info("user updated", "user_id", u.ID.String(), "actor_id", actor.ID.String())
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    toUserResponse(u),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	actor, _ := IdentityFrom(r.Context())

	u, err := s.users.Delete(r.Context(), id, actor)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	s.logger.Info("user deleted", "user_id", u.ID.String(), "actor_id", actor.ID.String())
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "User deleted successfully",
		"user":    toUserResponse(u),
	})
}

// issueCookie signs a token for u and attaches it to the response.
func (s *Server) issueCookie(w http.ResponseWriter, u *user.User) error {
	token, err := s.tokens.Issue(auth.Identity{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
	})
	if err != nil {
		return err
	}
	s.cookies.SetToken(w, token)
	return nil
}

// parseUserID extracts and validates the {id} route parameter. Writes a
// 400 response and returns false on a malformed id.
func parseUserID(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	id, err := ulid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Validation failed"})
		return ulid.ULID{}, false
	}
	return id, true
}
