// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the token validity window used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// MinSecretLength is the minimum accepted signing secret length in bytes.
// HS256 keys shorter than the hash output offer reduced security.
const MinSecretLength = 32

// Identity is the authenticated identity carried by a verified token.
// It is derived per request and never persisted.
type Identity struct {
	ID    ulid.ULID
	Email string
	Role  string
}

// IsAdmin returns true if the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

// claims is the wire representation of an Identity. The user ID travels in
// the registered subject claim.
type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenService issues and verifies signed identity tokens (JWT, HS256).
// Token validity is purely a function of the signature and expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given signing secret and
// validity window. A zero ttl falls back to DefaultTokenTTL.
func NewTokenService(secret []byte, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code("AUTH_WEAK_SECRET").
			With("min_bytes", MinSecretLength).
			Errorf("token signing secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token validity window.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue produces a signed token embedding the identity, valid for the
// configured window from now.
func (s *TokenService) Issue(id Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: id.Email,
		Role:  id.Role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify validates a presented token and returns the Identity it carries.
// Returns ErrTokenExpired for tokens past expiry and ErrTokenInvalid for
// anything else that fails validation (bad signature, malformed claims,
// wrong algorithm).
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, oops.Code("AUTH_TOKEN_EXPIRED").Wrap(ErrTokenExpired)
		}
		return Identity{}, oops.Code("AUTH_TOKEN_INVALID").
			With("reason", err.Error()).
			Wrap(ErrTokenInvalid)
	}
	if !token.Valid {
		return Identity{}, oops.Code("AUTH_TOKEN_INVALID").Wrap(ErrTokenInvalid)
	}

	userID, err := ulid.Parse(c.Subject)
	if err != nil {
		return Identity{}, oops.Code("AUTH_TOKEN_INVALID").
			With("reason", "malformed subject").
			Wrap(ErrTokenInvalid)
	}

	return Identity{
		ID:    userID,
		Email: c.Email,
		Role:  c.Role,
	}, nil
}
