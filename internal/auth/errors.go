// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package auth

import "errors"

// Sentinel errors for token verification. The HTTP boundary maps both to
// the same 401 response; they stay distinguishable for logging.
var (
	// ErrTokenInvalid is returned when a token fails signature or claim
	// validation.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned when a token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)
