// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package user

import "errors"

// Sentinel errors for the service layer. The HTTP boundary maps each to a
// status code; oops wrapping adds the diagnostic context for logs.
var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Authenticate for both unknown
	// emails and wrong passwords. The two cases must stay externally
	// indistinguishable to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden is returned when the acting identity is authenticated
	// but not permitted to perform the operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidInput is returned when a field fails domain validation.
	ErrInvalidInput = errors.New("invalid input")
)
