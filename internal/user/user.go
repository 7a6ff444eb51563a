// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package user

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the authorization role of a user.
type Role string

// Known roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid returns true if the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Field validation constraints.
const (
	MinNameLength     = 2
	MaxNameLength     = 255
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxEmailLength    = 255
)

// emailRegex is a pragmatic email shape check: one @, no spaces, a dot in
// the domain part. Deliverability is not this package's problem.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is a persisted identity record.
//
// PasswordHash is excluded from every serialization path; API responses
// project the remaining fields only.
type User struct {
	ID           ulid.ULID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidateName checks name length bounds.
func ValidateName(name string) error {
	if len(name) < MinNameLength || len(name) > MaxNameLength {
		return oops.Code("USER_INVALID_NAME").
			With("min", MinNameLength).
			With("max", MaxNameLength).
			Wrap(ErrInvalidInput)
	}
	return nil
}

// ValidateEmail checks email shape and length.
func ValidateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength || !emailRegex.MatchString(email) {
		return oops.Code("USER_INVALID_EMAIL").Wrap(ErrInvalidInput)
	}
	return nil
}

// ValidatePassword checks plaintext password length bounds. Hashing output
// length is fixed, so only the input is bounded.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return oops.Code("USER_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			With("max", MaxPasswordLength).
			Wrap(ErrInvalidInput)
	}
	return nil
}

// ValidateRole checks role membership.
func ValidateRole(role Role) error {
	if !role.Valid() {
		return oops.Code("USER_INVALID_ROLE").
			With("role", string(role)).
			Wrap(ErrInvalidInput)
	}
	return nil
}

// Patch is a partial update. Nil fields are left untouched; this mirrors
// the external PATCH semantics where absent fields are ignored, not nulled.
type Patch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}

// Empty returns true if the patch carries no changes.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.Role == nil
}

// Repository manages user persistence. All operations are single-statement
// requests; connection-level concurrency is the pool's concern.
type Repository interface {
	// Create stores a new user. Returns ErrDuplicateEmail if the email is
	// already registered (unique constraint, not a pre-check).
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	// Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*User, error)

	// Update persists the full row. Returns ErrNotFound if the ID does not
	// exist and ErrDuplicateEmail on an email collision.
	Update(ctx context.Context, u *User) error

	// Delete removes a user and returns the deleted row.
	// Returns ErrNotFound if absent.
	Delete(ctx context.Context, id ulid.ULID) (*User, error)
}
