// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/identor/identor/internal/auth"
)

// Service provides account and user administration operations.
type Service struct {
	repo   Repository
	hasher auth.PasswordHasher
}

// NewService creates a Service.
func NewService(repo Repository, hasher auth.PasswordHasher) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("USER_SERVICE_INVALID").Errorf("repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("USER_SERVICE_INVALID").Errorf("password hasher is required")
	}
	return &Service{repo: repo, hasher: hasher}, nil
}

// dummyPasswordHash is verified against when the email does not resolve to
// a user, so Authenticate does comparable work for existing and missing
// accounts. This is NOT a real credential; it matches no password.
//
//nolint:gosec // G101: intentionally fake hash for timing uniformity, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// CreateAccount registers a new user with the "user" role. The password is
// hashed before anything touches the repository; the plaintext is never
// stored. Email uniqueness rides on the database constraint, surfaced as
// ErrDuplicateEmail.
func (s *Service) CreateAccount(ctx context.Context, name, email, password string) (*User, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("USER_CREATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	now := time.Now().UTC()
	u := &User{
		ID:           ulid.Make(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code("USER_DUPLICATE_EMAIL").
				With("email", email).
				Wrap(err)
		}
		return nil, oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	return u, nil
}

// Authenticate verifies an email/password pair and returns the matching
// user. Unknown emails and wrong passwords both come back as
// ErrInvalidCredentials; a dummy hash is verified for missing accounts so
// the two paths take comparable time.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)

	u, lookupErr := s.repo.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("USER_AUTH_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = u.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, oops.Code("USER_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("USER_AUTH_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, oops.Code("USER_INVALID_CREDENTIALS").
			With("email", email).
			Wrap(ErrInvalidCredentials)
	}

	// Opportunistic rehash for stored hashes in an older format. Best
	// effort; sign-in succeeds even if the update fails.
	if s.hasher.NeedsUpgrade(u.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			u.PasswordHash = newHash
			u.UpdatedAt = time.Now().UTC()
			_ = s.repo.Update(ctx, u) //nolint:errcheck // best effort
		}
	}

	return u, nil
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").Wrap(err)
	}
	return users, nil
}

// GetByID returns a single user. Returns ErrNotFound if absent.
func (s *Service) GetByID(ctx context.Context, id ulid.ULID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("USER_GET_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return u, nil
}

// Update applies a partial update to a user record.
//
// Policy: permitted for the user themselves or an admin. Touching the Role
// field requires admin even on a self-update, regardless of the value. A
// password in the patch is hashed before persisting; absent fields are left
// untouched.
func (s *Service) Update(ctx context.Context, id ulid.ULID, patch Patch, actor auth.Identity) (*User, error) {
	if err := authorize(id, actor); err != nil {
		return nil, err
	}
	if patch.Role != nil && !actor.IsAdmin() {
		return nil, oops.Code("USER_ROLE_CHANGE_FORBIDDEN").
			With("actor_id", actor.ID.String()).
			With("target_id", id.String()).
			Wrap(ErrForbidden)
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("USER_UPDATE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}

	if patch.Empty() {
		return u, nil
	}

	if patch.Name != nil {
		if err := ValidateName(*patch.Name); err != nil {
			return nil, err
		}
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
		u.Email = email
	}
	if patch.Role != nil {
		if err := ValidateRole(*patch.Role); err != nil {
			return nil, err
		}
		u.Role = *patch.Role
	}
	if patch.Password != nil {
		if err := ValidatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, hashErr := s.hasher.Hash(*patch.Password)
		if hashErr != nil {
			return nil, oops.Code("USER_UPDATE_FAILED").
				With("operation", "hash password").
				Wrap(hashErr)
		}
		u.PasswordHash = hash
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return nil, oops.Code("USER_DUPLICATE_EMAIL").
				With("id", id.String()).
				Wrap(err)
		case errors.Is(err, ErrNotFound):
			return nil, oops.Code("USER_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		default:
			return nil, oops.Code("USER_UPDATE_FAILED").
				With("id", id.String()).
				Wrap(err)
		}
	}

	return u, nil
}

// Delete removes a user record and returns the deleted row. Same
// self-or-admin policy as Update; the role-change check does not apply.
func (s *Service) Delete(ctx context.Context, id ulid.ULID, actor auth.Identity) (*User, error) {
	if err := authorize(id, actor); err != nil {
		return nil, err
	}

	u, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("USER_DELETE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return u, nil
}

// authorize enforces the self-or-admin policy.
func authorize(target ulid.ULID, actor auth.Identity) error {
	if actor.ID == target || actor.IsAdmin() {
		return nil
	}
	return oops.Code("USER_FORBIDDEN").
		With("actor_id", actor.ID.String()).
		With("target_id", target.String()).
		Wrap(ErrForbidden)
}

// NormalizeEmail lowercases and trims an email address. Lookups are
// case-insensitive either way; normalizing on write keeps stored values
// canonical.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
