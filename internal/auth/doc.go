// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

// Package auth provides the authentication primitives for Identor.
//
// # Primitives
//
//   - PasswordHasher - argon2id credential hashing and constant-time
//     verification (Argon2idHasher is the production implementation)
//   - TokenService - stateless signed tokens carrying an Identity; validity
//     is purely a function of the signature and expiry, there is no
//     server-side token store
//   - Cookie helpers - attach, read, and clear the token cookie with fixed
//     security attributes
//
// The deliberate trade-off of stateless tokens is that sign-out cannot
// invalidate a token already issued elsewhere. Callers that need revocation
// need a denylist, which Identor does not carry.
package auth
