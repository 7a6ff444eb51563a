// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

// Package user holds the user domain model and the account services.
//
// # Domain Types
//
// User is the persisted identity record. Its PasswordHash field is never
// serialized; API responses project the remaining fields.
//
// # Services
//
// Service coordinates account operations over a Repository:
//   - CreateAccount / Authenticate - the account service (signup, sign-in)
//   - List / GetByID / Update / Delete - user administration with a
//     self-or-admin authorization policy
//
// Authorization decisions are made here against the auth.Identity derived
// from the presented token; the HTTP layer only translates errors.
package user
