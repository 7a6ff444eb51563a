// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

// Package httpapi exposes the JSON API over HTTP.
//
// The package owns routing, request decoding, the auth guard middleware,
// and the mapping from service errors to status codes. Business rules live
// in internal/user; nothing here touches the database directly.
package httpapi
