// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

// Package errutil bridges oops-decorated errors and structured logging.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level with structured context. For oops
// errors the code and attached context are extracted into attributes;
// plain errors log their string. Extra key/value pairs are appended as-is.
func LogError(logger *slog.Logger, msg string, err error, extra ...any) {
	logger.Error(msg, attrs(err, extra)...)
}

// LogWarn is LogError at warn level, for rejections that are expected in
// normal operation (bad credentials, missing records).
func LogWarn(logger *slog.Logger, msg string, err error, extra ...any) {
	logger.Warn(msg, attrs(err, extra)...)
}

func attrs(err error, extra []any) []any {
	out := []any{"error", err.Error()}
	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != "" {
			out = append(out, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			out = append(out, "context", ctx)
		}
	}
	return append(out, extra...)
}
