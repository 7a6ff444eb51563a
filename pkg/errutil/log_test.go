// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/identor/identor/pkg/errutil"
)

func captureJSON(t *testing.T, log func(*slog.Logger)) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	log(logger)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestLogError_OopsError(t *testing.T) {
	err := oops.Code("SOMETHING_FAILED").With("id", "42").Errorf("it broke")

	record := captureJSON(t, func(l *slog.Logger) {
		errutil.LogError(l, "operation failed", err, "path", "/users")
	})

	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "SOMETHING_FAILED", record["code"])
	assert.Equal(t, "/users", record["path"])
	assert.Contains(t, record["error"], "it broke")

	ctx, ok := record["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "42", ctx["id"])
}

func TestLogError_PlainError(t *testing.T) {
	record := captureJSON(t, func(l *slog.Logger) {
		errutil.LogError(l, "operation failed", errors.New("plain failure"))
	})

	assert.Equal(t, "plain failure", record["error"])
	assert.NotContains(t, record, "code")
}

func TestLogWarn_Level(t *testing.T) {
	record := captureJSON(t, func(l *slog.Logger) {
		errutil.LogWarn(l, "rejected", errors.New("nope"))
	})

	assert.Equal(t, "WARN", record["level"])
}

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("x")
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.Code("MY_CODE").With("k", "v").Errorf("x")
	errutil.AssertErrorContext(t, err, "k", "v")
}
