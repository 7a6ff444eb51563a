// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/identor/identor/pkg/errutil"
)

func TestMigrateCommand_DownAndStepsAreExclusive(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ID_DATABASE_URL", "postgres://localhost/identor")

	cmd := NewMigrateCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--down", "--steps", "2"})

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestMigrateCommand_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ID_DATABASE_URL", "")

	cmd := NewMigrateCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}
