// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

// Package main is the identor command line entry point.
package main

import (
	"fmt"
	"os"
)

// Build metadata, injected via -ldflags at release time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := NewRootCmd()
	root.Version = buildVersion()

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildVersion renders the version string shown by --version. The commit
// hash is truncated to the short form.
func buildVersion() string {
	return fmt.Sprintf("%s (%.12s, built %s)", version, commit, date)
}
