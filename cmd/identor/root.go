// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Identor CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identor",
		Short: "Identor - user account and authentication service",
		Long: `Identor is a user account backend: signup, sign-in, sign-out and
user administration over a JSON HTTP API with cookie-carried tokens.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
