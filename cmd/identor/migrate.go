// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/identor/identor/internal/config"
	"github.com/identor/identor/internal/store"
)

// migrateConfig holds configuration for the migrate subcommand.
type migrateConfig struct {
	down  bool
	steps int
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations",
		Long: `Apply pending schema migrations against the PostgreSQL database.
Use --down to roll everything back, or --steps to move a fixed number of
versions (negative values roll back).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, args, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.down, "down", false, "roll back all migrations")
	cmd.Flags().IntVar(&cfg.steps, "steps", 0, "apply a fixed number of migration steps (negative rolls back)")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string, mcfg *migrateConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	if mcfg.down && mcfg.steps != 0 {
		return oops.Code("CONFIG_INVALID").Errorf("--down and --steps are mutually exclusive")
	}

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "open migrator").Wrap(err)
	}
	defer func() { _ = migrator.Close() }()

	switch {
	case mcfg.down:
		cmd.Println("Rolling back all migrations...")
		err = migrator.Down()
	case mcfg.steps != 0:
		cmd.Printf("Applying %d migration step(s)...\n", mcfg.steps)
		err = migrator.Steps(mcfg.steps)
	default:
		cmd.Println("Running migrations...")
		err = migrator.Up()
	}
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		cmd.Println("Migrations completed (no version recorded)")
		return nil
	}

	cmd.Printf("Migrations completed, schema version %d (dirty: %v)\n", version, dirty)
	return nil
}

// migrateUp applies all pending migrations. Used by serve --auto-migrate.
func migrateUp(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "open migrator").Wrap(err)
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	return nil
}
