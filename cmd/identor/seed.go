// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/identor/identor/internal/auth"
	"github.com/identor/identor/internal/config"
	"github.com/identor/identor/internal/store"
	"github.com/identor/identor/internal/user"
	userpg "github.com/identor/identor/internal/user/postgres"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed subcommand.
type seedConfig struct {
	email    string
	name     string
	password string
	timeout  time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin account",
		Long: `Creates the initial admin account so the deployment has at least one
identity able to administer users. This command is idempotent - if an
account with the email already exists it is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "", "admin account email (required)")
	cmd.Flags().StringVar(&cfg.name, "name", "Administrator", "admin account display name")
	cmd.Flags().StringVar(&cfg.password, "password", "", "admin account password (required)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, scfg *seedConfig) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	email := user.NormalizeEmail(scfg.email)
	if err := user.ValidateName(scfg.name); err != nil {
		return err
	}
	if err := user.ValidateEmail(email); err != nil {
		return err
	}
	if err := user.ValidatePassword(scfg.password); err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), scfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	hash, err := auth.NewArgon2idHasher().Hash(scfg.password)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "hash password").Wrap(err)
	}

	now := time.Now().UTC()
	admin := &user.User{
		ID:           ulid.Make(),
		Name:         scfg.name,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	repo := userpg.NewUserRepository(pool)
	if err := repo.Create(ctx, admin); err != nil {
		// The email unique constraint makes reruns safe; an existing
		// account wins over the seed.
		if errors.Is(err, user.ErrDuplicateEmail) {
			cmd.Println("Admin account already exists, skipping seed")

			existing, getErr := repo.GetByEmail(ctx, email)
			if getErr != nil {
				slog.Warn("Could not verify existing admin account",
					"email", email,
					"error", getErr)
				return nil
			}
			if existing.Role != user.RoleAdmin {
				slog.Warn("Existing account with seed email is not an admin",
					"email", email,
					"role", existing.Role)
			}
			return nil
		}
		return oops.Code("SEED_FAILED").With("operation", "create admin account").Wrap(err)
	}

	cmd.Printf("Created admin account %s (%s)\n", admin.Name, admin.Email)
	return nil
}
