// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/identor/identor/internal/auth"
	"github.com/identor/identor/internal/config"
	"github.com/identor/identor/internal/httpapi"
	"github.com/identor/identor/internal/logging"
	"github.com/identor/identor/internal/observability"
	"github.com/identor/identor/internal/store"
	"github.com/identor/identor/internal/user"
	userpg "github.com/identor/identor/internal/user/postgres"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the JSON API server together with the observability listener
(metrics and health probes). Shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen_addr", "", "API listen address (overrides config)")
	cmd.Flags().String("metrics_addr", "", "metrics listen address (overrides config)")
	cmd.Flags().Bool("auto-migrate", false, "run pending schema migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if err := cfg.RequireTokenSecret(); err != nil {
		return err
	}

	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	logger := logging.SetDefault(logging.Options{
		Service: "identor",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if autoMigrate, _ := cmd.Flags().GetBool("auto-migrate"); autoMigrate {
		if err := migrateUp(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("schema migrations applied")
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	hasher := auth.NewArgon2idHasher()
	tokens, err := auth.NewTokenService([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}

	users, err := user.NewService(userpg.NewUserRepository(pool), hasher)
	if err != nil {
		return err
	}

	obsrv := observability.NewServer(cfg.MetricsAddr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})

	obsErrCh, err := obsrv.Start()
	if err != nil {
		return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
	}

	cookies := auth.CookiePolicy{
		Secure: cfg.IsProduction(),
		MaxAge: tokens.TTL(),
	}

	api, err := httpapi.NewServer(cfg.ListenAddr, users, tokens, cookies, httpapi.Options{
		Logger:  logger,
		Metrics: obsrv.Metrics(),
	})
	if err != nil {
		return err
	}

	apiErrCh, err := api.Start()
	if err != nil {
		stopObservability(obsrv)
		return oops.Code("API_START_FAILED").Wrap(err)
	}

	logger.Info("identor running",
		"api_addr", api.Addr(),
		"metrics_addr", obsrv.Addr(),
		"environment", cfg.Environment,
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-apiErrCh:
		if err != nil {
			logger.Error("api server failed", "error", err)
		}
	case err = <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if stopErr := api.Stop(shutdownCtx); stopErr != nil {
		logger.Error("api shutdown failed", "error", stopErr)
		if err == nil {
			err = stopErr
		}
	}
	if stopErr := obsrv.Stop(shutdownCtx); stopErr != nil {
		logger.Error("observability shutdown failed", "error", stopErr)
		if err == nil {
			err = stopErr
		}
	}

	return err
}

func stopObservability(s *observability.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		slog.Error("observability shutdown failed", "error", err)
	}
}
