// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Identor Contributors

// Package config loads the process configuration.
//
// Precedence, lowest to highest: built-in defaults, YAML config file,
// environment variables (ID_ prefix), command-line flags. The resulting
// Config is constructed once at startup and passed to constructors; no
// package reads configuration ambiently after that.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/identor/identor/internal/auth"
	"github.com/identor/identor/internal/xdg"
)

// EnvPrefix is the environment variable prefix, e.g. ID_DATABASE_URL.
const EnvPrefix = "ID_"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the process configuration. Treat values as read-only after
// Load returns.
type Config struct {
	ListenAddr  string        `koanf:"listen_addr"`
	MetricsAddr string        `koanf:"metrics_addr"`
	DatabaseURL string        `koanf:"database_url"`
	TokenSecret string        `koanf:"token_secret"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
	Environment string        `koanf:"environment"`
	LogFormat   string        `koanf:"log_format"`
}

// IsProduction reports whether the process runs with production
// hardening (Secure cookies, JSON logs by default).
func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func defaults() Config {
	return Config{
		ListenAddr:  ":8080",
		MetricsAddr: "127.0.0.1:9100",
		TokenTTL:    auth.DefaultTokenTTL,
		Environment: EnvDevelopment,
		LogFormat:   "json",
	}
}

// Load builds a Config from defaults, the optional YAML file at path,
// ID_-prefixed environment variables, and flags. A nil flag set skips the
// flag layer. An empty path falls back to the conventional XDG location
// ($XDG_CONFIG_HOME/identor/identor.yaml) when that file exists.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path == "" {
		if candidate := xdg.DefaultConfigFile(); fileExists(candidate) {
			path = candidate
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_INVALID").
				With("path", path).
				Wrap(err)
		}
	}

	// ID_DATABASE_URL becomes database_url.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_INVALID").Wrap(err)
		}
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants every command depends on. Commands that
// need the database additionally require DatabaseURL via RequireDatabase.
func (c Config) Validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return oops.Code("CONFIG_INVALID").
			With("environment", c.Environment).
			Errorf("environment must be %q or %q", EnvDevelopment, EnvProduction)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be \"json\" or \"text\"")
	}
	if c.TokenTTL < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("token_ttl must not be negative")
	}
	return nil
}

// RequireTokenSecret enforces the signing secret constraints for commands
// that issue or verify tokens.
func (c Config) RequireTokenSecret() error {
	if len(c.TokenSecret) < auth.MinSecretLength {
		return oops.Code("CONFIG_INVALID").
			With("min_bytes", auth.MinSecretLength).
			Errorf("token_secret must be set and at least %d bytes", auth.MinSecretLength)
	}
	return nil
}

// RequireDatabase enforces a DSN for commands that touch the database.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url must be set")
	}
	return nil
}
