// Package cli provides the start-up steps shared by cmd/ledger and
// cmd/ledger-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ledger/internal/config"
	applog "ledger/internal/log"
)

// LoadEnvFile loads a .env file for local development.
// A missing file is not an error; production sets real environment variables.
func LoadEnvFile(paths ...string) error {
	for _, p := range append([]string{".env"}, paths...) {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// SetupLogger builds the process logger from config and makes it the slog default.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	logCfg := applog.DefaultConfig()
	logCfg.Component = component
	if cfg != nil {
		logCfg.Level = cfg.SlogLevel()
		logCfg.Format = cfg.LogFormat
	}
	logger := applog.New(logCfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
