// Package main is the entry point for the filmorate server.
//
// MAIN PACKAGE IN GO:
// The main package is kept minimal. Its job is to:
//  1. Read configuration (defaults, config.yaml, .env and environment)
//  2. Create the logger
//  3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/service, ...).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/filmorate/internal/config"
	"github.com/sakif/filmorate/internal/server"
)

func main() {
	if err := run(); err != nil {
		// The configured logger may not exist yet, so fall back to the default.
		slog.Error("filmorate stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// === 2. SET UP LOGGING ===
	// log.level and log.format pick the slog handler: text for a terminal,
	// json for log shippers.
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// === 3. DATABASE DIRECTORY ===
	// SQLite creates the file but not its parent directory.
	if cfg.Database.Path != ":memory:" {
		dir := filepath.Dir(cfg.Database.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT/SIGTERM and a graceful shutdown.
	return srv.Start()
}
