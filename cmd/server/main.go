// Package main is the entry point for the postboard server.
//
// The main package is kept minimal. Its job is to:
// 1. Read configuration (environment variables, optionally via a .env file)
// 2. Create the logger
// 3. Build the server and block until it shuts down
//
// All actual logic lives in internal/ packages so it can be tested without
// starting a process.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/postboard/internal/config"
	"github.com/sakif/postboard/internal/logger"
	"github.com/sakif/postboard/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// See internal/config for every variable and its default.
	// Example: PORT=8080 DATABASE_PATH=/var/lib/postboard/prod.db SESSION_SECRET=$(openssl rand -hex 32)
	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// LOG_LEVEL follows slog levels: -4 debug, 0 info, 4 warn, 8 error.
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.Session.Secret == "change-this-secret" {
		log.Warn("SESSION_SECRET is the default value, set it before deploying")
	}

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
