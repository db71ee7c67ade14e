// Package main is the entry point for the PhotoShare API server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (internal/config: env vars, .env, config.yaml)
// 2. Create the logger
// 3. Build and start the server
//
// All actual logic lives in imported packages (internal/server, internal/graph, etc.).
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/photoshare-api/internal/config"
	"github.com/sakif/photoshare-api/internal/server"
)

// startupTimeout bounds connecting to the store and seeding it.
const startupTimeout = 30 * time.Second

func main() {
	// === 1. READ CONFIGURATION ===
	// .env and config.yaml are looked up in the working directory; both are
	// optional. Environment variables always win.
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Log levels (from least to most severe): Debug → Info → Warn → Error.
	// LOG_LEVEL picks the minimum; the default is info.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// === 3. CREATE AND START THE SERVER ===
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	srv, err := server.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
