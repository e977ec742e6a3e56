// Package main is the entry point for the accounts API server.
//
// main's job is deliberately small: read configuration, create the logger,
// build the server, start it. All actual logic lives in internal/ packages so
// it stays testable without a running process.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sakif/accounts-api/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the data directory exists (like `mkdir -p`).
	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads the environment into a server.Config, validating
// everything up front. Components receive the struct; nothing downstream
// touches os.Getenv.
//
// VARIABLES:
//
//	PORT                  listen port (default 8080)
//	DB_PATH               sqlite file (default data/accounts.db)
//	JWT_SECRET            REQUIRED — signing secret, ≥16 chars
//	TOKEN_TTL             session lifetime, Go duration syntax (default 1h)
//	BCRYPT_COST           REQUIRED — hashing work factor, an integer (12 is a
//	                      reasonable production value)
//	GITHUB_CLIENT_ID      \
//	GITHUB_CLIENT_SECRET   } optional — enables GitHub social login
//	GITHUB_CALLBACK_URL   /
func loadConfig() (server.Config, error) {
	cfg := server.Config{
		Port:     8080,
		DBPath:   "data/accounts.db",
		TokenTTL: time.Hour,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return cfg, err
		}
		cfg.Port = port
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	// JWT_SECRET must be set: a defaulted or empty secret would mean every
	// deployment signs tokens with the same well-known key.
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET must be set (try: openssl rand -hex 32)")
	}

	if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return cfg, err
		}
		cfg.TokenTTL = ttl
	}

	// The hashing work factor must be stated explicitly, and it must be a
	// number. A guessed or garbage cost changes the security posture of every
	// stored hash, so both the unset and the unparseable case stop startup.
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		return cfg, errors.New("BCRYPT_COST must be set (12 is a reasonable production value)")
	}
	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return cfg, fmt.Errorf("BCRYPT_COST must be an integer: %w", err)
	}
	cfg.BcryptCost = cost

	cfg.GitHubClientID = os.Getenv("GITHUB_CLIENT_ID")
	cfg.GitHubClientSecret = os.Getenv("GITHUB_CLIENT_SECRET")
	cfg.GitHubCallbackURL = os.Getenv("GITHUB_CALLBACK_URL")

	return cfg, nil
}
