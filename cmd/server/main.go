// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/LizaMalinina/npc-graph-sub001/internal/api"
	"github.com/LizaMalinina/npc-graph-sub001/internal/auth"
	"github.com/LizaMalinina/npc-graph-sub001/internal/authz"
	"github.com/LizaMalinina/npc-graph-sub001/internal/config"
	"github.com/LizaMalinina/npc-graph-sub001/internal/database"
	"github.com/LizaMalinina/npc-graph-sub001/internal/logging"
	"github.com/LizaMalinina/npc-graph-sub001/internal/models"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Timestamp: true,
	})
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("database", cfg.Database.Path).
		Msg("starting npc-graph")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close database")
		}
	}()

	if err := bootstrapAdmin(db, cfg); err != nil {
		return err
	}

	if cfg.Auth.JWTSecret == "" {
		// Development convenience only; Validate rejects this in production.
		// Sessions will not survive a restart.
		cfg.Auth.JWTSecret = uuid.New().String()
		logging.Warn().Msg("JWT_SECRET not set, generated an ephemeral secret")
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize authorization: %w", err)
	}

	server := api.NewServer(db, cfg, jwtManager, enforcer)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", httpServer.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logging.Info().Msg("shutdown complete")
	return nil
}

// bootstrapAdmin creates the initial admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD when no account with that email exists yet. Without it a
// fresh instance has no way to mint its first admin.
func bootstrapAdmin(db *database.DB, cfg *config.Config) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, database.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user, err := db.CreateUser(ctx, database.UserCreate{
		Email:        email,
		Name:         "Administrator",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logging.Info().Str("user_id", user.ID).Msg("bootstrap admin account created")
	return nil
}
