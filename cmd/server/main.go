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

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/config"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/storage"
	"codeberg.org/talespin/server/migrations"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.6 init -d ../.. -g cmd/server/main.go -o ../../docs --outputTypes go --parseInternal --exclude _examples

// @title Talespin API
// @version 1.0
// @description Character chat, story generation and a community feed
// @description
// @description Features:
// @description - Chat with AI characters (free users get a daily allowance)
// @description - AI story and image generation
// @description - Community feed with likes, comments and a live websocket stream
// @description - OAuth authentication (Google, GitHub, Apple)

// @contact.name API Support
// @contact.url https://codeberg.org/talespin/server

// @host localhost:8080

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg, config.ParseMigrateFlags(os.Args[2:])); err != nil {
			logger.FatalErr(err, "migration failed")
		}

		return
	}

	logger.Info("starting talespin server")

	// initialize OAuth providers; the API still serves bearer tokens without them
	if err := auth.InitializeProviders(cfg.SessionSecret, cfg.BaseURL); err != nil {
		if !errors.Is(err, auth.ErrNoProviders) {
			logger.Fatal("failed to initialize OAuth providers", "error", err)
		}

		logger.Warn("no OAuth providers configured, login is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// create server with all dependencies
	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// chat and story generation can take well over a minute
		WriteTimeout: 3 * time.Minute,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	srv.Start(ctx)

	// wait for interrupt signal for graceful shutdown
	<-ctx.Done()
	stop()

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// notifies websocket clients, flushes the indexer and closes connections
	srv.Close()

	logger.Info("server stopped")
}

func runMigrate(cfg *config.Config, flags config.Flags) error {
	if flags.DryRun {
		names, err := migrations.Names(flags.Down)
		if err != nil {
			return err
		}

		for _, name := range names {
			fmt.Println(name)
		}

		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	defer db.Close()

	applied, err := migrations.Apply(ctx, db, flags.Down)
	if err != nil {
		return err
	}

	logger.Info("migrations complete", "applied", applied, "down", flags.Down)

	return nil
}
