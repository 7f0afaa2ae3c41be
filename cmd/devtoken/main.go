package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/config"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/storage"
	"codeberg.org/talespin/server/talespin/users"
)

// mints a JWT for a local test user so the API and TUI can be tried without OAuth
func main() {
	email := flag.String("email", "test@talespin.dev", "test user email")
	providerID := flag.String("id", "test-user-1", "provider id of the test user")
	flag.Parse()

	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if cfg.Environment == "production" {
		logger.Fatal("refusing to mint test tokens in production")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}

	defer db.Close()

	user, err := users.NewRepository(db).FindOrCreateByProvider(ctx, "test", *providerID, *email, "Test User", "")
	if err != nil {
		logger.Fatal("failed to create test user", "error", err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)
	if err != nil {
		logger.Fatal("failed to generate JWT", "error", err)
	}

	fmt.Fprintf(os.Stderr, "test user %s (id %s)\n", user.Email, user.ID)
	fmt.Printf("export TALESPIN_TOKEN=%q\n", token)
}
