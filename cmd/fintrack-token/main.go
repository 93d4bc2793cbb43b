// Command fintrack-token provisions a user and prints a bearer token for it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func main() {
	userID := flag.String("user", "", "user id to provision and sign a token for")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_TTL)")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentAuth)
	if *ttl > 0 {
		cfg.JWTTTL = *ttl
	}
	if err := cfg.ValidateAuth(); err != nil {
		logger.Error("Authentication configuration invalid", log.FieldError, err)
		os.Exit(1)
	}
	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: fintrack-token -user <id> [-ttl 24h]")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := cli.InitRepository(ctx, logger, cfg)
	if repo.Cleanup != nil {
		defer repo.Cleanup()
	}

	user, err := services.NewUserService(repo.Repository, nil).EnsureUser(ctx, *userID)
	if err != nil {
		logger.Error("Failed to provision user", log.FieldError, err, log.FieldUserID, *userID)
		os.Exit(1)
	}

	token, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL).Issue(user.ID)
	if err != nil {
		logger.Error("Failed to issue token", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Issued token", log.FieldUserID, user.ID, "expires_in", cfg.JWTTTL.String())
	fmt.Println(token)
}
