package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gorilla/sessions"

	"stergy-web/core"
)

func main() {
	cfg := core.Load()
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	storage, closeStorage, err := core.OpenStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer closeStorage()

	// Gorilla cookie store backs the session and preference cookies.
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))

	hasher := core.NewBcryptHasher(cfg.BcryptCost)
	users := core.NewUserStore(storage, hasher, nil)
	authService := core.NewAuthService(users, hasher, cfg.AdminEmail)

	if err := core.BootstrapAdmin(ctx, users, cfg); err != nil {
		log.Fatalf("bootstrap admin failed: %v", err)
	}
	if cfg.SeedFile != "" {
		seeds, err := core.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			log.Fatalf("failed to load seed file: %v", err)
		}
		n, err := core.SeedUsers(ctx, users, seeds)
		if err != nil {
			log.Fatalf("seeding users failed: %v", err)
		}
		log.Printf("seeded %d of %d users from %s", n, len(seeds), cfg.SeedFile)
	}

	router := core.NewRouter(cfg, store, authService, users)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting api server on %s storage=%s", addr, cfg.StorageDriver)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
