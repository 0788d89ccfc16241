package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const adminUsername = "admin"

// BootstrapAdmin creates the admin account when neither its username nor its
// email is registered yet. It is idempotent. A regular account holding the
// admin username or email is an error: it must not be promoted silently.
func BootstrapAdmin(ctx context.Context, users *UserStore, cfg Config) error {
	if !cfg.BootstrapAdminEnabled {
		return nil
	}
	if !ValidateEmail(cfg.AdminEmail) {
		return fmt.Errorf("invalid admin email %q", cfg.AdminEmail)
	}

	byName, err := users.FindByUsername(ctx, adminUsername)
	if err != nil {
		return err
	}
	byEmail, err := users.FindByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		return err
	}
	for _, u := range []*UserRecord{byName, byEmail} {
		if u != nil && u.Admin {
			return nil
		}
	}
	for _, u := range []*UserRecord{byName, byEmail} {
		if u != nil {
			return fmt.Errorf("admin identity %s/%s is held by regular account id=%d", adminUsername, cfg.AdminEmail, u.ID)
		}
	}

	password, err := generatePassword(24)
	if err != nil {
		return err
	}
	if _, err := users.CreateAdmin(ctx, adminUsername, cfg.AdminEmail, password); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	if cfg.InitialAdminPasswordPath != "" {
		if err := os.WriteFile(cfg.InitialAdminPasswordPath, []byte(password+"\n"), 0o600); err != nil {
			return err
		}
		log.Printf("initial admin created; credentials written to %s", cfg.InitialAdminPasswordPath)
	} else {
		log.Printf("initial admin created username=%s email=%s password=%s", adminUsername, cfg.AdminEmail, password)
	}
	return nil
}

// SeedUser is one entry of the seed file.
type SeedUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type seedDocument struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedFile reads a YAML document of the form:
//
//	users:
//	  - username: alice
//	    email: alice@example.com
//	    password: Passw0rd
func LoadSeedFile(path string) ([]SeedUser, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var doc seedDocument
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return doc.Users, nil
}

// SeedUsers creates the accounts that are not registered yet and returns how
// many were created. Entries failing the field validators are skipped.
func SeedUsers(ctx context.Context, users *UserStore, seeds []SeedUser) (int, error) {
	created := 0
	for _, su := range seeds {
		if err := validateSeed(su); err != nil {
			log.Printf("[seed] skip %q: %v", su.Username, err)
			continue
		}
		exists, err := accountExists(ctx, users, su.Username, su.Email)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if _, err := users.CreateUser(ctx, su.Username, su.Email, su.Password); err != nil {
			return created, fmt.Errorf("seed user %q: %w", su.Username, err)
		}
		created++
	}
	return created, nil
}

func validateSeed(su SeedUser) error {
	if err := ValidateUsername(su.Username).Err(); err != nil {
		return err
	}
	if !ValidateEmail(su.Email) {
		return errors.New("invalid email")
	}
	return ValidatePassword(su.Password).Err()
}

func accountExists(ctx context.Context, users *UserStore, username, email string) (bool, error) {
	u, err := users.FindByUsername(ctx, username)
	if err != nil || u != nil {
		return u != nil, err
	}
	u, err = users.FindByEmail(ctx, email)
	return u != nil, err
}
