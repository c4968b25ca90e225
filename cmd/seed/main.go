// Command seed migrates the database and creates the admin account named by
// the configuration. The password is read from TASKBOARD_ADMIN_PASSWORD or,
// when that is empty and the account does not exist yet, prompted for on the
// terminal.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/taskboard/internal/logging"
	"github.com/dmitrijs2005/taskboard/internal/server"
	"github.com/dmitrijs2005/taskboard/internal/server/cache"
	"github.com/dmitrijs2005/taskboard/internal/server/config"
	"github.com/dmitrijs2005/taskboard/internal/server/services"
	"golang.org/x/term"
)

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no admin password configured and stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Admin password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(os.Stderr, cfg.LogLevel)

	h, err := server.OpenHandles(ctx, cfg)
	if err != nil {
		return err
	}
	defer h.Close()

	if err := h.Repos.RunMigrations(ctx, h.DB); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	password := readPassword
	if cfg.AdminPassword != "" {
		password = func() (string, error) { return cfg.AdminPassword, nil }
	}

	users := services.NewUserService(h.DB, h.Repos, nil, cache.Noop{}, logger)
	u, created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		fmt.Printf("admin %s created (id=%s)\n", u.Email, u.ID)
	} else {
		fmt.Printf("admin %s already exists (id=%s)\n", u.Email, u.ID)
	}
	return nil
}

func main() {
	if err := run(context.Background(), config.LoadConfig()); err != nil {
		log.Fatalf("%v", err)
	}
}
