// Command authctl manages users, roles and claims in the provider database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophprovider/internal/admin"
	"github.com/dmitrijs2005/gophprovider/internal/logging"
	"github.com/dmitrijs2005/gophprovider/internal/server/auth"
	"github.com/dmitrijs2005/gophprovider/internal/server/config"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophprovider/internal/server/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "authctl:", err)
		if errors.Is(err, admin.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("a database DSN is required (-d or GOPHPROVIDER_DATABASE_DSN)")
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	tool := admin.NewTool(db, rm, hasher, services.PasswordPolicy(cfg.Password), os.Stdout, logger)
	if err := tool.Run(ctx, args); err != nil {
		if errors.Is(err, admin.ErrUsage) {
			tool.Usage()
		}
		return err
	}
	return nil
}
