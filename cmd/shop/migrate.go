package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	shopcfg "github.com/Skotchmaster/feed_shop/internal/config"
	"github.com/Skotchmaster/feed_shop/internal/repo"
	"github.com/Skotchmaster/feed_shop/internal/service"
	pkgdb "github.com/Skotchmaster/feed_shop/pkg/db"
	"github.com/Skotchmaster/feed_shop/pkg/logging"
)

func migrateCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update the database schema.

With --seed the default catalog is inserted into an empty products table and the
bootstrap admin from ADMIN_USERNAME/ADMIN_PASSWORD is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shopcfg.LoadDotEnv()
			cfg := shopcfg.Load()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db open: %w", err)
			}
			defer pkgdb.Close(db)

			if err := repo.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")

			if !seed {
				return nil
			}
			ctx = logging.IntoContext(ctx, logging.New(cfg.LogLevel))
			return bootstrap(ctx, cfg, repo.New(db))
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "insert default products and the bootstrap admin")
	return cmd
}

func bootstrap(ctx context.Context, cfg *shopcfg.Config, r *repo.GormRepo) error {
	catalog := &service.CatalogService{Repo: r}
	if err := catalog.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	auth := &service.AuthService{Repo: r}
	if err := auth.EnsureAdmin(ctx, service.AdminBootstrap{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Email:    cfg.AdminEmail,
		Phone:    cfg.AdminPhone,
	}); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}
