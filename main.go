package main

import (
	"context"
	"fmt"
	"os"

	"promo-restaurant-api/config"
	"promo-restaurant-api/services"
	"promo-restaurant-api/security"
	"promo-restaurant-api/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "promo-restaurant-api",
	Short: "Restaurant promotions API",
	Long:  "HTTP API for restaurant promotions: accounts, sessions, catalog and restaurant ownership requests.",
	// Running the binary without a subcommand starts the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}
		defer app.close()
		app.log.Info().Str("driver", app.cfg.Database.Driver).Msg("schema up to date")
		return nil
	},
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account unless it already exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}
		defer app.close()

		seed := app.adminSeed()
		if v, _ := cmd.Flags().GetString("email"); v != "" {
			seed.Email = v
		}
		if v, _ := cmd.Flags().GetString("password"); v != "" {
			seed.Password = v
		}
		if seed.Email == "" || seed.Password == "" {
			return fmt.Errorf("admin email and password are required (ADMIN_EMAIL/ADMIN_PASSWORD or --email/--password)")
		}

		created, err := services.EnsureDefaultAdmin(context.Background(), app.store, security.NewHasher(), seed, app.log)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if !created {
			app.log.Info().Str("email", seed.Email).Msg("admin already exists")
		}
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().String("email", "", "admin email (defaults to ADMIN_EMAIL)")
	seedAdminCmd.Flags().String("password", "", "admin password (defaults to ADMIN_PASSWORD)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)
}

// app holds the handles every subcommand needs.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store
	close func()
}

// bootstrap loads configuration, opens the database and migrates it.
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := config.NewLogger(cfg.Env)

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &app{cfg: cfg, log: log, store: store.New(db), close: closeDB}, nil
}

func (a *app) adminSeed() services.AdminSeed {
	return services.AdminSeed{
		Email:    a.cfg.Admin.Email,
		Password: a.cfg.Admin.Password,
		Name:     a.cfg.Admin.Name,
	}
}
