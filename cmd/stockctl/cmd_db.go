package main

import (
	"fmt"

	"stockhub/internal/config"
	"stockhub/internal/infra"
	"stockhub/internal/seed"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// boot loads config, configures logging and opens the database.
func boot() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	infra.ConfigureLogger(cfg.Env)
	db, err := infra.NewDatabase(cfg.DatabaseURL, infra.DBOptionsFromConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, db, nil
}

// stockctl migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := boot()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
		if err := infra.RunMigrations(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
		return nil
	},
}

// stockctl seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create demo users and, on an empty catalog, demo products and a purchase",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := boot()
		if err != nil {
			return err
		}
		if err := infra.RunMigrations(db); err != nil {
			return err
		}
		res, err := seed.Run(cmd.Context(), db, cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "admin  %s / %s\n", res.Admin.Email, seed.DemoPassword)
		fmt.Fprintf(out, "staff  %s / %s\n", res.Staff.Email, seed.DemoPassword)
		if res.PurchaseID != nil {
			fmt.Fprintf(out, "seeded %d products and purchase %s\n", res.Products, res.PurchaseID)
		}
		return nil
	},
}
