package cmd

import (
	"fmt"

	"tailor_shop/internal/config"
	"tailor_shop/internal/database"
	"tailor_shop/internal/logger"
	"tailor_shop/internal/migrations"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database schema and seed the admin user and default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		log := logger.New(cfg.AppEnv)

		db, err := database.Initialize(cfg.DatabaseURL, cfg.AppEnv, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		admin := migrations.Admin{Username: cfg.AdminUsername, Password: cfg.AdminPassword}
		return migrations.RunMigrations(cmd.Context(), db, admin, log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
