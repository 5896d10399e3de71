package main

import (
	"fmt"

	"camerastore/internal/config"
	"camerastore/internal/infra/db"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			lg := newLogger(cfg.LogLevel)

			database, err := db.Connect(cmd.Context(), cfg, lg)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			lg.Infof("migration finished")
			return nil
		},
	}
}
