package main

import (
	"github.com/spf13/cobra"
	"github.com/yukikurage/workboard-api/internal/config"
	"github.com/yukikurage/workboard-api/internal/database"
	"github.com/yukikurage/workboard-api/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		log := logging.New(cfg.LogLevel, cfg.LogFormat)

		db, err := database.Open(cfg, log)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := database.Migrate(db, log); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}
