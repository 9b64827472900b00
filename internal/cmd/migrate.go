package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/impawawa/Final-Project/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the users, cars and rentals tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		postgres, err := storage.NewPostgres(cfg.Database.DSN, cfg.Log.Level == "debug")
		if err != nil {
			logger.Error("failed to connect to postgres", zap.Error(err))
			return err
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(); err != nil {
			logger.Error("migration failed", zap.Error(err))
			return err
		}

		logger.Info("migrations applied")
		return nil
	},
}
