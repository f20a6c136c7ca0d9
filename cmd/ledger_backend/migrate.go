package main

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	for _, direction := range []database.MigrationDirection{database.MigrateUp, database.MigrateDown} {
		cmd.AddCommand(&cobra.Command{
			Use:   string(direction),
			Short: fmt.Sprintf("Run all %s migrations", direction),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				return runMigrations(cfg, direction, logger)
			},
		})
	}
	return cmd
}

func runMigrations(cfg *config.Config, direction database.MigrationDirection, logger *slog.Logger) error {
	if cfg.StorageDriver != config.StoragePostgres {
		return fmt.Errorf("migrations require STORAGE_DRIVER=%s", config.StoragePostgres)
	}

	logger.Info("Running database migrations...", slog.String("direction", string(direction)), slog.String("source", cfg.MigrationsPath))
	applied, err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, direction, logger)
	if err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}
	if applied {
		logger.Info("Database migrations applied successfully.")
	} else {
		logger.Info("No new migrations to apply.")
	}
	return nil
}
