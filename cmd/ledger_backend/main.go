package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// @title Ledger Core API
// @version 1.0
// @description Double-entry bookkeeping backend: chart of accounts, vouchers, bank reconciliation and accounts payable.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := newRootCommand(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	serve := newServeCommand(logger)

	rootCmd := &cobra.Command{
		Use:   "ledger_backend",
		Short: "Ledger core HTTP backend",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		// Running without a subcommand starts the server
		RunE: serve.RunE,
	}

	rootCmd.AddCommand(serve, newMigrateCommand(logger))
	return rootCmd
}
