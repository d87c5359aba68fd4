package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/credauth/internal/auth/app"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the configured principal store and exit.`,
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	addDatabaseFlags(cmd.Flags())
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := app.Load(configFile, cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}

	cmd.Printf("Running %s migrations...\n", cfg.DatabaseDriver)
	if err := app.Migrate(cmd.Context(), cfg); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
