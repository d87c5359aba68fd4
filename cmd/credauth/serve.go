package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/credauth/internal/auth/app"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Run the HTTP service. Pending migrations are applied on startup and
the process stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	addServeFlags(cmd.Flags())
	return cmd
}

// addServeFlags registers the overridable config keys. Flag names map onto
// config keys with dashes turned into underscores.
func addServeFlags(fs *pflag.FlagSet) {
	def := app.Default()

	fs.Int("port", def.Port, "HTTP listen port")
	addDatabaseFlags(fs)
	fs.String("issuer", def.Issuer, "token issuer claim")
	fs.Bool("allow-insecure-signing-key", false, "use the built-in signing key when none is configured (development only)")
	fs.String("hash-algorithm", def.HashAlgorithm, "secret hash for new principals (argon2id, bcrypt)")
	fs.Int("min-secret-length", def.MinSecretLength, "minimum password length")
	fs.String("cors-allowed-origins", def.CORSAllowedOrigins, "comma separated browser origins, * for any")
	fs.String("env", def.Env, "environment name (dev, staging, prod)")
	fs.String("log-level", def.LogLevel, "log level (debug, info, warn, error)")
	fs.String("log-format", def.LogFormat, "log format (json, text)")
	fs.Duration("shutdown-grace-period", def.ShutdownGracePeriod, "time allowed for in-flight requests on shutdown")
}

func addDatabaseFlags(fs *pflag.FlagSet) {
	def := app.Default()

	fs.String("database-driver", def.DatabaseDriver, "principal store driver (sqlite, postgres)")
	fs.String("database-url", def.DatabaseURL, "sqlite file/DSN or postgres URL")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := app.Load(configFile, cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
	}

	application, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return oops.Code("STARTUP_FAILED").With("operation", "initialize application").Wrap(err)
	}

	return application.Run()
}
