package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/aussiebroadwan/credauth/internal/auth/http"
	"github.com/aussiebroadwan/credauth/internal/auth/metrics"
	"github.com/aussiebroadwan/credauth/internal/auth/service"
	"github.com/aussiebroadwan/credauth/internal/auth/store"
	"github.com/aussiebroadwan/credauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/credauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/credauth/pkg/cryptox"
	"github.com/aussiebroadwan/credauth/pkg/httpx"
	"github.com/aussiebroadwan/credauth/pkg/jwtx"
	"github.com/aussiebroadwan/credauth/pkg/slogx"
)

// BuildVersion is overwritten by cmd/credauth from its ldflags.
var BuildVersion = "dev"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	issuer   jwtx.TokenIssuer
	hasher   cryptox.Hasher
	registry *prometheus.Registry

	authService *service.AuthService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// The store is migrated before New returns.
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "credauth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// Handler exposes the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting",
		slog.Int("port", app.cfg.Port),
		slog.String("driver", app.cfg.DatabaseDriver),
		slog.String("hash", app.cfg.HashAlgorithm),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// OpenStore connects to the configured driver without migrating.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case DriverSQLite:
		db, err := sqlite.NewStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	case DriverPostgres:
		db, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// Migrate opens the configured store, applies pending migrations and
// closes it again.
func Migrate(ctx context.Context, cfg Config) error {
	db, err := OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.ApplyMigrations(ctx); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", slog.String("driver", app.cfg.DatabaseDriver))
	return nil
}

// initServices builds the signer, the hasher and the auth service.
func (app *Application) initServices() error {
	issuer, err := NewIssuer(app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.issuer = issuer

	hasher, err := NewHasher(app.cfg)
	if err != nil {
		return err
	}
	app.hasher = hasher

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics := metrics.New()
	if err := authMetrics.Register(app.registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	app.authService = &service.AuthService{
		Store:           app.db,
		Hasher:          app.hasher,
		Issuer:          app.issuer,
		Metrics:         authMetrics,
		MinSecretLength: app.cfg.MinSecretLength,
	}

	started := time.Now()
	if err := app.authService.Warm(); err != nil {
		return fmt.Errorf("failed to prepare hasher: %w", err)
	}
	app.logger.Debug("hasher warmed", slog.Duration("took", time.Since(started)))

	return nil
}

// NewIssuer builds the token issuer, falling back to the built-in key only
// when the configuration explicitly allows it.
func NewIssuer(cfg Config, logger *slog.Logger) (*jwtx.HS256Issuer, error) {
	opts := []jwtx.Option{
		jwtx.WithIssuer(cfg.Issuer),
	}

	if cfg.SigningKey == "" {
		if !cfg.AllowInsecureSigningKey {
			return nil, errors.New("no signing key configured")
		}
		logger.Warn("using the built-in signing key; tokens can be forged by anyone who knows it",
			slog.String("fix", "set AUTH_SIGNING_KEY"),
		)
		return jwtx.NewInsecureDefaultIssuer(opts...), nil
	}

	issuer, err := jwtx.NewHS256Issuer([]byte(cfg.SigningKey), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	return issuer, nil
}

// NewHasher builds the configured secret hasher. Both kinds verify digests
// written by the other.
func NewHasher(cfg Config) (cryptox.Hasher, error) {
	switch cfg.HashAlgorithm {
	case HashBcrypt:
		return cryptox.NewBcryptHasher(cfg.BcryptCost), nil
	case HashArgon2id:
		pepper, err := cryptox.LoadPepper(cfg.PepperFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load pepper: %w", err)
		}
		return cryptox.NewArgon2idHasher(cryptox.Argon2Params{
			Memory:      cfg.Argon2Memory,
			Iterations:  cfg.Argon2Iterations,
			Parallelism: cfg.Argon2Parallelism,
		}, pepper), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", cfg.HashAlgorithm)
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.issuer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.Gatherer = app.registry
	router.CORSOrigins = httpx.SplitList(app.cfg.CORSAllowedOrigins)
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              app.cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
