package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/deskauth/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/deskauth/internal/auth/http"
	"github.com/aussiebroadwan/deskauth/internal/auth/service"
	"github.com/aussiebroadwan/deskauth/internal/auth/store"
	"github.com/aussiebroadwan/deskauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/deskauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/deskauth/pkg/cryptox"
	"github.com/aussiebroadwan/deskauth/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// BuildVersion is overridden at build time via
// -ldflags "-X github.com/aussiebroadwan/deskauth/internal/auth/app.BuildVersion=..."
var BuildVersion = "v0.1.0"

const dbConnectTimeout = 10 * time.Second

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sqlDB    *sql.DB
	hasher   *cryptox.Hasher
	registry *prometheus.Registry

	// Services
	tokenService     *service.TokenService
	authService      *service.AuthService
	userService      *service.UserService
	bootstrapService *service.BootstrapService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// The configuration must already be valid.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "deskauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.seedAdmin(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMetrics()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

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
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	switch app.cfg.DatabaseDriver {
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db, app.sqlDB = db, db.DB()

	default:
		ctx, cancel := context.WithTimeout(context.Background(), dbConnectTimeout)
		defer cancel()

		pool := postgres.DefaultPoolConfig
		pool.MaxOpenConns = app.cfg.MaxOpenConns
		pool.MaxIdleConns = app.cfg.MaxIdleConns
		pool.ConnMaxLifetime = app.cfg.ConnMaxLifetime

		db, err := postgres.NewStore(ctx, app.cfg.DatabaseURL, pool)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db, app.sqlDB = db, db.DB()
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	alg, err := cryptox.ParseAlgorithm(app.cfg.HashAlgorithm)
	if err != nil {
		return err
	}

	hcfg := cryptox.DefaultHasherConfig()
	hcfg.Algorithm = alg
	hcfg.BcryptCost = app.cfg.BcryptCost
	hcfg.Concurrency = int64(app.cfg.HashConcurrency)

	app.hasher, err = cryptox.NewHasher(hcfg)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	app.tokenService, err = service.NewTokenService([]byte(app.cfg.JWTSecret), app.cfg.Issuer, app.cfg.TokenTTL, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	app.authService = &service.AuthService{
		Store:  app.db,
		Hasher: app.hasher,
		Tokens: app.tokenService,
	}
	app.userService = &service.UserService{
		Store:  app.db,
		Hasher: app.hasher,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:  app.db,
		Hasher: app.hasher,
		Token:  app.cfg.BootstrapToken,
	}

	if app.bootstrapService.Enabled() {
		app.logger.Info("bootstrap endpoint enabled")
	}
	return nil
}

// seedAdmin creates the configured admin when the database is empty.
func (app *Application) seedAdmin(ctx context.Context) error {
	if app.cfg.BootstrapAdminUsername == "" {
		return nil
	}

	admin, created, err := app.bootstrapService.SeedAdmin(ctx, domain.BootstrapData{
		AdminUsername: app.cfg.BootstrapAdminUsername,
		AdminPassword: app.cfg.BootstrapAdminPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if created {
		app.logger.Info("seeded admin user", "username", admin.Username)
	} else {
		app.logger.Info("users already exist, skipping admin seeding")
	}
	return nil
}

// initMetrics registers process-wide collectors next to the HTTP ones.
func (app *Application) initMetrics() {
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(app.sqlDB, app.cfg.DatabaseDriver),
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.db, app.logger, httpapi.Options{
		BuildVersion:   BuildVersion,
		AllowedOrigins: app.cfg.AllowedOrigins,
		RateLimits:     httpapi.DefaultRateLimits(),
		Registry:       app.registry,
	})

	// Wire services to router
	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.UserService = app.userService
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
