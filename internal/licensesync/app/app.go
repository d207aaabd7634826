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

	httpapi "github.com/aussiebroadwan/licensing/internal/licensesync/http"
	"github.com/aussiebroadwan/licensing/internal/licensesync/service"
	"github.com/aussiebroadwan/licensing/internal/orders"
	"github.com/aussiebroadwan/licensing/internal/orders/store"
	"github.com/aussiebroadwan/licensing/internal/orders/store/drivers/sqlite"
	"github.com/aussiebroadwan/licensing/pkg/httpx"
	"github.com/aussiebroadwan/licensing/pkg/licensesdk"
	"github.com/aussiebroadwan/licensing/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the license sync service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	license *licensesdk.Client

	// Services
	dispatcher       *orders.Dispatcher
	helper           *orders.Helper
	reconcileService *service.ReconcileService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "licensesync",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initLicenseClient(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.reconcileService.Start()

	app.logger.Info("license sync service starting", "port", app.cfg.Port, "version", BuildVersion)

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
			app.reconcileService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down license sync service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.reconcileService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("license sync service stopped")
	return nil
}

// initDatabase opens the order store and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initLicenseClient builds the license service client and signs it in,
// either with credentials or a static token.
func (app *Application) initLicenseClient(ctx context.Context) error {
	if app.cfg.SLSBaseURL == "" {
		return errors.New("SLS_BASE_URL is required")
	}

	app.license = licensesdk.NewClient(app.cfg.SLSBaseURL,
		licensesdk.WithTimeout(app.cfg.SLSTimeout),
		licensesdk.WithLogger(app.logger),
		licensesdk.WithRateLimit(httpx.OutboundLimit),
	)

	switch {
	case app.cfg.SLSUsername != "":
		if err := app.authenticate(ctx); err != nil {
			return fmt.Errorf("failed to authenticate with license service: %w", err)
		}
	case app.cfg.SLSToken != "":
		app.license.SetToken(app.cfg.SLSToken, nil)
		app.logger.Info("license client using static token")
	default:
		app.logger.Warn("no license service credentials configured, license calls will fail")
	}

	return nil
}

func (app *Application) authenticate(ctx context.Context) error {
	if _, err := app.license.Authenticate(ctx, app.cfg.SLSUsername, app.cfg.SLSPassword); err != nil {
		return err
	}

	attrs := []any{"username", app.cfg.SLSUsername}
	if exp := app.license.TokenExpiresAt(); exp != nil {
		attrs = append(attrs, "expires_at", exp.Format(time.RFC3339))
	}
	app.logger.Info("license client authenticated", attrs...)
	return nil
}

// initServices wires the order helper, event dispatcher and reconciler
func (app *Application) initServices() {
	app.dispatcher = orders.NewDispatcher()
	app.helper = orders.NewHelper(app.license, app.db.Orders(), app.logger)
	app.helper.RegisterOrderHooks(app.dispatcher, orders.StaticProductMapper(app.cfg.ProductMap))

	if len(app.cfg.ProductMap) == 0 {
		app.logger.Warn("no product map configured, licenses will be created without a product")
	}

	app.reconcileService = service.NewReconcileService(
		app.db,
		app.dispatcher,
		app.license,
		app.logger,
		app.cfg.ReconcileInterval,
	)
	if app.cfg.SLSUsername != "" {
		app.reconcileService.Reauthenticate = app.authenticate
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.Dispatcher = app.dispatcher
	router.Session = app.license
	if app.cfg.WebhookSecret != "" {
		router.WebhookSecret = []byte(app.cfg.WebhookSecret)
	} else {
		app.logger.Warn("webhook secret not set, order webhooks are unsigned")
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
