package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/openreport/portal/internal/portal/http"
	"github.com/openreport/portal/internal/portal/notify"
	"github.com/openreport/portal/internal/portal/service"
	"github.com/openreport/portal/internal/portal/store"
	"github.com/openreport/portal/internal/portal/store/drivers/sqlite"
	"github.com/openreport/portal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the portal service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	keyService          *service.KeyService
	submissionService   *service.SubmissionService
	verificationService *service.VerificationService
	adminService        *service.AdminService
	outboxService       *service.OutboxService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router

	workerCtx    context.Context
	workerCancel context.CancelFunc
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "inquiry-portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.workerCtx, app.workerCancel = context.WithCancel(
		slogx.WithContext(context.Background(), app.logger),
	)

	app.housekeepingService.Start(app.workerCtx, app.cfg.HousekeepingInterval)
	if app.cfg.OutboxInterval > 0 {
		app.outboxService.Start(app.workerCtx, app.cfg.OutboxInterval, app.cfg.OutboxBatchSize)
	} else {
		app.logger.Info("in-process outbox worker disabled; relying on the cron endpoint")
	}

	app.logger.Info("portal service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down portal service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the background workers; in-flight batches finish first.
	app.outboxService.Stop()
	app.housekeepingService.Stop()
	if app.workerCancel != nil {
		app.workerCancel()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("portal service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
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

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.keyService = &service.KeyService{Store: app.db}
	app.submissionService = &service.SubmissionService{
		Store: app.db,
		Keys:  app.keyService,
	}
	app.verificationService = &service.VerificationService{
		Store: app.db,
		Keys:  app.keyService,
	}
	app.adminService = &service.AdminService{Store: app.db}

	mailer := notify.NewMailer(
		app.cfg.SMTPHost,
		app.cfg.SMTPPort,
		app.cfg.SMTPUser,
		app.cfg.SMTPPass,
		app.cfg.MailFrom,
	)
	app.outboxService = &service.OutboxService{
		Store:   app.db,
		Mail:    mailer,
		Alerter: notify.NewAdminNotifier(app.cfg.NotifyEndpoint),
	}

	app.housekeepingService = &service.HousekeepingService{Store: app.db}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		[]byte(app.cfg.AdminJWTSecret),
		app.cfg.CronSecret,
		app.cfg.OutboxBatchSize,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.KeyService = app.keyService
	router.SubmissionService = app.submissionService
	router.VerificationService = app.verificationService
	router.AdminService = app.adminService
	router.OutboxService = app.outboxService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
