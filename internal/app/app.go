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

	httpapi "github.com/tasklight/tasklight/internal/http"
	"github.com/tasklight/tasklight/internal/mail"
	"github.com/tasklight/tasklight/internal/service"
	"github.com/tasklight/tasklight/internal/store"
	"github.com/tasklight/tasklight/internal/store/drivers/sqlite"
	"github.com/tasklight/tasklight/pkg/jwtx"
	"github.com/tasklight/tasklight/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the store, services, and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	authService         *service.AuthService
	userService         *service.UserService
	organizationService *service.OrganizationService
	listService         *service.ListService
	taskService         *service.TaskService
	auditService        *service.AuditService
	authorizeService    *service.AuthorizeService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tasklight",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("TASKLIGHT_JWT_SECRET is required")
	}

	codec, err := jwtx.NewCodec([]byte(cfg.JWTSecret), cfg.Issuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("tasklight starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown stops the server, drains the audit recorder, and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tasklight...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// After the server stops, no new audit entries arrive; drain the rest.
	app.auditService.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tasklight stopped")
	return nil
}

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

func (app *Application) initServices() {
	app.auditService = service.NewAuditService(app.db, app.logger, app.cfg.AuditBuffer)

	app.authService = service.NewAuthService(
		app.db,
		app.codec,
		app.newMailer(),
		app.auditService,
		service.AuthConfig{
			BcryptCost: app.cfg.BcryptCost,
			ResetTTL:   app.cfg.ResetTokenTTL,
			BaseURL:    app.cfg.BaseURL,
		},
	)

	app.authorizeService = service.NewAuthorizeService(app.db)
	app.userService = service.NewUserService(app.db, app.auditService)
	app.organizationService = service.NewOrganizationService(app.db, app.authorizeService, app.auditService)
	app.listService = service.NewListService(app.db, app.authorizeService, app.auditService)
	app.taskService = service.NewTaskService(app.db, app.authorizeService, app.auditService)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) newMailer() mail.Mailer {
	if app.cfg.SMTPAddr == "" {
		app.logger.Info("no SMTP relay configured, mail goes to the log")
		return mail.LogMailer{}
	}
	return &mail.SMTPMailer{Addr: app.cfg.SMTPAddr, From: app.cfg.SMTPFrom}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.codec, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.OrganizationService = app.organizationService
	router.ListService = app.listService
	router.TaskService = app.taskService
	router.AuditService = app.auditService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
