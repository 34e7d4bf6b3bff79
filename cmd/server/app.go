package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/mailer"
	"github.com/taskflow/taskflow-api/internal/platform/postgres"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore

	// Service interfaces
	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
	loginService   *auth.LoginService

	// Outbound email
	mailDispatcher *mailer.Dispatcher
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"reset_token_lifetime_minutes", cfg.Auth.ResetTokenLifetimeMinutes)

	app.passwordHasher = auth.NewBcryptHasher()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.loginService = auth.NewLoginService(
		app.userStore,
		auth.NewBcryptVerifier(),
		cfg.Auth.LockoutPolicy(),
		logger,
	)
	logger.Info("Login service initialized",
		"lockout_max_attempts", cfg.Auth.LockoutMaxAttempts,
		"lockout_window_minutes", cfg.Auth.LockoutWindowMinutes)

	app.mailDispatcher = mailer.NewDispatcher(
		buildMailSender(cfg.Email, logger),
		mailer.DispatcherConfig{
			WorkerCount: cfg.Email.WorkerCount,
			QueueSize:   cfg.Email.QueueSize,
		},
		logger,
	)
	app.mailDispatcher.Start()

	return app, nil
}

// buildMailSender selects the outbound email transport. Without SMTP
// configuration the reset links are logged instead of sent, which keeps
// local development working offline.
func buildMailSender(cfg config.EmailConfig, logger *slog.Logger) mailer.Sender {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP not configured, password reset emails will be logged only")
		return mailer.NewLogSender(logger)
	}
	return mailer.NewSMTPSender(cfg)
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	app.mailDispatcher.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}
}
