// Package config loads and validates application configuration.
package config

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/domain"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Email    EmailConfig    `mapstructure:"email"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// Environment toggles production behavior such as the Secure cookie
	// attribute.
	Environment string `mapstructure:"environment" validate:"required,oneof=development production test"`
}

// Production reports whether the server runs in production mode.
func (c ServerConfig) Production() bool {
	return c.Environment == "production"
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and lockout settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the access-token lifetime. Defaults to two
	// hours.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// ResetTokenLifetimeMinutes is the password-reset token lifetime.
	ResetTokenLifetimeMinutes int `mapstructure:"reset_token_lifetime_minutes" validate:"required,gt=0"`

	// LockoutMaxAttempts and LockoutWindowMinutes parameterize the login
	// lockout machine. They exist as configuration so the thresholds can be
	// tuned without a redeploy.
	LockoutMaxAttempts   int `mapstructure:"lockout_max_attempts"   validate:"required,gt=0"`
	LockoutWindowMinutes int `mapstructure:"lockout_window_minutes" validate:"required,gt=0"`
}

// LockoutPolicy converts the configured lockout settings into the domain
// policy consumed by the state machine.
func (c AuthConfig) LockoutPolicy() domain.LockoutPolicy {
	return domain.LockoutPolicy{
		MaxAttempts: c.LockoutMaxAttempts,
		LockWindow:  time.Duration(c.LockoutWindowMinutes) * time.Minute,
	}
}

// EmailConfig contains outbound email settings. The password-reset flow is
// fire-and-forget, so a missing SMTP configuration degrades to logging the
// reset link instead of failing requests.
type EmailConfig struct {
	SMTPHost    string `mapstructure:"smtp_host"`
	SMTPPort    int    `mapstructure:"smtp_port"`
	SMTPUser    string `mapstructure:"smtp_user"`
	SMTPPass    string `mapstructure:"smtp_pass"`
	FromAddress string `mapstructure:"from_address"`

	// FrontendURL is the base URL embedded in reset links.
	FrontendURL string `mapstructure:"frontend_url"`

	// QueueSize and WorkerCount size the asynchronous dispatcher.
	QueueSize   int `mapstructure:"queue_size"`
	WorkerCount int `mapstructure:"worker_count"`
}
