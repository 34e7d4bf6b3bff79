package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// TASKFLOW_ prefix with underscores (e.g. TASKFLOW_SERVER_PORT,
// TASKFLOW_AUTH_JWT_SECRET) and take precedence over file values.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults cover it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the stock values for every tunable. Binding each key
// through SetDefault also makes the corresponding TASKFLOW_* variable visible
// to AutomaticEnv.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.environment", "development")

	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 120)
	v.SetDefault("auth.reset_token_lifetime_minutes", 60)
	v.SetDefault("auth.lockout_max_attempts", 5)
	v.SetDefault("auth.lockout_window_minutes", 15)

	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_pass", "")
	v.SetDefault("email.from_address", "TaskFlow <admin@taskflow.example>")
	v.SetDefault("email.frontend_url", "http://localhost:5173")
	v.SetDefault("email.queue_size", 64)
	v.SetDefault("email.worker_count", 2)
}
